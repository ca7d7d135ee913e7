package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))

	v, err := rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRingQueueFullAndEmpty(t *testing.T) {
	rq := NewRingQueue[string](2)
	assert.True(t, rq.IsEmpty())

	require.NoError(t, rq.Enqueue("a"))
	require.NoError(t, rq.Enqueue("b"))
	assert.True(t, rq.IsFull())
	assert.Error(t, rq.Enqueue("c"))

	_, err := rq.Dequeue()
	require.NoError(t, err)
	_, err = rq.Dequeue()
	require.NoError(t, err)
	assert.True(t, rq.IsEmpty())

	_, err = rq.Dequeue()
	assert.Error(t, err)
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](2)
	for i := 0; i < 5; i++ {
		require.NoError(t, rq.Enqueue(i))
		v, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestRingQueuePeekAndLen(t *testing.T) {
	rq := NewRingQueue[int](4)
	_, err := rq.Peek()
	assert.Error(t, err)

	require.NoError(t, rq.Enqueue(7))
	require.NoError(t, rq.Enqueue(8))

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, rq.Len())
}
