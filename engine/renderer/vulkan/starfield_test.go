package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarRegionSize(t *testing.T) {
	require.Equal(t, uint64(16), starVertexSize)
	assert.Equal(t, uint64(16), starRegionSize(1))
	assert.Equal(t, uint64(65536*16), starRegionSize(65536))
}

func TestStarRegionOffsetsAreDisjoint(t *testing.T) {
	const capacity = 1024
	const slots = 3

	for slot := uint32(0); slot < slots; slot++ {
		start := starRegionOffset(slot, capacity)
		end := start + starRegionSize(capacity)
		// Contiguous regions: each ends exactly where the next begins.
		assert.Equal(t, uint64(slot)*starRegionSize(capacity), start)
		if slot+1 < slots {
			assert.Equal(t, end, starRegionOffset(slot+1, capacity))
		}
	}
}

func TestStarRegionLayoutCoversWholeBuffer(t *testing.T) {
	const capacity = 65536
	const slots = 2

	total := uint64(slots) * starRegionSize(capacity)
	last := starRegionOffset(slots-1, capacity) + starRegionSize(capacity)
	assert.Equal(t, total, last)
}
