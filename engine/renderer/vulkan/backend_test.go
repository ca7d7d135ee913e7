package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecreateDeferredAcrossMinimizeRestore(t *testing.T) {
	// A resize to a drawable extent rebuilds immediately, minimizing to a
	// zero extent defers, and restoring rebuilds again.
	assert.False(t, recreateDeferred(800, 600))
	assert.True(t, recreateDeferred(0, 0))
	assert.False(t, recreateDeferred(1024, 768))
}

func TestRecreateDeferredOnAnyZeroDimension(t *testing.T) {
	assert.True(t, recreateDeferred(0, 600))
	assert.True(t, recreateDeferred(800, 0))
}
