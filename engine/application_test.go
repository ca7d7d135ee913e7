package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizeDispositionMinimizeThenRestore(t *testing.T) {
	// A normal resize while running just applies the new size.
	suspend, resume := resizeDisposition(false, 800, 600)
	assert.False(t, suspend)
	assert.False(t, resume)

	// Minimizing reports a zero extent and suspends rendering.
	suspend, resume = resizeDisposition(false, 0, 0)
	assert.True(t, suspend)
	assert.False(t, resume)

	// Restoring to a drawable extent resumes and applies the new size.
	suspend, resume = resizeDisposition(true, 1024, 768)
	assert.False(t, suspend)
	assert.True(t, resume)
}

func TestResizeDispositionStaysSuspendedWhileZero(t *testing.T) {
	suspend, resume := resizeDisposition(true, 0, 0)
	assert.True(t, suspend)
	assert.False(t, resume)

	suspend, resume = resizeDisposition(true, 0, 600)
	assert.True(t, suspend)
	assert.False(t, resume)
}
