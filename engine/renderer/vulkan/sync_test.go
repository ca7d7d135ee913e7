package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFrameSlotWraps(t *testing.T) {
	assert.Equal(t, uint32(1), nextFrameSlot(0, 2))
	assert.Equal(t, uint32(0), nextFrameSlot(1, 2))
	assert.Equal(t, uint32(2), nextFrameSlot(1, 3))
	assert.Equal(t, uint32(0), nextFrameSlot(2, 3))
}

func TestNextFrameSlotCycleVisitsAllSlots(t *testing.T) {
	const maxFrames = 2
	seen := map[uint32]int{}
	slot := uint32(0)
	for i := 0; i < 10; i++ {
		seen[slot]++
		slot = nextFrameSlot(slot, maxFrames)
	}
	assert.Equal(t, 5, seen[0])
	assert.Equal(t, 5, seen[1])
}

func TestSyncObjectCounts(t *testing.T) {
	// Image-available semaphores and fences follow the frame slots;
	// render-finished semaphores and in-flight image trackers follow the
	// swapchain images.
	imageAvailable, renderFinished, fences, imagesInFlight := syncObjectCounts(2, 3)
	assert.Equal(t, uint32(2), imageAvailable)
	assert.Equal(t, uint32(3), renderFinished)
	assert.Equal(t, uint32(2), fences)
	assert.Equal(t, uint32(3), imagesInFlight)

	imageAvailable, renderFinished, fences, imagesInFlight = syncObjectCounts(2, 5)
	assert.Equal(t, uint32(2), imageAvailable)
	assert.Equal(t, uint32(5), renderFinished)
	assert.Equal(t, uint32(2), fences)
	assert.Equal(t, uint32(5), imagesInFlight)
}

func TestSyncObjectCountsTrackEveryImageAtHigherSlotCounts(t *testing.T) {
	// Raising the in-flight limit must not shrink per-image tracking:
	// an image can be re-acquired while another slot's fence still guards
	// its last submission, so every image needs its own tracker.
	for _, maxFrames := range []uint32{2, 3, 4} {
		_, _, _, imagesInFlight := syncObjectCounts(maxFrames, 3)
		assert.Equal(t, uint32(3), imagesInFlight)
	}
}
