package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
)

// VulkanFence tracks the signaled state alongside the handle so callers
// can skip redundant waits on an already-signaled fence.
type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

// NewFence creates a fence, optionally in the signaled state. Frame-slot
// fences start signaled so the first frame does not wait forever.
func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		IsSignaled: createSignaled,
	}
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var handle vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateFence failed with %s", VulkanResultString(res))
	}
	fence.Handle = handle
	return fence, nil
}

func (fence *VulkanFence) Destroy(context *VulkanContext) {
	if fence.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, fence.Handle, context.Allocator)
		fence.Handle = vk.NullFence
	}
	fence.IsSignaled = false
}

// Wait blocks until the fence is signaled or the timeout elapses. Returns
// true when the fence signaled.
func (fence *VulkanFence) Wait(context *VulkanContext, timeoutNS uint64) bool {
	if fence.IsSignaled {
		return true
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{fence.Handle}, vk.True, timeoutNS)
	switch result {
	case vk.Success:
		fence.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("fence wait timed out")
	case vk.ErrorDeviceLost:
		core.LogError("fence wait failed: VK_ERROR_DEVICE_LOST")
	case vk.ErrorOutOfHostMemory:
		core.LogError("fence wait failed: VK_ERROR_OUT_OF_HOST_MEMORY")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("fence wait failed: VK_ERROR_OUT_OF_DEVICE_MEMORY")
	default:
		core.LogError("fence wait failed: %s", VulkanResultString(result))
	}
	return false
}

// Reset returns the fence to the unsignaled state. Callers reset only once
// submission of new work is certain, so an early-out on a failed acquire
// never deadlocks the slot.
func (fence *VulkanFence) Reset(context *VulkanContext) error {
	if !fence.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{fence.Handle}); res != vk.Success {
		return fmt.Errorf("vkResetFences failed with %s", VulkanResultString(res))
	}
	fence.IsSignaled = false
	return nil
}
