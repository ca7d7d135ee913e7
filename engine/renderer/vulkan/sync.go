package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// nextFrameSlot advances the frame slot cursor, wrapping at the in-flight
// limit.
func nextFrameSlot(current, maxFramesInFlight uint32) uint32 {
	return (current + 1) % maxFramesInFlight
}

// syncObjectCounts returns how many of each synchronization primitive a
// swapchain needs: image-available semaphores and in-flight fences are
// per frame slot, render-finished semaphores and in-flight image trackers
// are per swapchain image.
func syncObjectCounts(maxFramesInFlight, imageCount uint32) (imageAvailable, renderFinished, fences, imagesInFlight uint32) {
	return maxFramesInFlight, imageCount, maxFramesInFlight, imageCount
}

func createSyncObjects(context *VulkanContext) error {
	imageAvailable, renderFinished, fences, imagesInFlight := syncObjectCounts(
		context.Swapchain.MaxFramesInFlight, context.Swapchain.ImageCount)

	context.ImageAvailableSemaphores = make([]vk.Semaphore, imageAvailable)
	context.RenderFinishedSemaphores = make([]vk.Semaphore, renderFinished)
	context.InFlightFences = make([]*VulkanFence, fences)
	// Entries stay nil until the image is first submitted.
	context.ImagesInFlight = make([]*VulkanFence, imagesInFlight)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	for i := range context.ImageAvailableSemaphores {
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &context.ImageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("vkCreateSemaphore failed with %s", VulkanResultString(res))
		}
	}
	for i := range context.RenderFinishedSemaphores {
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &context.RenderFinishedSemaphores[i]); res != vk.Success {
			return fmt.Errorf("vkCreateSemaphore failed with %s", VulkanResultString(res))
		}
	}

	// Slot fences start signaled so the very first frame's wait returns
	// immediately.
	for i := range context.InFlightFences {
		fence, err := NewFence(context, true)
		if err != nil {
			return err
		}
		context.InFlightFences[i] = fence
	}

	return nil
}

func destroySyncObjects(context *VulkanContext) {
	for _, semaphore := range context.ImageAvailableSemaphores {
		if semaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, semaphore, context.Allocator)
		}
	}
	context.ImageAvailableSemaphores = nil

	for _, semaphore := range context.RenderFinishedSemaphores {
		if semaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, semaphore, context.Allocator)
		}
	}
	context.RenderFinishedSemaphores = nil

	for _, fence := range context.InFlightFences {
		if fence != nil {
			fence.Destroy(context)
		}
	}
	context.InFlightFences = nil
	context.ImagesInFlight = nil
}

// destroyPerImageSemaphores tears down only the render-finished semaphores
// so recreation can size them to a new image count.
func destroyPerImageSemaphores(context *VulkanContext) {
	for _, semaphore := range context.RenderFinishedSemaphores {
		if semaphore != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, semaphore, context.Allocator)
		}
	}
	context.RenderFinishedSemaphores = nil
}

// createPerImageSemaphores rebuilds the render-finished semaphores and the
// in-flight image trackers for the current swapchain image count. The device
// is idle during recreation, so the trackers restart at nil.
func createPerImageSemaphores(context *VulkanContext) error {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	context.ImagesInFlight = make([]*VulkanFence, context.Swapchain.ImageCount)
	context.RenderFinishedSemaphores = make([]vk.Semaphore, context.Swapchain.ImageCount)
	for i := range context.RenderFinishedSemaphores {
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &context.RenderFinishedSemaphores[i]); res != vk.Success {
			return fmt.Errorf("vkCreateSemaphore failed with %s", VulkanResultString(res))
		}
	}
	return nil
}
