package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
)

// VulkanContext owns every Vulkan handle the renderer creates. There is no
// package-level state; the renderer carries one of these and tears it down
// in reverse creation order.
type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Current generation of framebuffer size. If it does not match
	// FramebufferSizeLastGeneration, the swapchain must be recreated.
	FramebufferSizeGeneration uint64
	// The generation of the framebuffer when the swapchain was last created.
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Starfield      *Starfield

	GraphicsCommandBuffers []*VulkanCommandBuffer

	// One per frame slot: signaled when the acquired image is ready.
	ImageAvailableSemaphores []vk.Semaphore

	// One per swapchain image: signaled when rendering to that image is
	// complete and it may be presented. Indexed by image index, never by
	// frame slot, so two slots can never signal the same semaphore while
	// presentation of an earlier frame is still pending.
	RenderFinishedSemaphores []vk.Semaphore

	// One per frame slot, created signaled.
	InFlightFences []*VulkanFence

	// One per swapchain image: the slot fence guarding the image's last
	// submission, nil until the image has been rendered to once. Consulted
	// before the image's command buffer is re-recorded, since the image can
	// come back from acquire while a different slot's fence still guards it.
	ImagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32

	RecreatingSwapchain bool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
