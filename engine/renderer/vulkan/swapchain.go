package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
)

// VulkanSwapchainSupportInfo caches the surface capabilities, formats and
// present modes of a physical device. Queried at selection time and again
// on every recreation.
type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	// The number of frame slots the renderer cycles through. Always two:
	// the CPU may record frame N+1 while the GPU still works on frame N,
	// but never runs further ahead.
	MaxFramesInFlight uint32

	ImageCount uint32
	Images     []vk.Image
	Views      []vk.ImageView

	// Framebuffers used for on-screen rendering, one per image.
	Framebuffers []*VulkanFramebuffer
}

// chooseSurfaceFormat prefers 8-bit BGRA with sRGB encoding and a
// nonlinear sRGB color space; otherwise the first advertised format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox (low-latency triple buffering) and
// falls back to FIFO, which every conformant implementation provides.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent when the platform fixes
// it; otherwise clamps the requested framebuffer size to the supported
// range.
func chooseExtent(caps vk.SurfaceCapabilities, requestedWidth, requestedHeight uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	extent := vk.Extent2D{Width: requestedWidth, Height: requestedHeight}
	min := caps.MinImageExtent
	max := caps.MaxImageExtent
	if extent.Width < min.Width {
		extent.Width = min.Width
	}
	if extent.Width > max.Width {
		extent.Width = max.Width
	}
	if extent.Height < min.Height {
		extent.Height = min.Height
	}
	if extent.Height > max.Height {
		extent.Height = max.Height
	}
	return extent
}

// chooseImageCount requests one more image than the minimum so the driver
// never blocks acquisition on presentation, clamped to the maximum
// (zero means unbounded).
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	return imageCount
}

func SwapchainCreate(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{
		MaxFramesInFlight: 2,
	}
	if err := createSwapchain(context, width, height, swapchain); err != nil {
		return nil, err
	}
	return swapchain, nil
}

// SwapchainRecreate rebuilds the swapchain in place for a new framebuffer
// size. Surface support is requeried because capabilities change with the
// window.
func SwapchainRecreate(context *VulkanContext, width, height uint32, swapchain *VulkanSwapchain) error {
	destroySwapchain(context, swapchain)
	return createSwapchain(context, width, height, swapchain)
}

func SwapchainDestroy(context *VulkanContext, swapchain *VulkanSwapchain) {
	destroySwapchain(context, swapchain)
}

// AcquireNextImageIndex returns the acquired image index and the raw
// result. The caller decides what ErrorOutOfDate and Suboptimal mean at
// its point in the frame.
func (swapchain *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(
		context.Device.LogicalDevice,
		swapchain.Handle,
		timeoutNS,
		imageAvailableSemaphore,
		fence,
		&imageIndex,
	)
	return imageIndex, result
}

// Present queues the image for presentation, waiting on that image's
// render-finished semaphore. Returns the raw result for the caller to
// interpret.
func (swapchain *VulkanSwapchain) Present(context *VulkanContext, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{swapchain.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}
	return vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
}

func createSwapchain(context *VulkanContext, width, height uint32, swapchain *VulkanSwapchain) error {
	if err := DeviceQuerySwapchainSupport(
		context.Device.PhysicalDevice,
		context.Surface,
		&context.Device.SwapchainSupport); err != nil {
		return err
	}
	support := &context.Device.SwapchainSupport

	swapchain.ImageFormat = chooseSurfaceFormat(support.Formats)
	swapchain.PresentMode = choosePresentMode(support.PresentModes)
	swapchain.Extent = chooseExtent(support.Capabilities, width, height)
	imageCount := chooseImageCount(support.Capabilities)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	// Separate graphics and present families need concurrent sharing.
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle); res != vk.Success {
		err := fmt.Errorf("vkCreateSwapchainKHR failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	swapchain.Handle = handle

	context.CurrentFrame = 0

	swapchain.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}

	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	for i := uint32(0); i < swapchain.ImageCount; i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			return fmt.Errorf("vkCreateImageView failed with %s", VulkanResultString(res))
		}
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, %s.",
		swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount,
		presentModeString(swapchain.PresentMode))
	return nil
}

func destroySwapchain(context *VulkanContext, swapchain *VulkanSwapchain) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	// Only the views are owned; the images belong to the swapchain.
	for _, view := range swapchain.Views {
		vk.DestroyImageView(context.Device.LogicalDevice, view, context.Allocator)
	}
	swapchain.Views = nil
	swapchain.Images = nil

	vk.DestroySwapchain(context.Device.LogicalDevice, swapchain.Handle, context.Allocator)
	swapchain.Handle = vk.NullSwapchain
}

func presentModeString(mode vk.PresentMode) string {
	switch mode {
	case vk.PresentModeImmediate:
		return "IMMEDIATE"
	case vk.PresentModeMailbox:
		return "MAILBOX"
	case vk.PresentModeFifo:
		return "FIFO"
	case vk.PresentModeFifoRelaxed:
		return "FIFO_RELAXED"
	default:
		return fmt.Sprintf("PresentMode(%d)", int32(mode))
	}
}
