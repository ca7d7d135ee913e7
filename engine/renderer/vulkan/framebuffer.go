package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
}

// NewFramebuffer wraps one swapchain image view for the given render pass.
// Attachments are retained so the framebuffer can outlive the caller's
// slice.
func NewFramebuffer(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	framebuffer := &VulkanFramebuffer{
		Attachments: make([]vk.ImageView, len(attachments)),
		Renderpass:  renderpass,
	}
	copy(framebuffer.Attachments, attachments)

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(framebuffer.Attachments)),
		PAttachments:    framebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateFramebuffer failed with %s", VulkanResultString(res))
	}
	framebuffer.Handle = handle

	return framebuffer, nil
}

func (framebuffer *VulkanFramebuffer) Destroy(context *VulkanContext) {
	vk.DestroyFramebuffer(context.Device.LogicalDevice, framebuffer.Handle, context.Allocator)
	framebuffer.Handle = vk.NullFramebuffer
	framebuffer.Attachments = nil
	framebuffer.Renderpass = nil
}
