package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanRenderpassState int

const (
	RENDERPASS_STATE_READY VulkanRenderpassState = iota
	RENDERPASS_STATE_RECORDING
	RENDERPASS_STATE_IN_RENDER_PASS
	RENDERPASS_STATE_RECORDING_ENDED
	RENDERPASS_STATE_SUBMITTED
	RENDERPASS_STATE_NOT_ALLOCATED
)

type VulkanRenderpass struct {
	Handle vk.RenderPass

	X, Y, W, H float32
	R, G, B, A float32

	State VulkanRenderpassState
}

// NewRenderpass builds the single pass used for presentation: one color
// attachment, cleared on load and stored, transitioning Undefined to
// PresentSrc. A single external dependency on color-attachment output
// orders the layout transition against the acquire semaphore wait.
func NewRenderpass(context *VulkanContext, x, y, w, h, r, g, b, a float32) (*VulkanRenderpass, error) {
	renderpass := &VulkanRenderpass{
		X: x, Y: y, W: w, H: h,
		R: r, G: g, B: b, A: a,
	}

	colorAttachment := vk.AttachmentDescription{
		Format:         context.Swapchain.ImageFormat.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	colorAttachmentReference := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorAttachmentReference},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateRenderPass failed with %s", VulkanResultString(res))
	}
	renderpass.Handle = handle

	return renderpass, nil
}

func (renderpass *VulkanRenderpass) Destroy(context *VulkanContext) {
	if renderpass.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, renderpass.Handle, context.Allocator)
		renderpass.Handle = vk.NullRenderPass
	}
}

// Begin starts the pass on the given framebuffer, clearing to the pass's
// clear color.
func (renderpass *VulkanRenderpass) Begin(commandBuffer *VulkanCommandBuffer, frameBuffer vk.Framebuffer) {
	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor([]float32{renderpass.R, renderpass.G, renderpass.B, renderpass.A})

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderpass.Handle,
		Framebuffer: frameBuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: int32(renderpass.X), Y: int32(renderpass.Y)},
			Extent: vk.Extent2D{Width: uint32(renderpass.W), Height: uint32(renderpass.H)},
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (renderpass *VulkanRenderpass) End(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
}
