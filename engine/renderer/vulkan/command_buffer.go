package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

// VulkanCommandBuffer pairs the handle with a recording state so misuse
// (ending outside a render pass, double begin) is caught at the call site.
type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	State  VulkanCommandBufferState
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	commandBuffer := &VulkanCommandBuffer{
		State: COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}

	level := vk.CommandBufferLevelPrimary
	if !isPrimary {
		level = vk.CommandBufferLevelSecondary
	}
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: 1,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		return nil, fmt.Errorf("vkAllocateCommandBuffers failed with %s", VulkanResultString(res))
	}
	commandBuffer.Handle = handles[0]
	commandBuffer.State = COMMAND_BUFFER_STATE_READY

	return commandBuffer, nil
}

func (commandBuffer *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{commandBuffer.Handle})
	commandBuffer.Handle = nil
	commandBuffer.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (commandBuffer *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(commandBuffer.Handle, &beginInfo); res != vk.Success {
		return fmt.Errorf("vkBeginCommandBuffer failed with %s", VulkanResultString(res))
	}
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (commandBuffer *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(commandBuffer.Handle); res != vk.Success {
		return fmt.Errorf("vkEndCommandBuffer failed with %s", VulkanResultString(res))
	}
	commandBuffer.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (commandBuffer *VulkanCommandBuffer) UpdateSubmitted() {
	commandBuffer.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// Reset returns the buffer to the ready state. The pool is created with the
// reset-command-buffer bit, so no explicit vkResetCommandBuffer is needed
// before re-recording with one-time-submit.
func (commandBuffer *VulkanCommandBuffer) Reset() {
	commandBuffer.State = COMMAND_BUFFER_STATE_READY
}
