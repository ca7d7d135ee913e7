package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
	"github.com/spaghettifunk/parallax/engine/renderer"
)

const starVertexSize = uint64(unsafe.Sizeof(renderer.StarVertex{}))

// starRegionSize returns the byte size of one frame slot's region of the
// star storage buffer.
func starRegionSize(capacity uint32) uint64 {
	return uint64(capacity) * starVertexSize
}

// starRegionOffset returns the byte offset of a slot's region within the
// star storage buffer. Regions are contiguous and never overlap.
func starRegionOffset(slot, capacity uint32) uint64 {
	return uint64(slot) * starRegionSize(capacity)
}

// Starfield owns the GPU resources for star rendering: a host-visible
// storage buffer that stays mapped for the life of the renderer, the
// descriptor sets exposing it to the vertex shader, and the point-list
// pipeline.
//
// The buffer holds one region per frame slot and each slot gets its own
// descriptor set bound to its region. A frame only writes its slot's
// region after the slot fence has signaled, so the CPU never writes memory
// the GPU is still reading.
type Starfield struct {
	Capacity     uint32
	SlotCount    uint32
	VisibleCount uint32

	buffer vk.Buffer
	memory vk.DeviceMemory
	mapped unsafe.Pointer

	descriptorSetLayout vk.DescriptorSetLayout
	descriptorPool      vk.DescriptorPool
	descriptorSets      []vk.DescriptorSet

	pipeline      *VulkanPipeline
	pushConstants StarPushConstants

	vertPath string
	fragPath string
}

func NewStarfield(context *VulkanContext, renderpass *VulkanRenderpass, capacity, slotCount uint32, vertPath, fragPath string) (*Starfield, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("starfield capacity must be positive")
	}
	if slotCount == 0 {
		return nil, fmt.Errorf("starfield slot count must be positive")
	}

	sf := &Starfield{
		Capacity:  capacity,
		SlotCount: slotCount,
		pushConstants: StarPushConstants{
			PointSizeScale:  6.0,
			BrightnessScale: 1.5,
		},
		vertPath: vertPath,
		fragPath: fragPath,
	}

	if err := sf.createStorageBuffer(context); err != nil {
		return nil, err
	}
	if err := sf.createDescriptors(context); err != nil {
		sf.Destroy(context)
		return nil, err
	}

	pipeline, err := NewStarPipeline(context, renderpass, sf.descriptorSetLayout, vertPath, fragPath)
	if err != nil {
		sf.Destroy(context)
		return nil, err
	}
	sf.pipeline = pipeline

	core.LogInfo("Starfield created with capacity %d.", capacity)
	return sf, nil
}

func (sf *Starfield) createStorageBuffer(context *VulkanContext) error {
	bufferSize := vk.DeviceSize(uint64(sf.SlotCount) * starRegionSize(sf.Capacity))

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        bufferSize,
		Usage:       vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &sf.buffer); res != vk.Success {
		return fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res))
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, sf.buffer, &requirements)
	requirements.Deref()

	memoryIndex := context.FindMemoryIndex(
		requirements.MemoryTypeBits,
		uint32(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if memoryIndex < 0 {
		return fmt.Errorf("no host-visible coherent memory type for star buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &sf.memory); res != vk.Success {
		return fmt.Errorf("vkAllocateMemory failed with %s", VulkanResultString(res))
	}
	if res := vk.BindBufferMemory(context.Device.LogicalDevice, sf.buffer, sf.memory, 0); res != vk.Success {
		return fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res))
	}

	// Persistently mapped; unmapped only at destruction.
	if res := vk.MapMemory(context.Device.LogicalDevice, sf.memory, 0, bufferSize, 0, &sf.mapped); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
	}

	return nil
}

func (sf *Starfield) createDescriptors(context *VulkanContext) error {
	layoutBinding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeStorageBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
	layoutCreateInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{layoutBinding},
	}
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutCreateInfo, context.Allocator, &sf.descriptorSetLayout); res != vk.Success {
		return fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res))
	}

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeStorageBuffer,
		DescriptorCount: sf.SlotCount,
	}
	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
		MaxSets:       sf.SlotCount,
	}
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &sf.descriptorPool); res != vk.Success {
		return fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(res))
	}

	layouts := make([]vk.DescriptorSetLayout, sf.SlotCount)
	for i := range layouts {
		layouts[i] = sf.descriptorSetLayout
	}
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     sf.descriptorPool,
		DescriptorSetCount: sf.SlotCount,
		PSetLayouts:        layouts,
	}
	sf.descriptorSets = make([]vk.DescriptorSet, sf.SlotCount)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sf.descriptorSets[0]); res != vk.Success {
		return fmt.Errorf("vkAllocateDescriptorSets failed with %s", VulkanResultString(res))
	}

	// Point each slot's descriptor set at its own region of the buffer.
	writes := make([]vk.WriteDescriptorSet, sf.SlotCount)
	for slot := uint32(0); slot < sf.SlotCount; slot++ {
		bufferInfo := vk.DescriptorBufferInfo{
			Buffer: sf.buffer,
			Offset: vk.DeviceSize(starRegionOffset(slot, sf.Capacity)),
			Range:  vk.DeviceSize(starRegionSize(sf.Capacity)),
		}
		writes[slot] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          sf.descriptorSets[slot],
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
		}
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, sf.SlotCount, writes, 0, nil)

	return nil
}

// Upload copies the visible vertices into the given slot's region of the
// mapped storage buffer and records the instance count for the next draw.
// Vertices beyond capacity are dropped. The caller must have waited the
// slot's fence so the region is no longer being read.
func (sf *Starfield) Upload(vertices []renderer.StarVertex, slot uint32) {
	count := uint32(len(vertices))
	if count > sf.Capacity {
		count = sf.Capacity
	}
	if count > 0 {
		bytes := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), uint64(count)*starVertexSize)
		region := unsafe.Add(sf.mapped, starRegionOffset(slot, sf.Capacity))
		vk.Memcopy(region, bytes)
	}
	sf.VisibleCount = count
}

// Draw records the starfield into the given command buffer: bind pipeline
// and the slot's descriptor set, push the scale constants, then one point
// per visible star via instancing.
func (sf *Starfield) Draw(commandBuffer *VulkanCommandBuffer, slot uint32) {
	if sf.VisibleCount == 0 {
		return
	}

	sf.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(
		commandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		sf.pipeline.PipelineLayout,
		0, 1, []vk.DescriptorSet{sf.descriptorSets[slot]},
		0, nil)
	vk.CmdPushConstants(
		commandBuffer.Handle,
		sf.pipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, 8, unsafe.Pointer(&sf.pushConstants))
	vk.CmdDraw(commandBuffer.Handle, 1, sf.VisibleCount, 0, 0)
}

// ReloadPipeline rebuilds the graphics pipeline against the given render
// pass, re-reading the shader binaries. Used after a shader hot-reload and
// after swapchain recreation changes the surface format.
func (sf *Starfield) ReloadPipeline(context *VulkanContext, renderpass *VulkanRenderpass) error {
	pipeline, err := NewStarPipeline(context, renderpass, sf.descriptorSetLayout, sf.vertPath, sf.fragPath)
	if err != nil {
		return err
	}
	if sf.pipeline != nil {
		sf.pipeline.Destroy(context)
	}
	sf.pipeline = pipeline
	return nil
}

func (sf *Starfield) Destroy(context *VulkanContext) {
	if sf.pipeline != nil {
		sf.pipeline.Destroy(context)
		sf.pipeline = nil
	}
	if sf.descriptorPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, sf.descriptorPool, context.Allocator)
		sf.descriptorPool = vk.NullDescriptorPool
	}
	if sf.descriptorSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, sf.descriptorSetLayout, context.Allocator)
		sf.descriptorSetLayout = vk.NullDescriptorSetLayout
	}
	if sf.mapped != nil {
		vk.UnmapMemory(context.Device.LogicalDevice, sf.memory)
		sf.mapped = nil
	}
	if sf.memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.Device.LogicalDevice, sf.memory, context.Allocator)
		sf.memory = vk.NullDeviceMemory
	}
	if sf.buffer != vk.NullBuffer {
		vk.DestroyBuffer(context.Device.LogicalDevice, sf.buffer, context.Allocator)
		sf.buffer = vk.NullBuffer
	}
}
