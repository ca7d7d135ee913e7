package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
	"github.com/spaghettifunk/parallax/engine/platform"
	"github.com/spaghettifunk/parallax/engine/renderer"
)

// RendererConfig carries everything the backend needs at startup.
type RendererConfig struct {
	ApplicationName  string
	StarCapacity     uint32
	VertexShaderPath string
	FragShaderPath   string
	EnableValidation bool
}

// VulkanRenderer drives frame production. All Vulkan state lives in its
// context; nothing is package-level, so teardown is a plain reverse walk
// of creation.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext
	config   RendererConfig

	// Size reported by the platform, latched into the context when the
	// swapchain is (re)created.
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32
}

func New(p *platform.Platform, config RendererConfig) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		config:   config,
		context: &VulkanContext{
			Device: &VulkanDevice{
				GraphicsQueueIndex: -1,
				PresentQueueIndex:  -1,
			},
		},
	}
}

func (vr *VulkanRenderer) Initialize() error {
	width, height := vr.platform.FramebufferExtent()
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	if err := vr.createInstance(); err != nil {
		return err
	}
	if vr.config.EnableValidation {
		if err := vr.createDebugMessenger(); err != nil {
			// Validation is diagnostic only; carry on without it.
			core.LogWarn("failed to create debug messenger: %v", err)
		}
	}

	surface, err := vr.platform.CreateVulkanSurface(vr.context.Instance, vr.context.Allocator)
	if err != nil {
		return err
	}
	vr.context.Surface = surface
	core.LogInfo("Vulkan surface created.")

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	renderpass, err := NewRenderpass(vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.0, 0.0, 0.01, 1.0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = renderpass
	core.LogInfo("Renderpass created.")

	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}
	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	if err := createSyncObjects(vr.context); err != nil {
		return err
	}

	starfield, err := NewStarfield(vr.context, vr.context.MainRenderpass,
		vr.config.StarCapacity, vr.context.Swapchain.MaxFramesInFlight,
		vr.config.VertexShaderPath, vr.config.FragShaderPath)
	if err != nil {
		return err
	}
	vr.context.Starfield = starfield

	core.LogInfo("Vulkan renderer initialized.")
	return nil
}

// Shutdown tears everything down in the reverse of creation order. Safe
// to call with partially-initialized state after a failed Initialize.
func (vr *VulkanRenderer) Shutdown() {
	if vr.context.Device != nil && vr.context.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	}

	if vr.context.Starfield != nil {
		vr.context.Starfield.Destroy(vr.context)
		vr.context.Starfield = nil
	}

	destroySyncObjects(vr.context)
	vr.destroyCommandBuffers()
	vr.destroyFramebuffers()

	if vr.context.MainRenderpass != nil {
		vr.context.MainRenderpass.Destroy(vr.context)
		vr.context.MainRenderpass = nil
	}
	if vr.context.Swapchain != nil {
		SwapchainDestroy(vr.context, vr.context.Swapchain)
		vr.context.Swapchain = nil
	}
	if vr.context.Device != nil && vr.context.Device.LogicalDevice != nil {
		DeviceDestroy(vr.context)
	}
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}
	if vr.context.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
		vr.context.debugMessenger = vk.NullDebugReportCallback
	}
	if vr.context.Instance != nil {
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}

	core.LogInfo("Vulkan renderer shut down.")
}

// Resized records the new framebuffer size and bumps the size generation.
// The swapchain is rebuilt lazily at the top of the next DrawFrame.
func (vr *VulkanRenderer) Resized(width, height uint32) {
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	vr.context.FramebufferSizeGeneration++
	core.LogDebug("resize: %dx%d, generation %d", width, height, vr.context.FramebufferSizeGeneration)
}

// UpdateStars copies the frame's visible vertices into the GPU buffer
// region of the current frame slot. The slot's fence is waited first so the
// write cannot overlap a submission still reading the region; DrawFrame's
// own wait on the same fence then returns immediately.
func (vr *VulkanRenderer) UpdateStars(vertices []renderer.StarVertex) {
	slot := vr.context.CurrentFrame
	vr.context.InFlightFences[slot].Wait(vr.context, vk.MaxUint64)
	vr.context.Starfield.Upload(vertices, slot)
}

// VisibleStars reports the instance count of the last upload.
func (vr *VulkanRenderer) VisibleStars() uint32 {
	return vr.context.Starfield.VisibleCount
}

// ReloadShaders rebuilds the star pipeline from the shader binaries on
// disk, for hot reload.
func (vr *VulkanRenderer) ReloadShaders() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	return vr.context.Starfield.ReloadPipeline(vr.context, vr.context.MainRenderpass)
}

// DrawFrame runs one iteration of the frame protocol: wait on the slot
// fence, acquire, record, submit, present, advance the slot. Returns nil
// when the frame was skipped for a swapchain rebuild.
func (vr *VulkanRenderer) DrawFrame() error {
	context := vr.context
	device := context.Device

	if context.RecreatingSwapchain {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkDeviceWaitIdle failed with %s", VulkanResultString(res))
		}
		return nil
	}

	if context.FramebufferSizeGeneration != context.FramebufferSizeLastGeneration {
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return nil
	}

	slot := context.CurrentFrame
	if !context.InFlightFences[slot].Wait(context, vk.MaxUint64) {
		return fmt.Errorf("in-flight fence wait failed for slot %d", slot)
	}

	imageIndex, result := context.Swapchain.AcquireNextImageIndex(
		context, vk.MaxUint64, context.ImageAvailableSemaphores[slot], vk.NullFence)
	switch {
	case result == vk.ErrorOutOfDate:
		return vr.recreateSwapchain()
	case result != vk.Success && result != vk.Suboptimal:
		return fmt.Errorf("vkAcquireNextImageKHR failed with %s", VulkanResultString(result))
	}
	context.ImageIndex = imageIndex

	// The image's previous submission may still be executing under a
	// different slot's fence. Wait it out before reusing the image's
	// command buffer, then mark the image as owned by this slot's fence.
	if imageFence := context.ImagesInFlight[imageIndex]; imageFence != nil {
		if !imageFence.Wait(context, vk.MaxUint64) {
			return fmt.Errorf("in-flight fence wait failed for image %d", imageIndex)
		}
	}
	context.ImagesInFlight[imageIndex] = context.InFlightFences[slot]

	// Submission is now certain, so the slot fence may be reset.
	if err := context.InFlightFences[slot].Reset(context); err != nil {
		return err
	}

	commandBuffer := context.GraphicsCommandBuffers[imageIndex]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	// Dynamic state covers the whole framebuffer, Y-flipped so +Y is up.
	viewport := vk.Viewport{
		X:        0,
		Y:        float32(context.FramebufferHeight),
		Width:    float32(context.FramebufferWidth),
		Height:   -float32(context.FramebufferHeight),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: context.FramebufferWidth, Height: context.FramebufferHeight},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	context.MainRenderpass.W = float32(context.FramebufferWidth)
	context.MainRenderpass.H = float32(context.FramebufferHeight)
	context.MainRenderpass.Begin(commandBuffer, context.Swapchain.Framebuffers[imageIndex].Handle)

	context.Starfield.Draw(commandBuffer, slot)

	context.MainRenderpass.End(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{context.ImageAvailableSemaphores[slot]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{context.RenderFinishedSemaphores[imageIndex]},
	}
	if res := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, context.InFlightFences[slot].Handle); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with %s", VulkanResultString(res))
	}
	commandBuffer.UpdateSubmitted()

	presentResult := context.Swapchain.Present(
		context, context.RenderFinishedSemaphores[imageIndex], imageIndex)

	context.CurrentFrame = nextFrameSlot(context.CurrentFrame, context.Swapchain.MaxFramesInFlight)

	switch {
	case presentResult == vk.ErrorOutOfDate || presentResult == vk.Suboptimal:
		return vr.recreateSwapchain()
	case presentResult != vk.Success:
		return fmt.Errorf("vkQueuePresentKHR failed with %s", VulkanResultString(presentResult))
	}
	if context.FramebufferSizeGeneration != context.FramebufferSizeLastGeneration {
		return vr.recreateSwapchain()
	}

	return nil
}

// recreateSwapchain rebuilds the swapchain and everything sized to it:
// framebuffers, command buffers, and the per-image semaphores, whose count
// can change with the image count. Skipped while minimized.
func (vr *VulkanRenderer) recreateSwapchain() error {
	context := vr.context

	if context.RecreatingSwapchain {
		return nil
	}
	if recreateDeferred(vr.cachedFramebufferWidth, vr.cachedFramebufferHeight) {
		core.LogDebug("recreate requested while minimized, deferring")
		return nil
	}

	context.RecreatingSwapchain = true
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	oldFormat := context.Swapchain.ImageFormat.Format

	vr.destroyFramebuffers()
	if err := SwapchainRecreate(context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight, context.Swapchain); err != nil {
		context.RecreatingSwapchain = false
		return err
	}

	context.FramebufferWidth = context.Swapchain.Extent.Width
	context.FramebufferHeight = context.Swapchain.Extent.Height
	context.FramebufferSizeLastGeneration = context.FramebufferSizeGeneration

	// A format change invalidates the render pass and every pipeline
	// created against it.
	if context.Swapchain.ImageFormat.Format != oldFormat {
		core.LogInfo("Swapchain format changed, rebuilding renderpass and pipeline.")
		renderpass, err := NewRenderpass(context,
			0, 0, float32(context.FramebufferWidth), float32(context.FramebufferHeight),
			context.MainRenderpass.R, context.MainRenderpass.G, context.MainRenderpass.B, context.MainRenderpass.A)
		if err != nil {
			context.RecreatingSwapchain = false
			return err
		}
		context.MainRenderpass.Destroy(context)
		context.MainRenderpass = renderpass
		if context.Starfield != nil {
			if err := context.Starfield.ReloadPipeline(context, context.MainRenderpass); err != nil {
				context.RecreatingSwapchain = false
				return err
			}
		}
	}
	context.MainRenderpass.W = float32(context.FramebufferWidth)
	context.MainRenderpass.H = float32(context.FramebufferHeight)

	if err := vr.regenerateFramebuffers(); err != nil {
		context.RecreatingSwapchain = false
		return err
	}

	vr.destroyCommandBuffers()
	if err := vr.createCommandBuffers(); err != nil {
		context.RecreatingSwapchain = false
		return err
	}

	destroyPerImageSemaphores(context)
	if err := createPerImageSemaphores(context); err != nil {
		context.RecreatingSwapchain = false
		return err
	}

	context.RecreatingSwapchain = false
	core.LogInfo("Swapchain recreated at %dx%d.", context.FramebufferWidth, context.FramebufferHeight)
	return nil
}

// recreateDeferred reports whether swapchain recreation must wait for a
// non-zero framebuffer, as happens while the window is minimized. The
// rebuild happens once a later resize restores a drawable extent.
func recreateDeferred(width, height uint32) bool {
	return width == 0 || height == 0
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	context := vr.context
	context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, context.Swapchain.ImageCount)
	for i := uint32(0); i < context.Swapchain.ImageCount; i++ {
		attachments := []vk.ImageView{context.Swapchain.Views[i]}
		framebuffer, err := NewFramebuffer(context, context.MainRenderpass,
			context.Swapchain.Extent.Width, context.Swapchain.Extent.Height, attachments)
		if err != nil {
			return err
		}
		context.Swapchain.Framebuffers[i] = framebuffer
	}
	return nil
}

func (vr *VulkanRenderer) destroyFramebuffers() {
	if vr.context.Swapchain == nil {
		return
	}
	for _, framebuffer := range vr.context.Swapchain.Framebuffers {
		if framebuffer != nil {
			framebuffer.Destroy(vr.context)
		}
	}
	vr.context.Swapchain.Framebuffers = nil
}

// createCommandBuffers allocates one primary buffer per swapchain image,
// recorded fresh every frame.
func (vr *VulkanRenderer) createCommandBuffers() error {
	context := vr.context
	context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, context.Swapchain.ImageCount)
	for i := range context.GraphicsCommandBuffers {
		commandBuffer, err := NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		context.GraphicsCommandBuffers[i] = commandBuffer
	}
	return nil
}

func (vr *VulkanRenderer) destroyCommandBuffers() {
	for _, commandBuffer := range vr.context.GraphicsCommandBuffers {
		if commandBuffer != nil && commandBuffer.Handle != nil {
			commandBuffer.Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil
}

func (vr *VulkanRenderer) createInstance() error {
	applicationInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.ApplicationName),
		PEngineName:        VulkanSafeString("Parallax Engine"),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
	}

	extensions := vr.platform.RequiredExtensionNames()
	layers := []string{}
	if vr.config.EnableValidation {
		core.LogInfo("Validation layers enabled, verifying availability...")
		if instanceLayerAvailable("VK_LAYER_KHRONOS_validation") {
			layers = append(layers, "VK_LAYER_KHRONOS_validation")
			extensions = append(extensions, "VK_EXT_debug_report")
		} else {
			core.LogWarn("VK_LAYER_KHRONOS_validation not available, continuing without it.")
		}
	}
	for _, extension := range extensions {
		core.LogDebug("instance extension: %s", extension)
	}

	instanceCreateInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &applicationInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     VulkanSafeStrings(layers),
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&instanceCreateInfo, vr.context.Allocator, &instance); res != vk.Success {
		return fmt.Errorf("vkCreateInstance failed with %s", VulkanResultString(res))
	}
	vr.context.Instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return fmt.Errorf("failed to load instance procedures: %w", err)
	}

	core.LogInfo("Vulkan instance created.")
	return nil
}

func instanceLayerAvailable(name string) bool {
	var layerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, nil); res != vk.Success {
		return false
	}
	availableLayers := make([]vk.LayerProperties, layerCount)
	if res := vk.EnumerateInstanceLayerProperties(&layerCount, availableLayers); res != vk.Success {
		return false
	}
	for i := range availableLayers {
		availableLayers[i].Deref()
		end := FindFirstZeroInByteArray(availableLayers[i].LayerName[:])
		if name == vk.ToString(availableLayers[i].LayerName[:end+1]) {
			return true
		}
	}
	return false
}

func (vr *VulkanRenderer) createDebugMessenger() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportErrorBit | vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}
	var callback vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &callback); res != vk.Success {
		return fmt.Errorf("vkCreateDebugReportCallbackEXT failed with %s", VulkanResultString(res))
	}
	vr.context.debugMessenger = callback
	core.LogInfo("Vulkan debug messenger created.")
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[perf] [%s] %s", pLayerPrefix, pMessage)
	default:
		core.LogInfo("[%s] %s", pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}
