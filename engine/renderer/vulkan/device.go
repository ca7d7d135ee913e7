package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties
}

type vulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex uint32
	PresentFamilyIndex  uint32
}

// Suitability scoring, applied to every eligible adapter:
// discrete GPUs dominate integrated ones, larger 2D image limits break
// ties within a class, and a shared graphics/present family earns a bonus
// because it avoids concurrent sharing of the swapchain images.
const (
	scoreDiscreteGPU      = 10000
	scoreIntegratedGPU    = 1000
	scoreSharedQueueBonus = 500
)

// DeviceCreate selects the best physical device, builds the logical device
// with its graphics and present queues, and creates the graphics command
// pool. Aborts the process when no adapter is eligible.
func DeviceCreate(context *VulkanContext) error {
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	presentSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.PresentQueueIndex
	indexCount := 1
	if !presentSharesGraphicsQueue {
		indexCount++
	}

	indices := make([]uint32, 0, indexCount)
	indices = append(indices, uint32(context.Device.GraphicsQueueIndex))
	if !presentSharesGraphicsQueue {
		indices = append(indices, uint32(context.Device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, indexCount)
	for i := 0; i < indexCount; i++ {
		queueCreateInfos[i].SType = vk.StructureTypeDeviceQueueCreateInfo
		queueCreateInfos[i].QueueFamilyIndex = indices[i]
		queueCreateInfos[i].QueueCount = 1
		queueCreateInfos[i].PQueuePriorities = []float32{1.0}
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilitySubsetPresent(context.Device.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(indexCount),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("vkCreateDevice failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)
	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.PresentQueueIndex),
		0,
		&context.Device.PresentQueue)
	core.LogInfo("Queues obtained.")

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("vkCreateCommandPool failed with %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	context.Device.PhysicalDevice = nil

	context.Device.SwapchainSupport.Formats = nil
	context.Device.SwapchainSupport.FormatCount = 0
	context.Device.SwapchainSupport.PresentModes = nil
	context.Device.SwapchainSupport.PresentModeCount = 0
	context.Device.SwapchainSupport.Capabilities = vk.SurfaceCapabilities{}

	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
}

// DeviceQuerySwapchainSupport refreshes surface capabilities, formats and
// present modes. Called at selection time and again before every swapchain
// recreation, since the surface may have changed.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return fmt.Errorf("failed to get surface capabilities: %s", VulkanResultString(res))
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		return fmt.Errorf("failed to get surface format count: %s", VulkanResultString(res))
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			return fmt.Errorf("failed to get surface formats: %s", VulkanResultString(res))
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		return fmt.Errorf("failed to get present mode count: %s", VulkanResultString(res))
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			return fmt.Errorf("failed to get present modes: %s", VulkanResultString(res))
		}
	}
	return nil
}

func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("vkEnumeratePhysicalDevices failed with %s", VulkanResultString(res))
	}
	if physicalDeviceCount == 0 {
		core.LogFatal("No devices which support Vulkan were found.")
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("vkEnumeratePhysicalDevices failed with %s", VulkanResultString(res))
	}

	bestScore := int64(-1)
	var bestQueueInfo vulkanPhysicalDeviceQueueFamilyInfo
	var bestSupport VulkanSwapchainSupportInfo
	var bestProperties vk.PhysicalDeviceProperties
	bestIndex := -1

	for i := 0; i < int(physicalDeviceCount); i++ {
		properties := vk.PhysicalDeviceProperties{}
		vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
		properties.Deref()
		properties.Limits.Deref()

		queueInfo := vulkanPhysicalDeviceQueueFamilyInfo{}
		support := VulkanSwapchainSupportInfo{}
		if !physicalDeviceIsEligible(physicalDevices[i], context.Surface, &queueInfo, &support) {
			core.LogInfo("Device '%s' does not meet requirements, skipping.", vk.ToString(properties.DeviceName[:]))
			continue
		}

		score := int64(0)
		switch properties.DeviceType {
		case vk.PhysicalDeviceTypeDiscreteGpu:
			score += scoreDiscreteGPU
		case vk.PhysicalDeviceTypeIntegratedGpu:
			score += scoreIntegratedGPU
		}
		score += int64(properties.Limits.MaxImageDimension2D)
		if queueInfo.GraphicsFamilyIndex == queueInfo.PresentFamilyIndex {
			score += scoreSharedQueueBonus
		}

		core.LogInfo("Device '%s' is eligible with score %d.", vk.ToString(properties.DeviceName[:]), score)

		// Strictly-greater keeps the first adapter on ties, preserving
		// enumeration order.
		if score > bestScore {
			bestScore = score
			bestIndex = i
			bestQueueInfo = queueInfo
			bestSupport = support
			bestProperties = properties
		}
	}

	if bestIndex < 0 {
		core.LogFatal("No physical devices were found which meet the requirements.")
	}

	core.LogInfo("Selected device: '%s' (score %d).", vk.ToString(bestProperties.DeviceName[:]), bestScore)
	switch bestProperties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(bestProperties.ApiVersion)),
		vk.Version.Minor(vk.Version(bestProperties.ApiVersion)),
		vk.Version.Patch(vk.Version(bestProperties.ApiVersion)),
	)

	features := vk.PhysicalDeviceFeatures{}
	vk.GetPhysicalDeviceFeatures(physicalDevices[bestIndex], &features)

	memory := vk.PhysicalDeviceMemoryProperties{}
	vk.GetPhysicalDeviceMemoryProperties(physicalDevices[bestIndex], &memory)
	memory.Deref()

	context.Device.PhysicalDevice = physicalDevices[bestIndex]
	context.Device.GraphicsQueueIndex = int32(bestQueueInfo.GraphicsFamilyIndex)
	context.Device.PresentQueueIndex = int32(bestQueueInfo.PresentFamilyIndex)
	context.Device.SwapchainSupport = bestSupport
	context.Device.Properties = bestProperties
	context.Device.Features = features
	context.Device.Memory = memory

	core.LogInfo("Physical device selected.")
	return nil
}

// physicalDeviceIsEligible checks the hard requirements: a graphics queue
// family, a present-capable family, the swapchain extension and at least
// one surface format and present mode.
func physicalDeviceIsEligible(device vk.PhysicalDevice, surface vk.Surface, outQueueInfo *vulkanPhysicalDeviceQueueFamilyInfo, outSwapchainSupport *VulkanSwapchainSupportInfo) bool {
	var queueFamilyCount uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	graphicsFound := false
	presentFound := false
	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()

		if !graphicsFound && vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = uint32(i)
			graphicsFound = true
		}

		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false
		}
		if !presentFound && supportsPresent == vk.True {
			outQueueInfo.PresentFamilyIndex = uint32(i)
			presentFound = true
		}

		// Prefer a single family serving both roles.
		if supportsPresent == vk.True && vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = uint32(i)
			outQueueInfo.PresentFamilyIndex = uint32(i)
			graphicsFound = true
			presentFound = true
			break
		}
	}

	if !graphicsFound || !presentFound {
		return false
	}

	if !deviceExtensionPresent(device, vk.KhrSwapchainExtensionName) {
		core.LogInfo("Required extension not found: '%s', skipping device.", vk.KhrSwapchainExtensionName)
		return false
	}

	if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
		return false
	}
	if outSwapchainSupport.FormatCount < 1 || outSwapchainSupport.PresentModeCount < 1 {
		core.LogInfo("Required swapchain support not present, skipping device.")
		return false
	}

	return true
}

func deviceExtensionPresent(device vk.PhysicalDevice, name string) bool {
	var availableExtensionCount uint32 = 0
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
		return false
	}
	if availableExtensionCount == 0 {
		return false
	}
	availableExtensions := make([]vk.ExtensionProperties, availableExtensionCount)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
		return false
	}
	for i := range availableExtensions {
		availableExtensions[i].Deref()
		end := FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])
		if name == vk.ToString(availableExtensions[i].ExtensionName[:end+1]) {
			return true
		}
	}
	return false
}

func portabilitySubsetPresent(device vk.PhysicalDevice) bool {
	return deviceExtensionPresent(device, "VK_KHR_portability_subset")
}
