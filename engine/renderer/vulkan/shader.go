package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/parallax/engine/assets"
)

// createShaderModule loads a compiled SPIR-V binary and wraps it in a
// shader module. CodeSize is in bytes, PCode in words.
func createShaderModule(context *VulkanContext, path string) (vk.ShaderModule, error) {
	words, err := assets.LoadSPIRV(path)
	if err != nil {
		return vk.NullShaderModule, err
	}

	shaderModuleCreateInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(words) * 4),
		PCode:    words,
	}

	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &shaderModuleCreateInfo, context.Allocator, &module); res != vk.Success {
		return vk.NullShaderModule, fmt.Errorf("vkCreateShaderModule failed for %s with %s", path, VulkanResultString(res))
	}
	return module, nil
}
