package assets

import (
	"encoding/binary"
	"fmt"
	"os"
)

// spirvMagic is the first word of every valid SPIR-V module.
const spirvMagic = 0x07230203

// LoadSPIRV reads a compiled shader binary and returns it as the uint32
// words Vulkan expects. Empty files and files whose size is not a multiple
// of four are rejected before they reach the driver.
func LoadSPIRV(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("shader: %s is empty", path)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("shader: %s size %d is not a multiple of 4", path, len(raw))
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("shader: %s has bad SPIR-V magic 0x%08x", path, words[0])
	}
	return words, nil
}
