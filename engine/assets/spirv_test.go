package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWords(t *testing.T, name string, words []uint32) string {
	t.Helper()
	raw := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(raw[i*4:], w)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestLoadSPIRV(t *testing.T) {
	want := []uint32{0x07230203, 0x00010000, 0xdeadbeef}
	path := writeWords(t, "ok.spv", want)

	words, err := LoadSPIRV(path)
	require.NoError(t, err)
	assert.Equal(t, want, words)
}

func TestLoadSPIRVRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.spv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := LoadSPIRV(path)
	assert.ErrorContains(t, err, "empty")
}

func TestLoadSPIRVRejectsUnalignedSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.spv")
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x02, 0x23}, 0o644))

	_, err := LoadSPIRV(path)
	assert.ErrorContains(t, err, "multiple of 4")
}

func TestLoadSPIRVRejectsBadMagic(t *testing.T) {
	path := writeWords(t, "bad.spv", []uint32{0x12345678, 0x0})

	_, err := LoadSPIRV(path)
	assert.ErrorContains(t, err, "magic")
}

func TestLoadSPIRVMissingFile(t *testing.T) {
	_, err := LoadSPIRV(filepath.Join(t.TempDir(), "missing.spv"))
	assert.Error(t, err)
}
