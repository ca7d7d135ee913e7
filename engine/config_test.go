package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parallax.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[window]
width = 1920
height = 1080

[observer]
latitude_deg = -33.8688
longitude_deg = 151.2093
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1920), cfg.Window.Width)
	assert.Equal(t, uint32(1080), cfg.Window.Height)
	assert.InDelta(t, -33.8688, cfg.Observer.LatitudeDeg, 1e-9)
	// Untouched sections keep their defaults.
	assert.Equal(t, "Parallax", cfg.Window.Title)
	assert.Equal(t, uint32(65536), cfg.Renderer.StarCapacity)
	assert.Equal(t, "bright", cfg.Catalog.Format)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := writeTempConfig(t, `
[window]
width = 0
`)
	_, err := LoadConfig(path)
	assert.Error(t, err)

	path = writeTempConfig(t, `
[catalog]
format = "messier"
`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "not valid [toml")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
