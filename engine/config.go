package engine

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/parallax/engine/core"
)

// Config is the on-disk application configuration, loaded from a TOML
// file. Zero values are replaced with defaults so a partial file works.
type Config struct {
	Window struct {
		Title  string `toml:"title"`
		Width  uint32 `toml:"width"`
		Height uint32 `toml:"height"`
	} `toml:"window"`

	Renderer struct {
		StarCapacity     uint32 `toml:"star_capacity"`
		VertexShaderPath string `toml:"vertex_shader"`
		FragShaderPath   string `toml:"fragment_shader"`
		ShaderDir        string `toml:"shader_dir"`
		EnableValidation bool   `toml:"enable_validation"`
	} `toml:"renderer"`

	Catalog struct {
		// Either "bright" or "hipparcos", selecting the CSV column layout.
		Format string `toml:"format"`
		Path   string `toml:"path"`
	} `toml:"catalog"`

	Observer struct {
		LatitudeDeg  float64 `toml:"latitude_deg"`
		LongitudeDeg float64 `toml:"longitude_deg"`
	} `toml:"observer"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func DefaultConfig() Config {
	var cfg Config
	cfg.Window.Title = "Parallax"
	cfg.Window.Width = 1280
	cfg.Window.Height = 720
	cfg.Renderer.StarCapacity = 65536
	cfg.Renderer.VertexShaderPath = "assets/shaders/starfield.vert.spv"
	cfg.Renderer.FragShaderPath = "assets/shaders/starfield.frag.spv"
	cfg.Renderer.ShaderDir = "assets/shaders"
	cfg.Catalog.Format = "bright"
	cfg.Catalog.Path = "assets/catalogs/bright_stars.csv"
	// Greenwich.
	cfg.Observer.LatitudeDeg = 51.4769
	cfg.Observer.LongitudeDeg = 0.0
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads the TOML file at path, overlaying it on the defaults.
// A missing file is not an error; the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogInfo("config: %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		return cfg, fmt.Errorf("config: window size must be positive")
	}
	if cfg.Renderer.StarCapacity == 0 {
		return cfg, fmt.Errorf("config: star_capacity must be positive")
	}
	switch cfg.Catalog.Format {
	case "bright", "hipparcos":
	default:
		return cfg, fmt.Errorf("config: unknown catalog format %q", cfg.Catalog.Format)
	}

	core.LogInfo("config: loaded %s", path)
	return cfg, nil
}
