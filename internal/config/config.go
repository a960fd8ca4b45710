// Package config handles render configuration loading and management.
package config

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Config holds all render settings.
type Config struct {
	Image   ImageConfig   `yaml:"image"`
	Camera  CameraConfig  `yaml:"camera"`
	Scene   SceneConfig   `yaml:"scene"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// ImageConfig holds output image settings.
type ImageConfig struct {
	Width           int     `yaml:"width"`
	AspectRatio     float64 `yaml:"aspect_ratio"` // 0 = use the scene's camera aspect
	SamplesPerPixel int     `yaml:"samples_per_pixel"`
	MaxDepth        int     `yaml:"max_depth"`
	Output          string  `yaml:"output"`
}

// CameraConfig holds optional overrides applied over the scene's camera.
// Unset fields keep the scene's value.
type CameraConfig struct {
	LookFrom      []float64 `yaml:"look_from,omitempty"`
	LookAt        []float64 `yaml:"look_at,omitempty"`
	Up            []float64 `yaml:"up,omitempty"`
	VFov          *float64  `yaml:"vfov,omitempty"`
	Aperture      *float64  `yaml:"aperture,omitempty"`
	FocusDistance *float64  `yaml:"focus_distance,omitempty"`
}

// SceneConfig selects the scene to render.
type SceneConfig struct {
	Name string `yaml:"name"` // Built-in scene name or path to a .yaml scene file
	Dir  string `yaml:"dir"`  // Directory searched for scene files
}

// RenderConfig holds parallelism settings.
type RenderConfig struct {
	Workers  int   `yaml:"workers"` // 0 = one per CPU
	TileSize int   `yaml:"tile_size"`
	Seed     int64 `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ServerConfig holds HTTP front end settings.
type ServerConfig struct {
	Port       int `yaml:"port"`
	MaxWidth   int `yaml:"max_width"`
	MaxSamples int `yaml:"max_samples"`
	MaxDepth   int `yaml:"max_depth"`
	MaxRenders int `yaml:"max_renders"` // Renders allowed to run at once
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Image: ImageConfig{
			Width:           400,
			AspectRatio:     0,
			SamplesPerPixel: 100,
			MaxDepth:        50,
			Output:          "image.ppm",
		},
		Scene: SceneConfig{
			Name: "default",
			Dir:  "scenes",
		},
		Render: RenderConfig{
			Workers:  0,
			TileSize: 32,
			Seed:     42,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Server: ServerConfig{
			Port:       8080,
			MaxWidth:   1920,
			MaxSamples: 1000,
			MaxDepth:   100,
			MaxRenders: 2,
		},
	}
}

// ImageSize returns the output dimensions for a camera with the given aspect
// ratio. A configured aspect ratio takes precedence. Height is at least 1.
func (c *Config) ImageSize(cameraAspect float64) (width, height int) {
	aspect := cameraAspect
	if c.Image.AspectRatio > 0 {
		aspect = c.Image.AspectRatio
	}
	width = c.Image.Width
	height = 1
	if aspect > 0 {
		height = max(int(float64(width)/aspect), 1)
	}
	return width, height
}

// ApplyCamera returns base with every configured camera override applied.
// A configured image aspect ratio also becomes the camera's aspect ratio.
func (c *Config) ApplyCamera(base renderer.CameraConfig) renderer.CameraConfig {
	cam := c.Camera
	if cam.LookFrom != nil {
		base.Center = toVec3(cam.LookFrom)
	}
	if cam.LookAt != nil {
		base.LookAt = toVec3(cam.LookAt)
	}
	if cam.Up != nil {
		base.Up = toVec3(cam.Up)
	}
	if cam.VFov != nil {
		base.VFov = *cam.VFov
	}
	if cam.Aperture != nil {
		base.Aperture = *cam.Aperture
	}
	if cam.FocusDistance != nil {
		base.FocusDistance = *cam.FocusDistance
	}
	if c.Image.AspectRatio > 0 {
		base.AspectRatio = c.Image.AspectRatio
	}
	return base
}

// Sampling returns the per-pixel sampling settings.
func (c *Config) Sampling() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		SamplesPerPixel: c.Image.SamplesPerPixel,
		MaxDepth:        c.Image.MaxDepth,
	}
}

// Parallel returns the tiling and worker settings.
func (c *Config) Parallel() renderer.ParallelConfig {
	return renderer.ParallelConfig{
		TileSize:   c.Render.TileSize,
		NumWorkers: c.Render.Workers,
		Seed:       c.Render.Seed,
	}
}

func toVec3(values []float64) core.Vec3 {
	if len(values) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(values[0], values[1], values[2])
}
