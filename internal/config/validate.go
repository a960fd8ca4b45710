package config

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-tracer/internal/logger"
)

// Validate rejects settings that cannot produce an image.
func (c *Config) Validate() error {
	if c.Image.Width <= 0 {
		return fmt.Errorf("image width must be positive, got %d", c.Image.Width)
	}
	if c.Image.AspectRatio < 0 || math.IsNaN(c.Image.AspectRatio) || math.IsInf(c.Image.AspectRatio, 0) {
		return fmt.Errorf("image aspect ratio must be positive (or 0 for the scene's), got %g", c.Image.AspectRatio)
	}
	if c.Image.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", c.Image.SamplesPerPixel)
	}
	if c.Image.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.Image.MaxDepth)
	}

	if err := c.Camera.validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}

	if c.Render.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Render.Workers)
	}
	if c.Render.TileSize < 0 {
		return fmt.Errorf("tile size must not be negative, got %d", c.Render.TileSize)
	}

	if !logger.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", c.Logging.Level)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxWidth <= 0 || c.Server.MaxSamples <= 0 || c.Server.MaxDepth < 0 {
		return fmt.Errorf("server limits must be positive: width %d, samples %d, depth %d",
			c.Server.MaxWidth, c.Server.MaxSamples, c.Server.MaxDepth)
	}
	if c.Server.MaxRenders <= 0 {
		return fmt.Errorf("server max renders must be positive, got %d", c.Server.MaxRenders)
	}

	return nil
}

func (c CameraConfig) validate() error {
	vectors := []struct {
		name   string
		values []float64
	}{
		{"look_from", c.LookFrom},
		{"look_at", c.LookAt},
		{"up", c.Up},
	}
	for _, v := range vectors {
		if v.values != nil && len(v.values) != 3 {
			return fmt.Errorf("%s must have 3 components, got %d", v.name, len(v.values))
		}
		for _, x := range v.values {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%s must be finite, got %v", v.name, v.values)
			}
		}
	}

	if c.VFov != nil && !(*c.VFov > 0 && *c.VFov < 180) {
		return fmt.Errorf("vfov must be in (0, 180) degrees, got %g", *c.VFov)
	}
	if c.Aperture != nil && (!(*c.Aperture >= 0) || math.IsInf(*c.Aperture, 0)) {
		return fmt.Errorf("aperture must be a non-negative finite number, got %g", *c.Aperture)
	}
	if c.FocusDistance != nil && (!(*c.FocusDistance >= 0) || math.IsInf(*c.FocusDistance, 0)) {
		return fmt.Errorf("focus distance must be a non-negative finite number, got %g", *c.FocusDistance)
	}
	return nil
}
