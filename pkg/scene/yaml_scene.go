package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/loaders"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// defaultYAMLCameraConfig is used for any camera setting a scene file omits
func defaultYAMLCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          90.0,
		Aperture:      0.0,
		FocusDistance: 0.0,
	}
}

// NewYAMLScene creates a scene from a YAML scene description file
func NewYAMLScene(path string) (*Scene, error) {
	desc, err := loaders.LoadScene(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file: %w", err)
	}

	name := desc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return NewSceneFromDescription(name, desc)
}

// NewSceneFromDescription converts a validated scene description into a scene.
// Each named material is constructed once and shared by the spheres using it.
func NewSceneFromDescription(name string, desc *loaders.SceneDescription) (*Scene, error) {
	cameraConfig := convertCamera(desc.Camera)
	if err := cameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera: %w", err)
	}

	s := NewScene(name, cameraConfig)

	if desc.Background != nil {
		if desc.Background.Top != nil {
			s.TopColor = loaders.ToVec3(desc.Background.Top)
		}
		if desc.Background.Bottom != nil {
			s.BottomColor = loaders.ToVec3(desc.Background.Bottom)
		}
	}

	materials := make(map[string]material.Material, len(desc.Materials))
	for matName, matDesc := range desc.Materials {
		mat, err := convertMaterial(matDesc)
		if err != nil {
			return nil, fmt.Errorf("failed to convert material %q: %w", matName, err)
		}
		materials[matName] = mat
	}

	for i, sphere := range desc.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d has no valid material (%q)", i, sphere.Material)
		}
		s.AddSphere(loaders.ToVec3(sphere.Center), sphere.Radius, mat)
	}

	return s, nil
}

// convertCamera applies the description's camera settings over the defaults
func convertCamera(desc *loaders.CameraDescription) renderer.CameraConfig {
	config := defaultYAMLCameraConfig()
	if desc == nil {
		return config
	}

	if desc.LookFrom != nil {
		config.Center = loaders.ToVec3(desc.LookFrom)
	}
	if desc.LookAt != nil {
		config.LookAt = loaders.ToVec3(desc.LookAt)
	}
	if desc.Up != nil {
		config.Up = loaders.ToVec3(desc.Up)
	}
	if desc.VFov != nil {
		config.VFov = *desc.VFov
	}
	if desc.Aperture != nil {
		config.Aperture = *desc.Aperture
	}
	if desc.FocusDistance != nil {
		config.FocusDistance = *desc.FocusDistance
	}
	return config
}

// convertMaterial builds a material from its description
func convertMaterial(desc loaders.MaterialDescription) (material.Material, error) {
	switch desc.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(loaders.ToVec3(desc.Albedo)), nil
	case loaders.MaterialMetal:
		return material.NewMetal(loaders.ToVec3(desc.Albedo), desc.Fuzz), nil
	case loaders.MaterialDielectric:
		return material.NewDielectric(desc.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("unsupported material type %q", desc.Type)
	}
}
