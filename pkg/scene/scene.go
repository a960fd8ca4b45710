package scene

import (
	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *renderer.Camera
	World          *geometry.ShapeList // Objects in the scene
	TopColor       core.Vec3           // Sky color straight up
	BottomColor    core.Vec3           // Sky color straight down
	SamplingConfig renderer.SamplingConfig
	CameraConfig   renderer.CameraConfig
}

// DefaultTopColor and DefaultBottomColor form the standard blue-to-white sky
var (
	DefaultTopColor    = core.NewVec3(0.5, 0.7, 1.0)
	DefaultBottomColor = core.NewVec3(1.0, 1.0, 1.0)
)

// NewScene creates an empty scene with the standard sky and the given camera
func NewScene(name string, cameraConfig renderer.CameraConfig) *Scene {
	return &Scene{
		Name:           name,
		Camera:         renderer.NewCamera(cameraConfig),
		World:          geometry.NewShapeList(),
		TopColor:       DefaultTopColor,
		BottomColor:    DefaultBottomColor,
		SamplingConfig: renderer.DefaultSamplingConfig(),
		CameraConfig:   cameraConfig,
	}
}

// AddSphere adds a sphere to the world. A negative radius flips its normals.
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// SetCameraConfig replaces the camera. It must not be called while rendering.
func (s *Scene) SetCameraConfig(config renderer.CameraConfig) {
	s.CameraConfig = config
	s.Camera = renderer.NewCamera(config)
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns the aggregate of every surface in the scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
