package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/geometry"
	"github.com/df07/go-sphere-tracer/pkg/material"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
)

func spheres(t *testing.T, s *Scene) []*geometry.Sphere {
	t.Helper()
	result := make([]*geometry.Sphere, 0, s.World.Len())
	for i, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			t.Fatalf("Shape %d is %T, expected *geometry.Sphere", i, shape)
		}
		result = append(result, sphere)
	}
	return result
}

func TestDefaultSceneIsDeterministic(t *testing.T) {
	a := spheres(t, NewDefaultScene(7))
	b := spheres(t, NewDefaultScene(7))

	if len(a) != len(b) {
		t.Fatalf("Same seed produced %d and %d spheres", len(a), len(b))
	}
	for i := range a {
		if a[i].Center != b[i].Center || a[i].Radius != b[i].Radius {
			t.Fatalf("Sphere %d differs: %v/%g vs %v/%g", i, a[i].Center, a[i].Radius, b[i].Center, b[i].Radius)
		}
	}

	c := spheres(t, NewDefaultScene(8))
	same := len(a) == len(c)
	for i := 0; same && i < len(a); i++ {
		same = a[i].Center == c[i].Center
	}
	if same {
		t.Error("Different seeds should produce different scenes")
	}
}

func TestDefaultSceneLayout(t *testing.T) {
	s := NewDefaultScene(42)
	all := spheres(t, s)

	// Ground + small spheres + three large spheres
	if len(all) < 4 || len(all) > 1+22*22+3 {
		t.Fatalf("Unexpected sphere count %d", len(all))
	}

	ground := all[0]
	if ground.Center != core.NewVec3(0, -1000, 0) || ground.Radius != 1000 {
		t.Errorf("Unexpected ground sphere %v r=%g", ground.Center, ground.Radius)
	}

	keepOut := core.NewVec3(4, 0.2, 0)
	for i, sphere := range all[1 : len(all)-3] {
		if sphere.Radius != 0.2 || sphere.Center.Y != 0.2 {
			t.Errorf("Small sphere %d has center %v radius %g", i, sphere.Center, sphere.Radius)
		}
		if sphere.Center.Subtract(keepOut).Length() <= 0.9 {
			t.Errorf("Small sphere %d at %v is inside the keep-out zone", i, sphere.Center)
		}
		switch m := sphere.Material.(type) {
		case *material.Metal:
			if m.Fuzzness < 0 || m.Fuzzness >= 0.5 {
				t.Errorf("Small metal sphere %d has fuzz %g", i, m.Fuzzness)
			}
		case *material.Lambertian, *material.Dielectric:
		default:
			t.Errorf("Small sphere %d has unexpected material %T", i, m)
		}
	}

	large := all[len(all)-3:]
	expectedCenters := []core.Vec3{core.NewVec3(0, 1, 0), core.NewVec3(-4, 1, 0), core.NewVec3(4, 1, 0)}
	for i, sphere := range large {
		if sphere.Center != expectedCenters[i] || sphere.Radius != 1 {
			t.Errorf("Large sphere %d: got %v r=%g", i, sphere.Center, sphere.Radius)
		}
	}
	if _, ok := large[0].Material.(*material.Dielectric); !ok {
		t.Errorf("Center sphere should be glass, got %T", large[0].Material)
	}

	if s.CameraConfig.Center != core.NewVec3(13, 2, 3) || s.CameraConfig.VFov != 20 {
		t.Errorf("Unexpected camera %+v", s.CameraConfig)
	}
	if err := s.CameraConfig.Validate(); err != nil {
		t.Errorf("Default camera should be valid: %v", err)
	}
}

func TestThreeSpheresSceneHasHollowGlass(t *testing.T) {
	all := spheres(t, NewThreeSpheresScene())
	if len(all) != 5 {
		t.Fatalf("Expected 5 spheres, got %d", len(all))
	}

	inner := all[3]
	if inner.Radius != -0.4 {
		t.Errorf("Expected inner glass radius -0.4, got %g", inner.Radius)
	}
	if inner.Material != all[2].Material {
		t.Error("Hollow glass shell should share one material")
	}

	// The inner surface's normal points toward its center
	ray := core.NewRay(core.NewVec3(-1, 0, 1), core.NewVec3(0, 0, -1))
	hit, isHit := inner.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		t.Fatal("Expected ray to hit inner sphere")
	}
	if hit.Normal.Dot(ray.Direction) >= 0 {
		t.Errorf("Normal %v should oppose the ray", hit.Normal)
	}
	if hit.FrontFace {
		t.Error("Entering a negative-radius sphere should report a back face")
	}
}

func TestEmptyScene(t *testing.T) {
	s := NewEmptyScene()
	if s.GetPrimitiveCount() != 0 {
		t.Errorf("Expected no surfaces, got %d", s.GetPrimitiveCount())
	}
	if _, isHit := s.GetWorld().Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1)); isHit {
		t.Error("Empty scene should never be hit")
	}
	top, bottom := s.GetBackgroundColors()
	if top != DefaultTopColor || bottom != DefaultBottomColor {
		t.Errorf("Unexpected background %v / %v", top, bottom)
	}
}

func TestSphereGridScene(t *testing.T) {
	s := NewSphereGridScene(4)
	if got := s.GetPrimitiveCount(); got != 1+16 {
		t.Errorf("Expected 17 spheres, got %d", got)
	}
	for i, sphere := range spheres(t, s)[1:] {
		metal, ok := sphere.Material.(*material.Metal)
		if !ok {
			t.Fatalf("Grid sphere %d should be metal, got %T", i, sphere.Material)
		}
		albedo := metal.Albedo
		if albedo.X < 0 || albedo.X > 1 || albedo.Y < 0 || albedo.Y > 1 || albedo.Z < 0 || albedo.Z > 1 {
			t.Errorf("Grid sphere %d albedo %v out of range", i, albedo)
		}
	}
}

func TestSetCameraConfig(t *testing.T) {
	s := NewEmptyScene()
	config := s.CameraConfig
	config.Center = core.NewVec3(0, 0, 5)
	config.LookAt = core.NewVec3(0, 0, 0)
	s.SetCameraConfig(config)

	if s.GetCamera().Config().Center != config.Center {
		t.Errorf("Camera not rebuilt: %v", s.GetCamera().Config().Center)
	}
}

func TestSceneRendersThroughRaytracer(t *testing.T) {
	s := NewThreeSpheresScene()
	rt := renderer.NewRaytracer(s, 16, 9)
	rt.SetSamplingConfig(renderer.SamplingConfig{SamplesPerPixel: 2, MaxDepth: 5})
	rt.SetParallelConfig(renderer.ParallelConfig{TileSize: 8, NumWorkers: 2, Seed: 1})

	img, stats := rt.RenderPass()
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
		t.Errorf("Unexpected image bounds %v", img.Bounds())
	}
	if stats.TotalSamples != 16*9*2 {
		t.Errorf("Expected %d samples, got %d", 16*9*2, stats.TotalSamples)
	}
}

func TestCreate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Create(name, 1)
			if err != nil {
				t.Fatalf("Create(%q) error = %v", name, err)
			}
			if s.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, s.Name)
			}
			if s.GetCamera() == nil {
				t.Error("Scene has no camera")
			}
		})
	}

	if _, err := Create("cornell-box", 1); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestCreateFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.yaml")
	content := `
camera:
  look_from: [0, 0, 2]
  look_at: [0, 0, -1]
background:
  top: [0, 0, 1]
materials:
  glass: {type: dielectric, refractive_index: 1.5}
  red: {type: lambertian, albedo: [0.9, 0.1, 0.1]}
spheres:
  - {center: [-1, 0, -1], radius: 0.5, material: glass}
  - {center: [1, 0, -1], radius: 0.5, material: glass}
  - {center: [0, 0, -1], radius: 0.5, material: red}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := Create(path, 1)
	if err != nil {
		t.Fatalf("Create(%q) error = %v", path, err)
	}

	if s.Name != "pair" {
		t.Errorf("Expected name from file, got %q", s.Name)
	}
	all := spheres(t, s)
	if len(all) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(all))
	}
	if all[0].Material != all[1].Material {
		t.Error("Spheres naming the same material should share it")
	}
	if s.CameraConfig.Center != core.NewVec3(0, 0, 2) {
		t.Errorf("Expected camera at (0,0,2), got %v", s.CameraConfig.Center)
	}
	if s.CameraConfig.VFov != 90 {
		t.Errorf("Omitted vfov should default to 90, got %g", s.CameraConfig.VFov)
	}
	if s.TopColor != core.NewVec3(0, 0, 1) || s.BottomColor != DefaultBottomColor {
		t.Errorf("Unexpected background %v / %v", s.TopColor, s.BottomColor)
	}
}

func TestCreateFromYAMLRejectsDegenerateCamera(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	content := "camera:\n  look_from: [0, 0, -1]\n  look_at: [0, 0, -1]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	if _, err := Create(path, 1); err == nil {
		t.Error("Expected error for coincident look-from and look-at")
	}
}
