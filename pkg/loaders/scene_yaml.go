package loaders

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

// Material type names accepted in scene descriptions
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// SceneDescription is the parsed content of a YAML scene file.
// Vectors are written as three-element lists.
type SceneDescription struct {
	Name        string                         `yaml:"name"`
	Description string                         `yaml:"description"`
	Camera      *CameraDescription             `yaml:"camera"`
	Background  *BackgroundDescription         `yaml:"background"`
	Materials   map[string]MaterialDescription `yaml:"materials"`
	Spheres     []SphereDescription            `yaml:"spheres"`
}

// CameraDescription holds optional camera settings; omitted fields keep their defaults
type CameraDescription struct {
	LookFrom      []float64 `yaml:"look_from"`
	LookAt        []float64 `yaml:"look_at"`
	Up            []float64 `yaml:"up"`
	VFov          *float64  `yaml:"vfov"`
	Aperture      *float64  `yaml:"aperture"`
	FocusDistance *float64  `yaml:"focus_distance"`
}

// BackgroundDescription sets the sky gradient
type BackgroundDescription struct {
	Top    []float64 `yaml:"top"`
	Bottom []float64 `yaml:"bottom"`
}

// MaterialDescription describes one named material
type MaterialDescription struct {
	Type            string    `yaml:"type"`
	Albedo          []float64 `yaml:"albedo"`
	Fuzz            float64   `yaml:"fuzz"`
	RefractiveIndex float64   `yaml:"refractive_index"`
}

// SphereDescription places a sphere using a named material
type SphereDescription struct {
	Center   []float64 `yaml:"center"`
	Radius   float64   `yaml:"radius"`
	Material string    `yaml:"material"`
}

// ParseScene decodes and validates a scene description from an io.Reader.
// Unknown keys are rejected. An empty document is an empty scene.
func ParseScene(reader io.Reader) (*SceneDescription, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	desc := &SceneDescription{}
	if err := decoder.Decode(desc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse scene description: %w", err)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// LoadScene loads and parses a YAML scene file
func LoadScene(filename string) (*SceneDescription, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	desc, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return desc, nil
}

// IsSceneFile reports whether the name refers to a YAML scene file
func IsSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks every vector, material and material reference
func (d *SceneDescription) Validate() error {
	if d.Camera != nil {
		if err := d.Camera.validate(); err != nil {
			return fmt.Errorf("camera: %w", err)
		}
	}

	if d.Background != nil {
		if err := checkVec3("top", d.Background.Top, true); err != nil {
			return fmt.Errorf("background: %w", err)
		}
		if err := checkVec3("bottom", d.Background.Bottom, true); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	}

	// Sorted for stable error messages
	names := make([]string, 0, len(d.Materials))
	for name := range d.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.Materials[name].validate(); err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
	}

	for i, sphere := range d.Spheres {
		if err := checkVec3("center", sphere.Center, false); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
		if sphere.Radius == 0 || math.IsNaN(sphere.Radius) || math.IsInf(sphere.Radius, 0) {
			return fmt.Errorf("sphere %d: radius must be a non-zero finite number, got %g", i, sphere.Radius)
		}
		if _, ok := d.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: unknown material %q", i, sphere.Material)
		}
	}

	return nil
}

func (c *CameraDescription) validate() error {
	if err := checkVec3("look_from", c.LookFrom, true); err != nil {
		return err
	}
	if err := checkVec3("look_at", c.LookAt, true); err != nil {
		return err
	}
	if err := checkVec3("up", c.Up, true); err != nil {
		return err
	}
	if c.VFov != nil && !(*c.VFov > 0 && *c.VFov < 180) {
		return fmt.Errorf("vfov must be in (0, 180) degrees, got %g", *c.VFov)
	}
	if c.Aperture != nil && !nonNegativeFinite(*c.Aperture) {
		return fmt.Errorf("aperture must be a non-negative finite number, got %g", *c.Aperture)
	}
	if c.FocusDistance != nil && !nonNegativeFinite(*c.FocusDistance) {
		return fmt.Errorf("focus_distance must be a non-negative finite number, got %g", *c.FocusDistance)
	}
	return nil
}

func (m MaterialDescription) validate() error {
	switch m.Type {
	case MaterialLambertian:
		return checkVec3("albedo", m.Albedo, false)
	case MaterialMetal:
		if err := checkVec3("albedo", m.Albedo, false); err != nil {
			return err
		}
		if !(m.Fuzz >= 0 && m.Fuzz <= 1) {
			return fmt.Errorf("fuzz must be in [0, 1], got %g", m.Fuzz)
		}
		return nil
	case MaterialDielectric:
		if !(m.RefractiveIndex > 0) || math.IsInf(m.RefractiveIndex, 0) {
			return fmt.Errorf("refractive_index must be positive, got %g", m.RefractiveIndex)
		}
		return nil
	case "":
		return errors.New("missing type")
	default:
		return fmt.Errorf("unknown type %q (expected %s, %s or %s)", m.Type, MaterialLambertian, MaterialMetal, MaterialDielectric)
	}
}

// nonNegativeFinite is false for NaN, infinities and negative values
func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// checkVec3 ensures values is a finite three-element vector; optional vectors may be absent
func checkVec3(field string, values []float64, optional bool) error {
	if values == nil && optional {
		return nil
	}
	if len(values) != 3 {
		return fmt.Errorf("%s must have 3 components, got %d", field, len(values))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", field, values)
		}
	}
	return nil
}

// ToVec3 converts a validated three-element list into a vector
func ToVec3(values []float64) core.Vec3 {
	if len(values) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(values[0], values[1], values[2])
}

// validateFilePath rejects paths that cannot be scene files
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	if !IsSceneFile(cleanPath) {
		return fmt.Errorf("invalid file type: only .yaml and .yml files are allowed")
	}

	return nil
}
