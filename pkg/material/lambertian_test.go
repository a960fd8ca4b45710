package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

func TestLambertian_AlwaysScatters(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.3, 0.1)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	normals := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(0, 1, 0),
		core.NewVec3(1, -1, 1).Normalize(),
	}

	for _, normal := range normals {
		hit := HitRecord{
			Point:     core.NewVec3(1, 2, 3),
			Normal:    normal,
			FrontFace: true,
			Material:  lambertian,
		}
		ray := core.NewRay(normal.Multiply(2), normal.Negate())

		for i := 0; i < 1000; i++ {
			scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
			if !didScatter {
				t.Fatal("Lambertian should always scatter")
			}
			if scatter.Attenuation != albedo {
				t.Fatalf("Expected attenuation %v, got %v", albedo, scatter.Attenuation)
			}
			if scatter.Scattered.Origin != hit.Point {
				t.Fatalf("Scattered ray should start at hit point %v, got %v", hit.Point, scatter.Scattered.Origin)
			}
			// normal + unit vector never points into the surface
			if scatter.Scattered.Direction.Dot(normal) < -1e-12 {
				t.Fatalf("Scatter direction %v points below the surface", scatter.Scattered.Direction)
			}
			if scatter.Scattered.Direction.NearZero() {
				t.Fatal("Scatter direction must not be degenerate")
			}
		}
	}
}

// fixedSampler replays a fixed sequence of values
type fixedSampler struct {
	values []float64
	index  int
}

func (f *fixedSampler) next() float64 {
	v := f.values[f.index%len(f.values)]
	f.index++
	return v
}

func (f *fixedSampler) Get1D() float64 { return f.next() }
func (f *fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.next(), f.next(), f.next())
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	normal := core.NewVec3(0, 1, 0)

	// Sample maps to (0, -0.5, 0), whose unit vector exactly cancels the normal
	sampler := &fixedSampler{values: []float64{0.5, 0.25, 0.5}}

	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
	if !didScatter {
		t.Fatal("Lambertian should always scatter")
	}
	if scatter.Scattered.Direction != normal {
		t.Errorf("Expected fallback to normal %v, got %v", normal, scatter.Scattered.Direction)
	}
}

func TestLambertian_CosineDistribution(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(1, 1, 1))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	// For a cosine-weighted lobe E[cos(theta)] = 2/3
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		scatter, _ := lambertian.Scatter(ray, hit, sampler)
		sum += scatter.Scattered.Direction.Normalize().Dot(normal)
	}
	mean := sum / n
	if math.Abs(mean-2.0/3.0) > 0.02 {
		t.Errorf("Expected mean cosine near 2/3, got %f", mean)
	}
}
