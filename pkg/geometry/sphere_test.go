package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
	"github.com/df07/go-sphere-tracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_NaNDirection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(math.NaN(), 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Errorf("Expected no hit for a NaN direction, got t=%f", hit.T)
	}
}

func TestSphere_Hit_TowardCenter(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, nil)
	directions := []core.Vec3{
		core.NewVec3(0, 0, -1),
		core.NewVec3(0, 0, -3), // non-unit direction
	}

	for _, dir := range directions {
		ray := core.NewRay(core.NewVec3(0, 0, 0), dir)
		hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
		if !isHit {
			t.Fatalf("Expected hit for direction %v", dir)
		}
		if hit.T <= 0 {
			t.Errorf("Expected positive t, got %f", hit.T)
		}
		if !hit.FrontFace {
			t.Error("Expected front face hit from outside")
		}
		// Normal is anti-parallel to the ray: the cross product vanishes and they oppose
		unitDir := dir.Normalize()
		if hit.Normal.Cross(unitDir).Length() > 1e-9 || hit.Normal.Dot(unitDir) > -1+1e-9 {
			t.Errorf("Expected normal parallel to ray direction, got %v", hit.Normal)
		}
		if math.Abs(hit.Point.Z-(-0.5)) > 1e-9 {
			t.Errorf("Expected hit point at z=-0.5, got %v", hit.Point)
		}
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected tangent hit")
	}
	if math.Abs(hit.T-2.0) > 1e-9 {
		t.Errorf("Expected single root t=2, got %f", hit.T)
	}

	// Excluding the double root leaves no other solution
	if _, isHit := sphere.Hit(ray, 2.0, 1000.0); isHit {
		t.Error("Tangent ray should have exactly one root")
	}
}

func TestSphere_Hit_Interval(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	// Roots at t=4 and t=6

	tests := []struct {
		name      string
		tMin      float64
		tMax      float64
		expectHit bool
		expectedT float64
	}{
		{"both roots in range", 0.001, 100, true, 4},
		{"near root excluded by tMin", 4, 100, true, 6},
		{"tMax inclusive", 0.001, 4, true, 4},
		{"tMax before near root", 0.001, 3.9, false, 0},
		{"both excluded", 6, 100, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(ray, tt.tMin, tt.tMax)
			if isHit != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, isHit)
			}
			if isHit && math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestSphere_Hit_CarriesMaterial(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.3))
	sphere := NewSphere(core.NewVec3(0, 0, -2), 1, mat)
	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != mat {
		t.Error("Hit record should reference the sphere's material")
	}
	if math.Abs(hit.Normal.Length()-1) > 1e-9 {
		t.Errorf("Expected unit normal, got length %f", hit.Normal.Length())
	}
}

func TestSphere_NegativeRadiusFlipsNormal(t *testing.T) {
	shell := NewSphere(core.NewVec3(0, 0, 0), -1.0, nil)

	// From outside, the inner-wall sphere reports a back-face hit
	hit, isHit := shell.Hit(core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1)), 0.001, 100)
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.FrontFace {
		t.Error("Negative radius sphere should report back face from outside")
	}
	if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Normal should still oppose the ray, got %v", hit.Normal)
	}
}
