package material

import (
	"testing"

	"github.com/df07/go-sphere-tracer/pkg/core"
)

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	tests := []struct {
		name           string
		direction      core.Vec3
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{"approaching from outside", core.NewVec3(0, 0, -1), true, outward},
		{"approaching from inside", core.NewVec3(0, 0, 1), false, outward.Negate()},
		{"oblique outside", core.NewVec3(1, 1, -0.1), true, outward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit HitRecord
			hit.SetFaceNormal(core.NewRay(core.NewVec3(0, 0, 0), tt.direction), outward)
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if hit.Normal != tt.expectedNormal {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if hit.Normal.Dot(tt.direction) > 0 {
				t.Error("Normal should face against the incoming ray")
			}
		})
	}
}
