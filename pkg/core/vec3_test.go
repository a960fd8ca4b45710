package core

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func vecApproxEqual(a, b Vec3, tol float64) bool {
	return a.Subtract(b).Length() <= tol
}

func TestVec3_AddSubtractRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
	}{
		{"unit axes", NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"mixed signs", NewVec3(-3.5, 2.25, 7), NewVec3(0.1, -9, 4.4)},
		{"large and small", NewVec3(1e6, 1e-6, -1e3), NewVec3(-2e5, 3, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Add(tt.b).Subtract(tt.b)
			if !vecApproxEqual(result, tt.a, 1e-6) {
				t.Errorf("Expected %v, got %v", tt.a, result)
			}
		})
	}
}

func TestVec3_CrossIsOrthogonal(t *testing.T) {
	vectors := []Vec3{
		NewVec3(1, 2, 3),
		NewVec3(-4, 0.5, 2),
		NewVec3(0, 0, 1),
		NewVec3(7, -7, 0.25),
	}

	for _, a := range vectors {
		for _, b := range vectors {
			c := a.Cross(b)
			if math.Abs(c.Dot(a)) > 1e-9 {
				t.Errorf("cross(%v, %v) not orthogonal to a: dot=%g", a, b, c.Dot(a))
			}
			if math.Abs(c.Dot(b)) > 1e-9 {
				t.Errorf("cross(%v, %v) not orthogonal to b: dot=%g", a, b, c.Dot(b))
			}
		}
	}
}

func TestVec3_Normalize(t *testing.T) {
	tests := []Vec3{
		NewVec3(3, 4, 0),
		NewVec3(-1, -1, -1),
		NewVec3(1e-5, 2e-5, 0),
		NewVec3(1000, 0, -0.001),
	}

	for _, v := range tests {
		length := v.Normalize().Length()
		if math.Abs(length-1.0) > tolerance {
			t.Errorf("Normalize(%v) has length %g, expected 1", v, length)
		}
	}

	zero := NewVec3(0, 0, 0).Normalize()
	if zero != (Vec3{}) {
		t.Errorf("Normalize of zero vector should stay zero, got %v", zero)
	}
	if !zero.IsFinite() {
		t.Error("Normalize of zero vector produced non-finite components")
	}
}

func TestVec3_ReflectPreservesLength(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 1, 0).Normalize(),
		NewVec3(-0.3, 0.2, 0.9).Normalize(),
	}
	vectors := []Vec3{
		NewVec3(1, -1, 0),
		NewVec3(2, 3, -4),
		NewVec3(0, -5, 0),
	}

	for _, n := range normals {
		for _, v := range vectors {
			r := v.Reflect(n)
			if math.Abs(r.Length()-v.Length()) > 1e-9 {
				t.Errorf("reflect(%v, %v) changed length from %g to %g", v, n, v.Length(), r.Length())
			}
		}
	}

	// Reflection off a horizontal plane flips the vertical component
	r := NewVec3(1, -1, 0).Reflect(NewVec3(0, 1, 0))
	if !vecApproxEqual(r, NewVec3(1, 1, 0), tolerance) {
		t.Errorf("Expected (1, 1, 0), got %v", r)
	}
}

func TestVec3_Refract(t *testing.T) {
	normal := NewVec3(0, 1, 0)

	t.Run("normal incidence passes straight through", func(t *testing.T) {
		in := NewVec3(0, -1, 0)
		out := in.Refract(normal, 1.0/1.5)
		if !vecApproxEqual(out, in, tolerance) {
			t.Errorf("Expected %v, got %v", in, out)
		}
	})

	t.Run("matched indices do not bend", func(t *testing.T) {
		in := NewVec3(1, -1, 0).Normalize()
		out := in.Refract(normal, 1.0)
		if !vecApproxEqual(out, in, tolerance) {
			t.Errorf("Expected %v, got %v", in, out)
		}
	})

	t.Run("entering denser medium bends toward normal", func(t *testing.T) {
		in := NewVec3(1, -1, 0).Normalize()
		out := in.Refract(normal, 1.0/1.5)
		if math.Abs(out.Length()-1.0) > 1e-9 {
			t.Errorf("Refracted unit vector should stay unit length, got %g", out.Length())
		}
		sinIn := math.Abs(in.X)
		sinOut := math.Abs(out.X)
		if math.Abs(sinIn/1.5-sinOut) > 1e-9 {
			t.Errorf("Snell's law violated: sin_in=%g sin_out=%g", sinIn, sinOut)
		}
		if out.Y >= 0 {
			t.Errorf("Refracted ray should continue downward, got %v", out)
		}
	})
}

func TestVec3_NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 5e-10), true},
		{"one component large", NewVec3(1e-9, 1e-3, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, expected %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestVec3_ComponentWiseOps(t *testing.T) {
	a := NewVec3(2, 4, 6)
	b := NewVec3(1, 2, 3)

	if got := a.MultiplyVec(b); got != NewVec3(2, 8, 18) {
		t.Errorf("MultiplyVec: got %v", got)
	}
	if got := a.DivideVec(b); got != NewVec3(2, 2, 2) {
		t.Errorf("DivideVec: got %v", got)
	}
	if got := a.Divide(2); got != NewVec3(1, 2, 3) {
		t.Errorf("Divide: got %v", got)
	}
	if got := a.Negate(); got != NewVec3(-2, -4, -6) {
		t.Errorf("Negate: got %v", got)
	}
	if got := a.Lerp(b, 0.5); got != NewVec3(1.5, 3, 4.5) {
		t.Errorf("Lerp: got %v", got)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))
	if got := ray.At(1.5); got != NewVec3(1, 2, 0) {
		t.Errorf("Expected (1, 2, 0), got %v", got)
	}
}
