package geometry

import (
	"math"
	"testing"
)

func TestIdentityApply(t *testing.T) {
	p := NewVector3(1, 2, 3)
	result := Identity().Apply(p)

	if result != p {
		t.Errorf("Identity failed: expected %v, got %v", p, result)
	}
}

func TestTranslationApply(t *testing.T) {
	p := NewVector3(1, 2, 3)
	result := NewTranslation(10, 20, 30).Apply(p)

	expected := NewVector3(11, 22, 33)
	if result != expected {
		t.Errorf("Translation failed: expected %v, got %v", expected, result)
	}
}

func TestRotationYApply(t *testing.T) {
	// Quarter turn about Y maps +X onto -Z
	p := NewVector3(1, 0, 0)
	result := NewRotationY(math.Pi / 2).Apply(p)

	if math.Abs(result.X) > 1e-10 || math.Abs(result.Y) > 1e-10 || math.Abs(result.Z+1) > 1e-10 {
		t.Errorf("RotationY failed: expected (0, 0, -1), got %v", result)
	}
}

func TestTransformMul(t *testing.T) {
	translate := NewTranslation(5, 0, 0)
	rotate := NewRotationY(math.Pi / 2)

	// Rotate first, then translate
	combined := translate.Mul(rotate)
	result := combined.Apply(NewVector3(1, 0, 0))

	if math.Abs(result.X-5) > 1e-10 || math.Abs(result.Y) > 1e-10 || math.Abs(result.Z+1) > 1e-10 {
		t.Errorf("Mul failed: expected (5, 0, -1), got %v", result)
	}
}

func TestTransformPreservesArea(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 0),
		NewVector3(4, 0, 0),
		NewVector3(0, 0, 3),
	)
	base := tri.Area()

	xf := NewTranslation(2, -7, 1).Mul(NewRotationY(0.7))
	moved := NewTriangle(xf.Apply(tri.V1), xf.Apply(tri.V2), xf.Apply(tri.V3))

	if math.Abs(moved.Area()-base) > 1e-10 {
		t.Errorf("rigid transform changed area: expected %v, got %v", base, moved.Area())
	}
}
