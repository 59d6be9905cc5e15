package geometry

import (
	"math"
	"testing"
)

func TestTriangleArea(t *testing.T) {
	// Right triangle with legs 3 and 4
	tri := NewTriangle(
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	area := tri.Area()
	expected := 6.0

	if math.Abs(area-expected) > 1e-10 {
		t.Errorf("Area failed: expected %v, got %v", expected, area)
	}
}

func TestTriangleAreaPermutationInvariant(t *testing.T) {
	v1 := NewVector3(0.5, 1.25, -3)
	v2 := NewVector3(4, 0, 2.5)
	v3 := NewVector3(-1, 2, 7)

	base := TriangleArea(v1, v2, v3)
	permutations := [][3]Vector3{
		{v1, v3, v2},
		{v2, v1, v3},
		{v2, v3, v1},
		{v3, v1, v2},
		{v3, v2, v1},
	}

	for i, p := range permutations {
		area := TriangleArea(p[0], p[1], p[2])
		if math.Abs(area-base) > 1e-10 {
			t.Errorf("permutation %d: expected area %v, got %v", i, base, area)
		}
	}
}

func TestTriangleAreaColinear(t *testing.T) {
	area := TriangleArea(
		NewVector3(0, 0, 0),
		NewVector3(1, 1, 1),
		NewVector3(2, 2, 2),
	)

	if math.Abs(area) > 1e-12 {
		t.Errorf("colinear points: expected area 0, got %v", area)
	}
}

func TestTriangleAreaSliver(t *testing.T) {
	// Near-degenerate sliver: a tiny but valid area, not an error
	area := TriangleArea(
		NewVector3(0, 0, 0),
		NewVector3(10, 0, 0),
		NewVector3(5, 1e-9, 0),
	)

	if area < 0 {
		t.Errorf("sliver area must be non-negative, got %v", area)
	}
	if area > 1e-6 {
		t.Errorf("sliver area unexpectedly large: %v", area)
	}
}

func TestTriangleCenter(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 3, 0),
	)

	center := tri.Center()
	expected := NewVector3(1, 1, 0)

	if center != expected {
		t.Errorf("Center failed: expected %v, got %v", expected, center)
	}
}
