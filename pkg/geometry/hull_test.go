package geometry

import (
	"math"
	"math/rand"
	"testing"
)

func containsPoint(points []Point2, p Point2) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}

func TestConvexHullSquare(t *testing.T) {
	points := []Point2{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {2, 3}, {7, 8}, // interior points
	}

	hull := ConvexHull(points)

	if len(hull) != 4 {
		t.Fatalf("expected 4 hull vertices, got %d: %v", len(hull), hull)
	}
	for _, corner := range []Point2{{0, 0}, {10, 0}, {10, 10}, {0, 10}} {
		if !containsPoint(hull, corner) {
			t.Errorf("hull missing corner %v", corner)
		}
	}
	for _, interior := range []Point2{{5, 5}, {2, 3}, {7, 8}} {
		if containsPoint(hull, interior) {
			t.Errorf("hull contains interior point %v", interior)
		}
	}
}

func TestConvexHullIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := make([]Point2, 200)
	for i := range points {
		points[i] = Point2{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}

	hull := ConvexHull(points)
	again := ConvexHull(hull)

	if len(hull) != len(again) {
		t.Fatalf("hull of hull changed size: %d vs %d", len(hull), len(again))
	}
	for _, p := range hull {
		if !containsPoint(again, p) {
			t.Errorf("hull of hull lost vertex %v", p)
		}
	}
}

func TestConvexHullNoInteriorPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]Point2, 100)
	for i := range points {
		points[i] = Point2{X: rng.Float64()*20 - 10, Y: rng.Float64()*20 - 10}
	}

	hull := ConvexHull(points)

	// Every hull vertex must be extreme: no other point may lie strictly
	// outside any hull edge.
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		for _, p := range points {
			if cross2(a, b, p) < -1e-9 {
				t.Fatalf("point %v lies outside hull edge %v-%v", p, a, b)
			}
		}
	}
}

func TestConvexHullDegenerate(t *testing.T) {
	empty := ConvexHull(nil)
	if len(empty) != 0 {
		t.Errorf("empty input: expected empty hull, got %v", empty)
	}

	single := ConvexHull([]Point2{{1, 2}})
	if len(single) != 1 || single[0] != (Point2{1, 2}) {
		t.Errorf("single point: expected input back, got %v", single)
	}

	pair := ConvexHull([]Point2{{0, 0}, {3, 3}})
	if len(pair) != 2 {
		t.Errorf("two points: expected input back, got %v", pair)
	}

	dupes := ConvexHull([]Point2{{1, 1}, {1, 1}, {1, 1}})
	if len(dupes) != 1 {
		t.Errorf("duplicate points: expected single point, got %v", dupes)
	}
}

func TestConvexHullColinear(t *testing.T) {
	points := []Point2{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}}

	hull := ConvexHull(points)

	// Colinear input reduces to a line segment
	if len(hull) != 2 {
		t.Fatalf("colinear input: expected 2 endpoints, got %d: %v", len(hull), hull)
	}
	if !containsPoint(hull, Point2{0, 0}) || !containsPoint(hull, Point2{4, 4}) {
		t.Errorf("colinear input: expected endpoints, got %v", hull)
	}
}

func TestConvexHullCounterClockwise(t *testing.T) {
	points := []Point2{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}}

	hull := ConvexHull(points)

	signed := 0.0
	j := len(hull) - 1
	for i := range hull {
		signed += hull[j].X*hull[i].Y - hull[i].X*hull[j].Y
		j = i
	}
	if signed <= 0 {
		t.Errorf("expected counter-clockwise winding, signed area %v", signed)
	}
}

func TestPolygonArea(t *testing.T) {
	square := []Point2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	area := PolygonArea(square)
	if math.Abs(area-100) > 1e-10 {
		t.Errorf("square area failed: expected 100, got %v", area)
	}

	if PolygonArea(square[:2]) != 0 {
		t.Errorf("degenerate polygon: expected area 0")
	}
}
