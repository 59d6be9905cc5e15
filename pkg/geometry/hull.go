package geometry

// Point2 represents a 2D point on the horizontal plane
type Point2 struct {
	X, Y float64
}

// MaxHullVertices caps the number of hull vertices produced by ConvexHull.
// Hitting the cap truncates the hull instead of looping on malformed or
// extremely dense inputs.
const MaxHullVertices = 512

// cross2 returns the z-component of the cross product of (a-o) and (b-o).
// Positive means the turn o->a->b is counter-clockwise.
func cross2(o, a, b Point2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func sqDist2(a, b Point2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// ConvexHull computes the 2D convex hull of a point set using gift wrapping
// (Jarvis march). The hull is returned in counter-clockwise order starting
// from the leftmost point. Degenerate input (fewer than 3 distinct points,
// or all points colinear) returns the reduced point set rather than failing.
func ConvexHull(points []Point2) []Point2 {
	pts := dedupePoints(points)
	if len(pts) < 3 {
		return pts
	}

	start := 0
	for i, p := range pts {
		if p.X < pts[start].X || (p.X == pts[start].X && p.Y < pts[start].Y) {
			start = i
		}
	}

	hull := make([]Point2, 0, 16)
	current := start
	for {
		hull = append(hull, pts[current])
		if len(hull) >= MaxHullVertices {
			break
		}

		next := (current + 1) % len(pts)
		for i := range pts {
			if i == current {
				continue
			}
			turn := cross2(pts[current], pts[next], pts[i])
			if turn < 0 || (turn == 0 && sqDist2(pts[current], pts[i]) > sqDist2(pts[current], pts[next])) {
				next = i
			}
		}

		current = next
		if current == start {
			break
		}
	}

	return hull
}

// dedupePoints removes exact duplicates while preserving first-seen order
func dedupePoints(points []Point2) []Point2 {
	seen := make(map[Point2]struct{}, len(points))
	out := make([]Point2, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// PolygonArea returns the area enclosed by a closed polygon using the
// shoelace formula. The result is non-negative regardless of winding.
func PolygonArea(polygon []Point2) float64 {
	if len(polygon) < 3 {
		return 0
	}
	area := 0.0
	j := len(polygon) - 1
	for i := range polygon {
		area += (polygon[j].X + polygon[i].X) * (polygon[j].Y - polygon[i].Y)
		j = i
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}
