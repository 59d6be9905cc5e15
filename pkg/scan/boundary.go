package scan

import (
	"github.com/philipparndt/meshscan/pkg/geometry"
	"github.com/philipparndt/meshscan/pkg/mesh"
)

// MaxBoundaryPoints caps the number of raw points collected before hulling.
// On dense meshes collection stops early and the hull approximates the true
// boundary; bounded cost is preferred over exactness here.
const MaxBoundaryPoints = 1500

// ExtractBoundary collects the world-space horizontal projection of every
// vertex belonging to a face with the target classification and reduces the
// set to a convex boundary polygon. maxPoints <= 0 uses MaxBoundaryPoints.
//
// This is more expensive than area summation and is only called at capture
// time, not on every recompute.
func ExtractBoundary(store *mesh.Store, target mesh.Classification, maxPoints int) []geometry.Point2 {
	if maxPoints <= 0 {
		maxPoints = MaxBoundaryPoints
	}

	points := make([]geometry.Point2, 0, 256)
	store.Walk(func(f *mesh.Fragment) {
		if len(points) >= maxPoints {
			return
		}
		for i := range f.Faces {
			if len(points) >= maxPoints {
				break
			}
			if f.FaceClassification(i) != target {
				continue
			}
			v1, v2, v3, err := f.FaceVertices(i)
			if err != nil {
				continue
			}
			for _, v := range [3]geometry.Vector3{v1, v2, v3} {
				if len(points) >= maxPoints {
					break
				}
				points = append(points, f.Transform.Apply(v).XZ())
			}
		}
	})

	return geometry.ConvexHull(points)
}
