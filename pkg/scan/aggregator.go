package scan

import (
	"github.com/philipparndt/meshscan/pkg/geometry"
	"github.com/philipparndt/meshscan/pkg/mesh"
)

// SquareMetresToSquareFeet converts areas from the sensor's native metric
// unit to square feet.
const SquareMetresToSquareFeet = 10.7639104167

// Reading is the live, derived area readout. It is never mutated in place,
// only replaced wholesale by a recompute pass.
type Reading struct {
	// Area is the summed surface area in reporting units, always >= 0
	Area float64
	// Sequence counts completed recompute passes, monotonically increasing
	Sequence uint64
}

// Aggregator sums the world-space area of all faces matching the target
// classification. It holds no mesh state and never mutates the store.
type Aggregator struct {
	// Target is the surface classification to sum, typically ClassFloor
	Target mesh.Classification
	// UnitScale converts the summed area from native to reporting units
	UnitScale float64
}

// NewAggregator creates an aggregator for the given surface label. A scale
// of zero or below falls back to native units.
func NewAggregator(target mesh.Classification, unitScale float64) *Aggregator {
	if unitScale <= 0 {
		unitScale = 1.0
	}
	return &Aggregator{Target: target, UnitScale: unitScale}
}

// Recompute walks every fragment in the store, sums the world-space area of
// faces whose classification matches the target, and returns a fresh
// Reading. An empty store and a store with no matching faces both read zero;
// malformed faces are skipped. Cost is O(total face count).
func (a *Aggregator) Recompute(store *mesh.Store) Reading {
	total := 0.0
	store.Walk(func(f *mesh.Fragment) {
		for i := range f.Faces {
			if f.FaceClassification(i) != a.Target {
				continue
			}
			v1, v2, v3, err := f.FaceVertices(i)
			if err != nil {
				// noisy or partially received stream; skip the face
				continue
			}
			total += geometry.TriangleArea(
				f.Transform.Apply(v1),
				f.Transform.Apply(v2),
				f.Transform.Apply(v3),
			)
		}
	})
	return Reading{Area: total * a.UnitScale}
}
