package mesh

import (
	"fmt"

	"github.com/philipparndt/meshscan/pkg/geometry"
)

// Classification is the per-face surface label assigned by the sensing
// pipeline.
type Classification int

const (
	ClassNone Classification = iota
	ClassFloor
	ClassWall
	ClassCeiling
	ClassTable
	ClassSeat
	ClassWindow
	ClassDoor
)

var classificationNames = map[Classification]string{
	ClassNone:    "none",
	ClassFloor:   "floor",
	ClassWall:    "wall",
	ClassCeiling: "ceiling",
	ClassTable:   "table",
	ClassSeat:    "seat",
	ClassWindow:  "window",
	ClassDoor:    "door",
}

// String returns the lowercase name of the classification
func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return "none"
}

// ParseClassification parses a classification name. Unknown names map to
// ClassNone, matching how the sensing pipeline reports unrecognized surfaces.
func ParseClassification(name string) Classification {
	for c, n := range classificationNames {
		if n == name {
			return c
		}
	}
	return ClassNone
}

// MarshalText implements encoding.TextMarshaler
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Classification) UnmarshalText(text []byte) error {
	*c = ParseClassification(string(text))
	return nil
}

// Face is an index triple into a fragment's vertex buffer
type Face [3]int

// Fragment is a spatially local chunk of surface geometry reported by the
// sensing device: vertex and face buffers in fragment-local space, a per-face
// classification buffer, and the transform into world space.
type Fragment struct {
	ID              string
	Vertices        []geometry.Vector3
	Faces           []Face
	Classifications []Classification
	Transform       geometry.Transform
}

// FaceClassification returns the classification of face i, or ClassNone when
// the classification buffer is shorter than the face buffer. Sensor streams
// deliver the two buffers separately, so a momentary mismatch is expected.
func (f *Fragment) FaceClassification(i int) Classification {
	if i < 0 || i >= len(f.Classifications) {
		return ClassNone
	}
	return f.Classifications[i]
}

// FaceVertices resolves face i into its three local-space corners. It returns
// an error for out-of-range vertex indices so callers can skip malformed
// faces from a noisy or partially received stream.
func (f *Fragment) FaceVertices(i int) (v1, v2, v3 geometry.Vector3, err error) {
	if i < 0 || i >= len(f.Faces) {
		return v1, v2, v3, fmt.Errorf("face %d out of range", i)
	}
	face := f.Faces[i]
	for _, idx := range face {
		if idx < 0 || idx >= len(f.Vertices) {
			return v1, v2, v3, fmt.Errorf("face %d references vertex %d of %d", i, idx, len(f.Vertices))
		}
	}
	return f.Vertices[face[0]], f.Vertices[face[1]], f.Vertices[face[2]], nil
}

// Clone returns a deep copy of the fragment. The store hands out clones so
// no caller ever holds a reference into live buffers.
func (f *Fragment) Clone() *Fragment {
	c := &Fragment{
		ID:        f.ID,
		Transform: f.Transform,
	}
	c.Vertices = append([]geometry.Vector3(nil), f.Vertices...)
	c.Faces = append([]Face(nil), f.Faces...)
	c.Classifications = append([]Classification(nil), f.Classifications...)
	return c
}
