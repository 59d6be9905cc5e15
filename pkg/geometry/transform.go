package geometry

import "math"

// Transform represents a rigid/affine transform from fragment-local space
// to world space, stored as a 3x4 row-major matrix (rotation plus translation).
type Transform struct {
	M [3][4]float64
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{M: [3][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}}
}

// NewTranslation returns a pure translation transform
func NewTranslation(x, y, z float64) Transform {
	t := Identity()
	t.M[0][3] = x
	t.M[1][3] = y
	t.M[2][3] = z
	return t
}

// NewRotationY returns a rotation about the vertical axis by the given
// angle in radians
func NewRotationY(angle float64) Transform {
	sin, cos := math.Sincos(angle)
	t := Identity()
	t.M[0][0] = cos
	t.M[0][2] = sin
	t.M[2][0] = -sin
	t.M[2][2] = cos
	return t
}

// Apply transforms a point from local space to world space
func (t Transform) Apply(p Vector3) Vector3 {
	return Vector3{
		X: t.M[0][0]*p.X + t.M[0][1]*p.Y + t.M[0][2]*p.Z + t.M[0][3],
		Y: t.M[1][0]*p.X + t.M[1][1]*p.Y + t.M[1][2]*p.Z + t.M[1][3],
		Z: t.M[2][0]*p.X + t.M[2][1]*p.Y + t.M[2][2]*p.Z + t.M[2][3],
	}
}

// Mul composes two transforms; the receiver is applied last
func (t Transform) Mul(other Transform) Transform {
	var out Transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			sum := t.M[i][3] * bottomRow(j)
			for k := 0; k < 3; k++ {
				sum += t.M[i][k] * other.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// bottomRow returns the implicit fourth matrix row (0 0 0 1)
func bottomRow(j int) float64 {
	if j == 3 {
		return 1
	}
	return 0
}
