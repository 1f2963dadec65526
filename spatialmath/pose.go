// Package spatialmath defines the rigid-transform algebra used by the kinematics engine:
// 4x4 homogeneous poses, elementary generators, quaternion extraction and pose error.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Pose is a 4x4 homogeneous transform flattened row-major. The upper-left 3x3 block is the
// rotation and the first three entries of the last column are the translation.
// Poses are plain values and are meant to live on the stack.
type Pose [16]float64

// Identity returns the identity transform.
func Identity() Pose {
	return Pose{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// NewPoseFromSlice copies 16 row-major values into a Pose.
func NewPoseFromSlice(data []float64) Pose {
	var p Pose
	copy(p[:], data)
	return p
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	p := Identity()
	p.SetTranslation(pt)
	return p
}

// NewPoseFromMat4 converts a column-major mathgl matrix into a Pose.
func NewPoseFromMat4(m mgl64.Mat4) Pose {
	var p Pose
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			p[r*4+c] = m.At(r, c)
		}
	}
	return p
}

// Mat4 returns the pose as a column-major mathgl matrix.
func (p Pose) Mat4() mgl64.Mat4 {
	var m mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, p[r*4+c])
		}
	}
	return m
}

// Dense returns a freshly allocated 4x4 gonum matrix holding the pose.
func (p Pose) Dense() *mat.Dense {
	data := make([]float64, 16)
	copy(data, p[:])
	return mat.NewDense(4, 4, data)
}

// At returns the element at row r, column c.
func (p Pose) At(r, c int) float64 {
	return p[r*4+c]
}

// Set sets the element at row r, column c.
func (p *Pose) Set(r, c int, v float64) {
	p[r*4+c] = v
}

// Translation returns the translation block.
func (p Pose) Translation() r3.Vector {
	return r3.Vector{X: p[3], Y: p[7], Z: p[11]}
}

// SetTranslation overwrites the translation block.
func (p *Pose) SetTranslation(v r3.Vector) {
	p[3], p[7], p[11] = v.X, v.Y, v.Z
}

// Column returns column c (0..2) of the rotation block.
func (p Pose) Column(c int) r3.Vector {
	return r3.Vector{X: p[c], Y: p[4+c], Z: p[8+c]}
}

// Row returns row r (0..2) of the rotation block.
func (p Pose) Row(r int) r3.Vector {
	return r3.Vector{X: p[r*4], Y: p[r*4+1], Z: p[r*4+2]}
}

// Rotation returns the rotation block flattened row-major.
func (p Pose) Rotation() [9]float64 {
	return [9]float64{
		p[0], p[1], p[2],
		p[4], p[5], p[6],
		p[8], p[9], p[10],
	}
}

// String renders the pose one row per line.
func (p Pose) String() string {
	return fmt.Sprintf("[%9.5f %9.5f %9.5f %9.5f]\n[%9.5f %9.5f %9.5f %9.5f]\n[%9.5f %9.5f %9.5f %9.5f]\n[%9.5f %9.5f %9.5f %9.5f]",
		p[0], p[1], p[2], p[3],
		p[4], p[5], p[6], p[7],
		p[8], p[9], p[10], p[11],
		p[12], p[13], p[14], p[15])
}

// Compose returns a·b.
func Compose(a, b Pose) Pose {
	var out Pose
	for r := 0; r < 4; r++ {
		a0, a1, a2, a3 := a[r*4], a[r*4+1], a[r*4+2], a[r*4+3]
		out[r*4] = a0*b[0] + a1*b[4] + a2*b[8] + a3*b[12]
		out[r*4+1] = a0*b[1] + a1*b[5] + a2*b[9] + a3*b[13]
		out[r*4+2] = a0*b[2] + a1*b[6] + a2*b[10] + a3*b[14]
		out[r*4+3] = a0*b[3] + a1*b[7] + a2*b[11] + a3*b[15]
	}
	return out
}

// RigidInverse inverts a rigid transform using the rotation transpose and -Rᵗt.
// The result is meaningless if m is not rigid.
func RigidInverse(m Pose) Pose {
	var inv Pose
	inv[0], inv[1], inv[2] = m[0], m[4], m[8]
	inv[4], inv[5], inv[6] = m[1], m[5], m[9]
	inv[8], inv[9], inv[10] = m[2], m[6], m[10]

	inv[3] = -(inv[0]*m[3] + inv[1]*m[7] + inv[2]*m[11])
	inv[7] = -(inv[4]*m[3] + inv[5]*m[7] + inv[6]*m[11])
	inv[11] = -(inv[8]*m[3] + inv[9]*m[7] + inv[10]*m[11])

	inv[15] = 1
	return inv
}

// RotX returns a rotation of theta radians about X.
func RotX(theta float64) Pose {
	s, c := math.Sincos(theta)
	return Pose{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotY returns a rotation of theta radians about Y.
func RotY(theta float64) Pose {
	s, c := math.Sincos(theta)
	return Pose{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotZ returns a rotation of theta radians about Z.
func RotZ(theta float64) Pose {
	s, c := math.Sincos(theta)
	return Pose{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// TransX returns a translation of d along X.
func TransX(d float64) Pose {
	p := Identity()
	p[3] = d
	return p
}

// TransY returns a translation of d along Y.
func TransY(d float64) Pose {
	p := Identity()
	p[7] = d
	return p
}

// TransZ returns a translation of d along Z.
func TransZ(d float64) Pose {
	p := Identity()
	p[11] = d
	return p
}

// PoseAlmostEqual reports whether every element of a and b differs by at most epsilon.
func PoseAlmostEqual(a, b Pose, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// IsRigid reports whether p has an orthonormal, right-handed rotation block and a [0 0 0 1] bottom
// row, each to within tol.
func IsRigid(p Pose, tol float64) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if math.Abs(p[12]) > tol || math.Abs(p[13]) > tol || math.Abs(p[14]) > tol || math.Abs(p[15]-1) > tol {
		return false
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dot := p[i*4]*p[j*4] + p[i*4+1]*p[j*4+1] + p[i*4+2]*p[j*4+2]
			if i == j {
				dot--
			}
			if math.Abs(dot) > tol {
				return false
			}
		}
	}
	return p.Row(0).Cross(p.Row(1)).Dot(p.Row(2)) > 0
}
