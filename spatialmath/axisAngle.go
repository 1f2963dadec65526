package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA represents an axis angle: a unit axis (RX, RY, RZ) and a rotation Theta about it.
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// NewR4AA creates a zero rotation about Z.
func NewR4AA() *R4AA {
	return &R4AA{Theta: 0, RX: 0, RY: 0, RZ: 1}
}

// R3ToR4 converts a rotation vector, whose length is the angle, to an axis angle.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta == 0 {
		return NewR4AA()
	}
	return &R4AA{theta, aa.X / theta, aa.Y / theta, aa.Z / theta}
}

// ToR3 returns the rotation vector Theta·axis.
func (r4 *R4AA) ToR3() r3.Vector {
	return r3.Vector{X: r4.RX * r4.Theta, Y: r4.RY * r4.Theta, Z: r4.RZ * r4.Theta}
}

// ToQuat converts the axis angle to a unit quaternion.
func (r4 *R4AA) ToQuat() quat.Number {
	norm := math.Sqrt(r4.RX*r4.RX + r4.RY*r4.RY + r4.RZ*r4.RZ)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	s, c := math.Sincos(r4.Theta / 2)
	s /= norm
	return quat.Number{Real: c, Imag: r4.RX * s, Jmag: r4.RY * s, Kmag: r4.RZ * s}
}

// NewPoseFromRotationVector builds a pose from a translation and a rotation vector.
func NewPoseFromRotationVector(pt, rv r3.Vector) Pose {
	p := QuaternionToPose(R3ToR4(rv).ToQuat())
	p.SetTranslation(pt)
	return p
}
