package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// baseColumn returns the base-frame column of a joint whose frame, after its own motion, is u and
// which sees the end effector at d = u⁻¹·T.
func baseColumn(axis referenceframe.Axis, u, d *spatialmath.Pose) (lin, ang r3.Vector) {
	a := axis.Index()
	if !axis.IsRotation() {
		return u.Column(a), r3.Vector{}
	}
	b, c := axis.Permutation()
	dt := d.Translation()
	lin = u.Column(c).Mul(component(dt, b)).Sub(u.Column(b).Mul(component(dt, c)))
	return lin, u.Column(a)
}

// toolColumn returns the tool-frame column of a joint whose frame, after its own motion, reaches the
// tool through u.
func toolColumn(axis referenceframe.Axis, u *spatialmath.Pose) (lin, ang r3.Vector) {
	a := axis.Index()
	if !axis.IsRotation() {
		return u.Row(a), r3.Vector{}
	}
	b, c := axis.Permutation()
	ut := u.Translation()
	lin = u.Row(c).Mul(component(ut, b)).Sub(u.Row(b).Mul(component(ut, c)))
	return lin, u.Row(a)
}

func component(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setColumn(dst *mat.Dense, col int, lin, ang r3.Vector, flip bool) {
	if flip {
		lin, ang = lin.Mul(-1), ang.Mul(-1)
	}
	dst.Set(0, col, lin.X)
	dst.Set(1, col, lin.Y)
	dst.Set(2, col, lin.Z)
	dst.Set(3, col, ang.X)
	dst.Set(4, col, ang.Y)
	dst.Set(5, col, ang.Z)
}
