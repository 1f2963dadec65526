package spatialmath

import (
	"gonum.org/v1/gonum/mat"
)

// Adjoint returns the 6x6 twist adjoint of t, [[R, [p]×R], [0, R]], for twists ordered
// linear first. It maps a spatial twist expressed in the frame of t into the parent frame.
func Adjoint(t Pose) *mat.Dense {
	ad := mat.NewDense(6, 6, nil)
	p := t.Translation()
	skew := [9]float64{
		0, -p.Z, p.Y,
		p.Z, 0, -p.X,
		-p.Y, p.X, 0,
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rij := t[i*4+j]
			ad.Set(i, j, rij)
			ad.Set(i+3, j+3, rij)
			var v float64
			for k := 0; k < 3; k++ {
				v += skew[i*3+k] * t[k*4+j]
			}
			ad.Set(i, j+3, v)
		}
	}
	return ad
}

// VelocityTransform returns blockdiag(R, R) for the rotation of t. It re-expresses the
// end-effector velocity columns of a tool-frame Jacobian in the frame t is expressed in.
func VelocityTransform(t Pose) *mat.Dense {
	v := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rij := t[i*4+j]
			v.Set(i, j, rij)
			v.Set(i+3, j+3, rij)
		}
	}
	return v
}
