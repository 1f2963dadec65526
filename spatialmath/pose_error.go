package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// degenerateAxisThreshold is the magnitude below which the skew part of a relative rotation
// is treated as zero, i.e. the rotation is near 0 or near 180 degrees.
const degenerateAxisThreshold = 1e-6

// Twist is a 6-vector holding a linear part (0..2) followed by an angular part (3..5).
type Twist [6]float64

// Linear returns the linear part.
func (t Twist) Linear() r3.Vector {
	return r3.Vector{X: t[0], Y: t[1], Z: t[2]}
}

// Angular returns the angular part.
func (t Twist) Angular() r3.Vector {
	return r3.Vector{X: t[3], Y: t[4], Z: t[5]}
}

// Norm2 returns the squared euclidean norm of the twist.
func (t Twist) Norm2() float64 {
	var s float64
	for _, v := range t {
		s += v * v
	}
	return s
}

// WeightedSquaredNorm returns eᵀWe with W = diag(1,1,1,w,w,w).
func (t Twist) WeightedSquaredNorm(w float64) float64 {
	lin := t[0]*t[0] + t[1]*t[1] + t[2]*t[2]
	ang := t[3]*t[3] + t[4]*t[4] + t[5]*t[5]
	return lin + w*ang
}

// PoseError returns the twist that moves achieved onto target. The linear part is the
// translation difference; the angular part is the angle-axis vector of
// target.R · achieved.Rᵀ.
//
// Near 180 degrees the skew part of the relative rotation vanishes and the axis is recovered
// from the diagonal alone, so the sign of each axis component cannot be determined. This branch
// always reports the non-negative solution.
func PoseError(achieved, target Pose) Twist {
	var e Twist
	e[0] = target[3] - achieved[3]
	e[1] = target[7] - achieved[7]
	e[2] = target[11] - achieved[11]

	// R = target.R · achieved.Rᵀ
	var r [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = target[i*4]*achieved[j*4] +
				target[i*4+1]*achieved[j*4+1] +
				target[i*4+2]*achieved[j*4+2]
		}
	}

	li := [3]float64{r[7] - r[5], r[2] - r[6], r[3] - r[1]}
	liNorm := math.Sqrt(li[0]*li[0] + li[1]*li[1] + li[2]*li[2])

	if liNorm < degenerateAxisThreshold {
		if Trace3(r) > 0 {
			return e
		}
		e[3] = math.Pi / 2 * (r[0] + 1)
		e[4] = math.Pi / 2 * (r[4] + 1)
		e[5] = math.Pi / 2 * (r[8] + 1)
		return e
	}

	angle := math.Atan2(liNorm, Trace3(r)-1)
	scale := angle / liNorm
	e[3] = scale * li[0]
	e[4] = scale * li[1]
	e[5] = scale * li[2]
	return e
}
