package testutils

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// RandomChain builds a chain with the given number of joints, each preceded by one or two random
// static elementary transforms and each using its own joint index. Roughly a third of the joints
// are flipped and, unless revoluteOnly is set, half are prismatic.
func RandomChain(rnd *rand.Rand, joints int, revoluteOnly bool) *referenceframe.Chain {
	statics := []func(float64) referenceframe.ET{
		referenceframe.Rx, referenceframe.Ry, referenceframe.Rz,
		referenceframe.Tx, referenceframe.Ty, referenceframe.Tz,
	}
	var ets []referenceframe.ET
	for j := 0; j < joints; j++ {
		ets = append(ets, statics[rnd.Intn(len(statics))](rnd.NormFloat64()))
		if rnd.Intn(2) == 0 {
			ets = append(ets, statics[rnd.Intn(3)](rnd.NormFloat64()))
		}
		axis := referenceframe.Axis(rnd.Intn(3))
		if !revoluteOnly && rnd.Intn(2) == 0 {
			axis += referenceframe.TransX
		}
		et := referenceframe.NewJointET(axis, j)
		if axis.IsRotation() {
			et = et.WithLimit(-math.Pi, math.Pi)
		} else {
			et = et.WithLimit(-1, 1)
		}
		if rnd.Intn(3) == 0 {
			et = et.WithFlip()
		}
		ets = append(ets, et)
	}
	ets = append(ets, referenceframe.Tz(0.1+rnd.Float64()))
	return referenceframe.NewChain(ets...)
}

// RandomPose returns a random rigid transform with a normally distributed translation.
func RandomPose(rnd *rand.Rand) spatialmath.Pose {
	rv := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
	pt := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
	return spatialmath.NewPoseFromRotationVector(pt, rv)
}
