package ik

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/utils"
)

// State is a configuration together with the end effector pose it produces.
type State struct {
	Position      spatialmath.Pose
	Configuration []float64
}

// Segment is a move between two states.
type Segment struct {
	StartPosition      spatialmath.Pose
	EndPosition        spatialmath.Pose
	StartConfiguration []float64
	EndConfiguration   []float64
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
type StateMetric func(*State) float64

// SegmentMetric are functions which produce some score given a Segment. Lower is better.
// This is used to rank solutions against their seed, for example.
type SegmentMetric func(*Segment) float64

// OrientDist returns the angle between the orientations of two poses in degrees.
func OrientDist(p1, p2 spatialmath.Pose) float64 {
	return utils.RadToDeg(spatialmath.PoseError(p1, p2).Angular().Norm())
}

// NewSquaredNormMetric returns ½·eᵀWe of the pose error to goal, the cost the solver minimizes.
func NewSquaredNormMetric(goal spatialmath.Pose, orientationWeight float64) StateMetric {
	return func(query *State) float64 {
		return 0.5 * spatialmath.PoseError(query.Position, goal).WeightedSquaredNorm(orientationWeight)
	}
}

// NewPositionOnlyMetric returns a Metric that reports the squared distance between two positions without regard
// for orientation. This is useful for chains with too few joints to control orientation.
func NewPositionOnlyMetric(goal spatialmath.Pose) StateMetric {
	return func(state *State) float64 {
		pDist := state.Position.Translation().Distance(goal.Translation())
		return pDist * pDist
	}
}

// JointMetric sums the absolute difference of each joint from start to end.
func JointMetric(segment *Segment) float64 {
	jScore := 0.
	for i, f := range segment.StartConfiguration {
		jScore += math.Abs(f - segment.EndConfiguration[i])
	}
	return jScore
}

// L2InputMetric returns the euclidean distance between the start and end configurations.
func L2InputMetric(segment *Segment) float64 {
	return floats.Distance(segment.StartConfiguration, segment.EndConfiguration, 2)
}

// NewSquaredNormSegmentMetric returns the squared cartesian distance between the two positions plus the
// squared rotation angle scaled by orientationScaleFactor.
func NewSquaredNormSegmentMetric(orientationScaleFactor float64) SegmentMetric {
	return func(segment *Segment) float64 {
		e := spatialmath.PoseError(segment.StartPosition, segment.EndPosition)
		return e.Linear().Norm2() + e.Angular().Mul(orientationScaleFactor).Norm2()
	}
}
