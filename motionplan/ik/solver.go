// Package ik solves inverse kinematics for elementary transform chains with damped least squares,
// either on one goroutine or as several independently seeded solvers racing each other.
package ik

import (
	"context"

	"go.viam.com/kinematics/logging"
	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// Solve runs a single DLSSolver for the end effector of chain from q0 towards target.
func Solve(
	ctx context.Context,
	logger logging.Logger,
	chain *referenceframe.Chain,
	q0 []float64,
	target spatialmath.Pose,
	opts Options,
) (*Solution, error) {
	solver, err := NewDLSSolver(logger, chain, nil, nil, opts)
	if err != nil {
		return nil, err
	}
	return solver.Solve(ctx, q0, target)
}

// SolveIK iterates from q0 for at most maxIterations steps and reports the final configuration and
// whether half the squared pose error fell below tolerance. It does not restart, and invalid input is
// reported as not converged with q0 returned unchanged.
func SolveIK(chain *referenceframe.Chain, q0 []float64, target spatialmath.Pose, maxIterations int, tolerance float64) ([]float64, bool) {
	opts := DefaultOptions()
	opts.MaxIterations = maxIterations
	opts.Tolerance = tolerance
	opts.LogEvery = 0
	sol, err := Solve(context.Background(), logging.NewBlankLogger("ik"), chain, q0, target, opts)
	if err != nil {
		return append([]float64(nil), q0...), false
	}
	return sol.Configuration, sol.Converged
}
