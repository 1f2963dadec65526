package ik

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/kinematics/logging"
	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// ErrNoSolution is returned by CombinedIK when no solver converged.
var ErrNoSolution = errors.New("kinematics could not solve for position")

// CombinedIK defines the fields necessary to run a combined solver.
type CombinedIK struct {
	solvers []*DLSSolver
	logger  logging.Logger
}

// CreateCombinedIKSolver creates a combined parallel IK solver with opts.Workers DLS solvers, each
// given a different random seed. The first solver starts from the caller's seed, the others from
// random configurations. When asked to solve, all solvers run in parallel and the first converged
// solution is returned.
func CreateCombinedIKSolver(
	logger logging.Logger,
	chain *referenceframe.Chain,
	base, tool *spatialmath.Pose,
	opts Options,
) (*CombinedIK, error) {
	ik := &CombinedIK{logger: logger}
	nCPU := opts.workers()
	logger.Debugf("CreateCombinedIKSolver nCPU: %d", nCPU)
	for i := 0; i < nCPU; i++ {
		solverOpts := opts
		solverOpts.Seed = opts.Seed + int64(i)
		solver, err := NewDLSSolver(logger.Sublogger("dls"), chain, base, tool, solverOpts)
		if err != nil {
			return nil, err
		}
		solver.id = i
		ik.solvers = append(ik.solvers, solver)
	}
	return ik, nil
}

// Solve starts every solver on target and returns the first converged solution, cancelling the
// rest. If none converge the lowest cost solution is returned together with ErrNoSolution.
func (ik *CombinedIK) Solve(ctx context.Context, q0 []float64, target spatialmath.Pose) (*Solution, error) {
	if err := ik.solvers[0].chain.ValidateConfiguration(q0); err != nil {
		return nil, err
	}
	ctxWithCancel, cancel := context.WithCancel(ctx)
	defer cancel()

	var activeSolvers sync.WaitGroup
	var solveResultLock sync.Mutex
	var solveErrors error
	var winner, best *Solution
	found := atomic.NewBool(false)
	totalIterations := atomic.NewInt64(0)

	for _, solver := range ik.solvers {
		thisSolver := solver
		seed := q0
		if thisSolver.id > 0 {
			seed = referenceframe.RandomConfiguration(thisSolver.limits, thisSolver.rnd)
		}

		activeSolvers.Add(1)
		utils.PanicCapturingGo(func() {
			defer activeSolvers.Done()

			sol, err := thisSolver.Solve(ctxWithCancel, seed, target)
			if sol != nil {
				totalIterations.Add(int64(sol.Iterations))
			}

			solveResultLock.Lock()
			defer solveResultLock.Unlock()
			if err == nil && sol.Converged && found.CompareAndSwap(false, true) {
				winner = sol
				cancel()
				return
			}
			if found.Load() {
				return
			}
			if err != nil {
				solveErrors = multierr.Combine(solveErrors, err)
			}
			// a solver stopped by its own timeout still reports the best configuration it reached
			if sol != nil && (best == nil || sol.Cost < best.Cost) {
				best = sol
			}
		})
	}
	activeSolvers.Wait()

	if winner != nil {
		ik.logger.Debugw("combined solve converged",
			"iterations", winner.Iterations, "total_iterations", totalIterations.Load(), "cost", winner.Cost)
		return winner, nil
	}
	if err := ctx.Err(); err != nil {
		return best, err
	}
	if best == nil {
		return nil, multierr.Combine(solveErrors, ErrNoSolution)
	}
	ik.logger.Debugw("combined solve failed", "total_iterations", totalIterations.Load(), "cost", best.Cost)
	return best, multierr.Combine(solveErrors, ErrNoSolution)
}
