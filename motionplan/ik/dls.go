package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/kinematics"
	"go.viam.com/kinematics/logging"
	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

const rigidTolerance = 1e-6

// Solution is the result of one inverse kinematics solve.
type Solution struct {
	// Configuration is the converged configuration, or the lowest cost one seen if none converged.
	Configuration []float64
	Converged     bool
	// Iterations counts every step taken, over all attempts.
	Iterations int
	// Attempts is one more than the number of random restarts used.
	Attempts int
	// Cost is ½·eᵀWe at Configuration.
	Cost float64
	// Score is the solver's metric at Configuration.
	Score float64
}

// DLSSolver minimizes the weighted pose error of a chain's end effector with damped least squares
// steps. A DLSSolver holds scratch buffers and its own random source and must not be shared between
// goroutines.
type DLSSolver struct {
	id     int
	chain  *referenceframe.Chain
	base   *spatialmath.Pose
	tool   *spatialmath.Pose
	limits []referenceframe.Limit
	opts   Options
	weight float64
	metric func(goal spatialmath.Pose) StateMetric
	rnd    *rand.Rand
	logger logging.Logger

	// scratch
	jac  *mat.Dense
	jq   *mat.Dense
	wj   *mat.Dense
	jtwj *mat.Dense
	a    *mat.SymDense
	e    *mat.VecDense
	g    *mat.VecDense
	dq   *mat.VecDense
	chol mat.Cholesky
}

// NewDLSSolver validates chain and opts and returns a solver for the chain's end effector. base and
// tool are optional and place the chain in the world and extend its end effector.
func NewDLSSolver(
	logger logging.Logger,
	chain *referenceframe.Chain,
	base, tool *spatialmath.Pose,
	opts Options,
) (*DLSSolver, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	if chain.NumJoints() == 0 {
		return nil, errors.New("cannot solve inverse kinematics for a chain with no joints")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	for name, p := range map[string]*spatialmath.Pose{"base": base, "tool": tool} {
		if p != nil && !spatialmath.IsRigid(*p, rigidTolerance) {
			return nil, referenceframe.NewNonRigidTransformError(name)
		}
	}
	n := chain.N()
	s := &DLSSolver{
		chain:  chain,
		base:   base,
		tool:   tool,
		limits: chain.Limits(),
		opts:   opts,
		weight: opts.orientationWeight(),
		rnd:    rand.New(rand.NewSource(opts.Seed)), //nolint:gosec
		logger: logger,
		jac:    mat.NewDense(6, chain.NumJoints(), nil),
		jq:     mat.NewDense(6, n, nil),
		wj:     mat.NewDense(6, n, nil),
		jtwj:   mat.NewDense(n, n, nil),
		a:      mat.NewSymDense(n, nil),
		e:      mat.NewVecDense(6, nil),
		g:      mat.NewVecDense(n, nil),
		dq:     mat.NewVecDense(n, nil),
	}
	s.SetMetric(opts.stateMetric())
	return s, nil
}

// SetMetric replaces the metric used to score solutions. The cost that is minimized is set by
// Options.Metric and is unchanged.
func (s *DLSSolver) SetMetric(metric func(goal spatialmath.Pose) StateMetric) {
	s.metric = metric
}

// Solve searches for a configuration that places the end effector at target, starting from q0 and
// then from random in-limit configurations for each restart. Failing to converge is reported through
// Solution.Converged, not as an error; errors are returned for a bad seed or a cancelled ctx.
func (s *DLSSolver) Solve(ctx context.Context, q0 []float64, target spatialmath.Pose) (*Solution, error) {
	if err := s.chain.ValidateConfiguration(q0); err != nil {
		return nil, err
	}
	if !spatialmath.IsRigid(target, rigidTolerance) {
		return nil, referenceframe.NewNonRigidTransformError("target")
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	goal := target
	if s.base != nil {
		goal = spatialmath.Compose(spatialmath.RigidInverse(*s.base), target)
	}

	q := append([]float64(nil), q0...)
	best := &Solution{Configuration: append([]float64(nil), q0...), Cost: math.Inf(1)}
	for attempt := 0; attempt <= s.opts.Restarts; attempt++ {
		if attempt > 0 {
			q = referenceframe.RandomConfiguration(s.limits, s.rnd)
			s.logger.Debugw("restarting", "solver", s.id, "attempt", attempt)
		}
		best.Attempts = attempt + 1
		converged, err := s.descend(ctx, q, goal, best)
		if err != nil {
			return best, err
		}
		if converged {
			break
		}
	}

	end := s.chain.ForwardKinematics(best.Configuration, nil, s.tool)
	best.Score = s.metric(goal)(&State{Position: end, Configuration: best.Configuration})
	if best.Converged {
		s.logger.Debugw("converged", "solver", s.id, "iterations", best.Iterations, "cost", best.Cost)
	} else {
		s.logger.Debugw("did not converge", "solver", s.id, "iterations", best.Iterations, "cost", best.Cost)
	}
	return best, nil
}

// descend runs one attempt from q, modifying it in place, and records the lowest cost configuration
// in best.
func (s *DLSSolver) descend(ctx context.Context, q []float64, goal spatialmath.Pose, best *Solution) (bool, error) {
	n := s.chain.N()
	shared := s.chain.NumJoints() != n

	for iter := 0; ; iter++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		achieved := s.chain.ForwardKinematics(q, nil, s.tool)
		e := spatialmath.PoseError(achieved, goal)
		cost := 0.5 * e.WeightedSquaredNorm(s.weight)
		if math.IsNaN(cost) {
			return false, nil
		}
		if cost < best.Cost {
			best.Cost = cost
			copy(best.Configuration, q)
		}
		if cost < s.opts.Tolerance {
			best.Converged = true
			return true, nil
		}
		if iter == s.opts.MaxIterations {
			return false, nil
		}
		if s.opts.LogEvery > 0 && iter%s.opts.LogEvery == 0 {
			s.logger.Debugw("step", "solver", s.id, "iteration", iter, "cost", cost)
		}
		best.Iterations++

		kinematics.Jacobian0To(s.jac, s.chain, q, s.tool)
		j := s.jac
		if shared {
			kinematics.ConfigurationJacobian(s.jq, s.jac, s.chain.JointIndices())
			j = s.jq
		}
		if !s.step(j, e, cost) {
			// the normal equations could not be solved, leave it to a restart
			return false, nil
		}
		for i := range q {
			q[i] += s.dq.AtVec(i)
		}
		if s.opts.EnforceLimits {
			referenceframe.ClampConfiguration(q, s.limits)
		}
	}
}

// step solves (JᵀWJ + λI)·Δq = JᵀWe into s.dq.
func (s *DLSSolver) step(j *mat.Dense, e spatialmath.Twist, cost float64) bool {
	w := s.weight
	n := s.chain.N()

	s.wj.Copy(j)
	for r := 3; r < 6; r++ {
		for c := 0; c < n; c++ {
			s.wj.Set(r, c, w*j.At(r, c))
		}
	}
	s.jtwj.Mul(j.T(), s.wj)
	lambda := s.opts.Lambda*cost + s.opts.LambdaMin
	for r := 0; r < n; r++ {
		for c := r; c < n; c++ {
			v := s.jtwj.At(r, c)
			if r == c {
				v += lambda
			}
			s.a.SetSym(r, c, v)
		}
	}
	for i, v := range e {
		s.e.SetVec(i, v)
	}
	s.g.MulVec(s.wj.T(), s.e)

	if s.chol.Factorize(s.a) {
		if err := s.chol.SolveVecTo(s.dq, s.g); err == nil {
			return true
		}
	}
	if err := s.dq.SolveVec(s.a, s.g); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			s.logger.Debugw("singular step", "solver", s.id, "error", err)
			return false
		}
	}
	return true
}
