package cli

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/kinematics"
	"go.viam.com/kinematics/motionplan/ik"
	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/referenceframe/models"
	"go.viam.com/kinematics/spatialmath"
)

// ModelsAction lists the built-in models.
func ModelsAction(c *cli.Context) error {
	t := newTable()
	t.AppendHeader(table.Row{"Name", "DoF", "Elements", "Configurations"})
	for _, name := range models.Names() {
		m, err := models.Load(name)
		if err != nil {
			return err
		}
		names := lo.Keys(m.Configurations)
		sort.Strings(names)
		t.AppendRow(table.Row{builtinPrefix + name, m.N(), m.Chain.Len(), fmt.Sprint(names)})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// FKAction prints the end effector pose of --q.
func FKAction(c *cli.Context) error {
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	q, err := parseConfiguration(m, c.String(kinFlagQ))
	if err != nil {
		return err
	}
	base, tool := m.Base, m.Tool
	if !c.Bool(kinFlagBase) {
		base = nil
	}
	if !c.Bool(kinFlagTool) {
		tool = nil
	}
	printf(c.App.Writer, "%s", m.Chain.String())
	printf(c.App.Writer, "%s", poseTable(m.Chain.ForwardKinematics(q, base, tool)))
	return nil
}

// TrajAction evaluates every row of a CSV file and prints x,y,z,qw,qx,qy,qz per row.
func TrajAction(c *cli.Context) error {
	logger := newLogger(c)
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	qs, err := readCSV(c.Path(kinFlagFile))
	if err != nil {
		return err
	}
	rows, cols := qs.Dims()
	if cols != m.N() {
		return referenceframe.NewIncorrectDoFError(cols, m.N())
	}
	chainQs := qs.Slice(0, rows, 0, m.Chain.N())
	if err := m.Chain.ValidateBatch(chainQs); err != nil {
		return err
	}

	start := time.Now()
	var poses []spatialmath.Pose
	if workers := c.Int(kinFlagParallel); workers > 0 {
		poses, err = m.Chain.ForwardKinematicsBatchParallel(c.Context, chainQs, m.Base, m.Tool, workers)
		if err != nil {
			return err
		}
	} else {
		poses = m.Chain.ForwardKinematicsBatch(chainQs, m.Base, m.Tool)
	}
	logger.Debugw("evaluated trajectory", "samples", rows, "parallel", c.Int(kinFlagParallel), "elapsed", time.Since(start))

	w := csv.NewWriter(c.App.Writer)
	if err := w.Write([]string{"x", "y", "z", "qw", "qx", "qy", "qz"}); err != nil {
		return err
	}
	for _, p := range poses {
		tr := p.Translation()
		quat := spatialmath.RotationToQuaternion(p)
		rec := lo.Map([]float64{tr.X, tr.Y, tr.Z, quat.Real, quat.Imag, quat.Jmag, quat.Kmag},
			func(v float64, _ int) string { return fmt.Sprintf("%.9g", v) })
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// readCSV reads one configuration per row. Lines starting with # are skipped.
func readCSV(path string) (*mat.Dense, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		//nolint:errcheck
		f.Close()
	}()
	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s has no configurations", path)
	}
	out := mat.NewDense(len(records), len(records[0]), nil)
	for i, rec := range records {
		for j, field := range rec {
			v, err := parseFloats(field)
			if err != nil || len(v) != 1 {
				return nil, errors.Errorf("%s row %d column %d: %q is not a number", path, i+1, j+1, field)
			}
			out.Set(i, j, v[0])
		}
	}
	return out, nil
}

// JacobianAction prints the Jacobian at --q in the base or tool frame.
func JacobianAction(c *cli.Context) error {
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	q, err := parseConfiguration(m, c.String(kinFlagQ))
	if err != nil {
		return err
	}
	j, err := jacobian(c, m, q)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", matrixTable(j, twistLabels))
	return nil
}

// requireJoints rejects models whose chain has nothing to differentiate.
func requireJoints(m *referenceframe.Model) error {
	if m.Chain.NumJoints() == 0 {
		return errors.Errorf("model %q has no joints", m.Name)
	}
	return nil
}

func jacobian(c *cli.Context, m *referenceframe.Model, q []float64) (*mat.Dense, error) {
	if err := requireJoints(m); err != nil {
		return nil, err
	}
	switch frame := c.String(kinFlagFrame); frame {
	case "base":
		return kinematics.Jacobian0(m.Chain, q, m.Tool), nil
	case "tool":
		return kinematics.JacobianE(m.Chain, q, m.Tool), nil
	default:
		return nil, errors.Errorf("unknown frame %q, expected base or tool", frame)
	}
}

// HessianAction prints every slice of the Hessian at --q.
func HessianAction(c *cli.Context) error {
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	q, err := parseConfiguration(m, c.String(kinFlagQ))
	if err != nil {
		return err
	}
	j, err := jacobian(c, m, q)
	if err != nil {
		return err
	}
	h := kinematics.NewHessian(j)
	for i := 0; i < h.N(); i++ {
		printf(c.App.Writer, "d/dq%d", i)
		printf(c.App.Writer, "%s", matrixTable(h.Slice(i), twistLabels))
	}
	return nil
}

// ManipulabilityAction prints the manipulability at --q and its gradient.
func ManipulabilityAction(c *cli.Context) error {
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	q, err := parseConfiguration(m, c.String(kinFlagQ))
	if err != nil {
		return err
	}
	axes, err := kinematics.ParseAxes(c.String(kinFlagAxes))
	if err != nil {
		return err
	}
	if err := requireJoints(m); err != nil {
		return err
	}
	j := kinematics.Jacobian0(m.Chain, q, m.Tool)
	printf(c.App.Writer, "manipulability (%s): %.9g", axes, kinematics.Manipulability(j, axes))
	grad := kinematics.ManipulabilityJacobian(j, kinematics.NewHessian(j), axes)
	if grad == nil {
		warningf(c.App.Writer, "configuration is singular, gradient undefined")
		return nil
	}
	printf(c.App.Writer, "gradient: [%s]", formatFloats(grad))
	return nil
}

// ikOptions overlays the ik flags that were set onto the model's ik section.
func ikOptions(c *cli.Context, m *referenceframe.Model) (ik.Options, error) {
	attrs := lo.Assign(map[string]interface{}{}, m.IK)
	set := func(flag, key string, value interface{}) {
		if c.IsSet(flag) {
			attrs[key] = value
		}
	}
	set(ikFlagMaxIterations, "max_iterations", c.Int(ikFlagMaxIterations))
	set(ikFlagTolerance, "tolerance", c.Float64(ikFlagTolerance))
	set(ikFlagRestarts, "restarts", c.Int(ikFlagRestarts))
	set(ikFlagWorkers, "workers", c.Int(ikFlagWorkers))
	set(ikFlagEnforceLimits, "enforce_limits", c.Bool(ikFlagEnforceLimits))
	set(ikFlagTimeout, "timeout", c.Duration(ikFlagTimeout).String())
	set(ikFlagRandomSeed, "seed", c.Int64(ikFlagRandomSeed))
	set(ikFlagMetric, "metric", c.String(ikFlagMetric))
	return ik.DecodeOptions(attrs)
}

func ikSeed(c *cli.Context, m *referenceframe.Model) ([]float64, error) {
	if !c.IsSet(ikFlagSeed) {
		return chainConfiguration(m, defaultSeed(m)), nil
	}
	q, err := parseConfiguration(m, c.String(ikFlagSeed))
	if err != nil {
		return nil, err
	}
	return chainConfiguration(m, q), nil
}

// IKAction solves for --target or the pose of --target-q.
func IKAction(c *cli.Context) error {
	logger := newLogger(c)
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	opts, err := ikOptions(c, m)
	if err != nil {
		return err
	}
	seed, err := ikSeed(c, m)
	if err != nil {
		return err
	}

	var target spatialmath.Pose
	switch {
	case c.IsSet(ikFlagTarget) && c.IsSet(ikFlagTargetQ):
		return errors.Errorf("specify only one of --%s and --%s", ikFlagTarget, ikFlagTargetQ)
	case c.IsSet(ikFlagTarget):
		if target, err = parseTarget(c.String(ikFlagTarget)); err != nil {
			return err
		}
	case c.IsSet(ikFlagTargetQ):
		q, err := parseConfiguration(m, c.String(ikFlagTargetQ))
		if err != nil {
			return err
		}
		target = m.Chain.ForwardKinematics(q, m.Base, m.Tool)
	default:
		return errors.Errorf("one of --%s or --%s is required", ikFlagTarget, ikFlagTargetQ)
	}

	solver, err := ik.CreateCombinedIKSolver(logger.Sublogger("ik"), m.Chain, m.Base, m.Tool, opts)
	if err != nil {
		return err
	}
	start := time.Now()
	sol, err := solver.Solve(c.Context, seed, target)
	if err != nil && (sol == nil || !errors.Is(err, ik.ErrNoSolution)) {
		return err
	}
	elapsed := time.Since(start)

	if sol.Converged {
		successf(c.App.Writer, "converged in %d iterations (%s)", sol.Iterations, elapsed)
	} else {
		warningf(c.App.Writer, "no solution after %d iterations and %d attempts (%s), best cost %.3g",
			sol.Iterations, sol.Attempts, elapsed, sol.Cost)
	}
	achieved := m.Chain.ForwardKinematics(sol.Configuration, m.Base, m.Tool)
	seg := &ik.Segment{
		StartPosition:      achieved,
		EndPosition:        target,
		StartConfiguration: seed,
		EndConfiguration:   sol.Configuration,
	}
	printf(c.App.Writer, "q: [%s]", formatFloats(sol.Configuration))
	printf(c.App.Writer, "cost: %.3g, score (%s): %.3g", sol.Cost, opts.Metric, sol.Score)
	printf(c.App.Writer, "residual: %.3g, orientation off by %.4g°",
		ik.NewSquaredNormSegmentMetric(opts.OrientationWeight)(seg), ik.OrientDist(achieved, target))
	printf(c.App.Writer, "joint distance from seed: L2 %.6f, L1 %.6f", ik.L2InputMetric(seg), ik.JointMetric(seg))
	printf(c.App.Writer, "%s", poseTable(achieved))
	if !sol.Converged {
		return ik.ErrNoSolution
	}
	return nil
}

// IKBenchAction solves --n random reachable targets from the seed and reports statistics.
func IKBenchAction(c *cli.Context) error {
	logger := newLogger(c)
	m, err := loadModel(c)
	if err != nil {
		return err
	}
	opts, err := ikOptions(c, m)
	if err != nil {
		return err
	}
	seed, err := ikSeed(c, m)
	if err != nil {
		return err
	}
	n := c.Int(ikFlagCount)
	if n < 1 {
		return errors.Errorf("--%s must be positive", ikFlagCount)
	}

	solver, err := ik.CreateCombinedIKSolver(logger.Sublogger("ik"), m.Chain, m.Base, m.Tool, opts)
	if err != nil {
		return err
	}
	//nolint:gosec
	rnd := rand.New(rand.NewSource(opts.Seed))
	limits := m.Chain.Limits()

	var iterations, millis, travel []float64
	for i := 0; i < n; i++ {
		goal := referenceframe.RandomConfiguration(limits, rnd)
		target := m.Chain.ForwardKinematics(goal, m.Base, m.Tool)
		start := time.Now()
		sol, err := solver.Solve(c.Context, seed, target)
		if err != nil && (sol == nil || !errors.Is(err, ik.ErrNoSolution)) {
			return err
		}
		if sol.Converged {
			iterations = append(iterations, float64(sol.Iterations))
			millis = append(millis, float64(time.Since(start).Microseconds())/1000)
			travel = append(travel, ik.JointMetric(&ik.Segment{StartConfiguration: seed, EndConfiguration: sol.Configuration}))
		}
		logger.Debugw("bench target", "index", i, "converged", sol.Converged, "iterations", sol.Iterations)
	}

	rate := float64(len(iterations)) / float64(n)
	rateColor := color.New(color.FgGreen)
	if rate < 0.9 {
		rateColor = color.New(color.FgRed)
	}
	printf(c.App.Writer, "solved %s of %d targets", rateColor.Sprintf("%d (%.1f%%)", len(iterations), 100*rate), n)
	if len(iterations) == 0 {
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"", "mean", "median", "p95", "max"})
	for _, series := range []struct {
		name string
		data stats.Float64Data
	}{
		{"iterations", iterations},
		{"time (ms)", millis},
		{"joint travel", travel},
	} {
		mean, err1 := stats.Mean(series.data)
		median, err2 := stats.Median(series.data)
		p95, err3 := stats.Percentile(series.data, 95)
		maxV, err4 := stats.Max(series.data)
		if err := multierr.Combine(err1, err2, err3, err4); err != nil {
			return err
		}
		t.AppendRow(table.Row{series.name, fmt.Sprintf("%.2f", mean), fmt.Sprintf("%.2f", median),
			fmt.Sprintf("%.2f", p95), fmt.Sprintf("%.2f", maxV)})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}
