package ik

import (
	"runtime"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kinematics/spatialmath"
)

// Metrics a solve can be scored and minimized with.
const (
	// MetricSquaredNorm minimizes and scores ½·eᵀWe over the full pose error.
	MetricSquaredNorm = "squared_norm"
	// MetricPositionOnly ignores orientation, for chains with too few joints to control it.
	MetricPositionOnly = "position_only"
)

// default values for inverse kinematics.
const (
	defaultMaxIterations     = 500
	defaultTolerance         = 1e-12
	defaultOrientationWeight = 1.
	defaultLambda            = 1.
	defaultLambdaMin         = 1e-3
	defaultLogEvery          = 100
)

var defaultWorkers = runtime.NumCPU() / 2

// Options configures the damped least squares solver. The mapstructure keys are the ones accepted in
// a model file's "ik" section.
type Options struct {
	// Iterations per attempt.
	MaxIterations int `mapstructure:"max_iterations"`

	// Converged once half the weighted squared pose error falls below this.
	Tolerance float64 `mapstructure:"tolerance"`

	// Number of extra attempts from random configurations after the seed fails.
	Restarts int `mapstructure:"restarts"`

	// Weight of the angular error relative to the linear error, in m²/rad².
	OrientationWeight float64 `mapstructure:"orientation_weight"`

	// Damping is Lambda·E + LambdaMin where E is the current cost.
	Lambda    float64 `mapstructure:"lambda"`
	LambdaMin float64 `mapstructure:"lambda_min"`

	// Metric is MetricSquaredNorm or MetricPositionOnly.
	Metric string `mapstructure:"metric"`

	// Clamp every step into the chain's joint limits.
	EnforceLimits bool `mapstructure:"enforce_limits"`

	// Number of parallel solvers used by CombinedIK. Values < 1 use half the CPUs.
	Workers int `mapstructure:"workers"`

	// Seed of the random restarts.
	Seed int64 `mapstructure:"seed"`

	// Wall clock budget for one solve, zero means none.
	Timeout time.Duration `mapstructure:"timeout"`

	// Emit a debug line every this many iterations, zero disables it.
	LogEvery int `mapstructure:"log_every"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxIterations:     defaultMaxIterations,
		Tolerance:         defaultTolerance,
		OrientationWeight: defaultOrientationWeight,
		Lambda:            defaultLambda,
		LambdaMin:         defaultLambdaMin,
		Metric:            MetricSquaredNorm,
		Workers:           defaultWorkers,
		LogEvery:          defaultLogEvery,
	}
}

// DecodeOptions overlays a free-form attribute map, such as a model file's "ik" section, onto the
// defaults. Unknown keys are rejected and the result is validated.
func DecodeOptions(attrs map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	if len(attrs) == 0 {
		return opts, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return Options{}, errors.Wrap(err, "error decoding ik options")
	}
	return opts, opts.Validate()
}

// Validate checks that every option is in range.
func (o Options) Validate() error {
	var err error
	if o.MaxIterations < 1 {
		err = multierr.Append(err, errors.Errorf("max_iterations must be positive, got %d", o.MaxIterations))
	}
	if !(o.Tolerance > 0) {
		err = multierr.Append(err, errors.Errorf("tolerance must be positive, got %g", o.Tolerance))
	}
	if o.Restarts < 0 {
		err = multierr.Append(err, errors.Errorf("restarts cannot be negative, got %d", o.Restarts))
	}
	if o.OrientationWeight < 0 {
		err = multierr.Append(err, errors.Errorf("orientation_weight cannot be negative, got %g", o.OrientationWeight))
	}
	if o.Lambda < 0 || o.LambdaMin < 0 {
		err = multierr.Append(err, errors.Errorf("damping cannot be negative, got lambda %g lambda_min %g", o.Lambda, o.LambdaMin))
	}
	if o.Metric != MetricSquaredNorm && o.Metric != MetricPositionOnly {
		err = multierr.Append(err, errors.Errorf("metric must be %q or %q, got %q", MetricSquaredNorm, MetricPositionOnly, o.Metric))
	}
	if o.Timeout < 0 {
		err = multierr.Append(err, errors.Errorf("timeout cannot be negative, got %s", o.Timeout))
	}
	return err
}

func (o Options) workers() int {
	if o.Workers < 1 {
		if defaultWorkers < 1 {
			return 1
		}
		return defaultWorkers
	}
	return o.Workers
}

// orientationWeight is the weight of the angular error in the minimized cost.
func (o Options) orientationWeight() float64 {
	if o.Metric == MetricPositionOnly {
		return 0
	}
	return o.OrientationWeight
}

// stateMetric returns the constructor of the metric solutions are scored with.
func (o Options) stateMetric() func(goal spatialmath.Pose) StateMetric {
	if o.Metric == MetricPositionOnly {
		return NewPositionOnlyMetric
	}
	w := o.OrientationWeight
	return func(goal spatialmath.Pose) StateMetric {
		return NewSquaredNormMetric(goal, w)
	}
}
