// Package cli contains the kin command line interface for evaluating and solving kinematic models.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// flags.
const (
	generalFlagModel = "model"
	generalFlagDebug = "debug"

	kinFlagQ        = "q"
	kinFlagBase     = "base"
	kinFlagTool     = "tool"
	kinFlagFrame    = "frame"
	kinFlagAxes     = "axes"
	kinFlagFile     = "file"
	kinFlagParallel = "parallel"

	ikFlagTarget        = "target"
	ikFlagTargetQ       = "target-q"
	ikFlagSeed          = "seed"
	ikFlagMaxIterations = "max-iterations"
	ikFlagTolerance     = "tolerance"
	ikFlagRestarts      = "restarts"
	ikFlagWorkers       = "workers"
	ikFlagEnforceLimits = "enforce-limits"
	ikFlagTimeout       = "timeout"
	ikFlagRandomSeed    = "random-seed"
	ikFlagMetric        = "metric"
	ikFlagCount         = "n"
)

const defaultModel = "builtin:panda"

func qFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     kinFlagQ,
		Required: true,
		Usage:    "configuration as comma separated radians/meters, or the name of a model configuration such as qz",
	}
}

func ikOptionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  ikFlagMaxIterations,
			Usage: "iterations per attempt",
		},
		&cli.Float64Flag{
			Name:  ikFlagTolerance,
			Usage: "converge once half the weighted squared pose error is below this",
		},
		&cli.IntFlag{
			Name:  ikFlagRestarts,
			Usage: "random restarts per solver",
		},
		&cli.IntFlag{
			Name:  ikFlagWorkers,
			Usage: "number of solvers racing in parallel",
		},
		&cli.BoolFlag{
			Name:  ikFlagEnforceLimits,
			Usage: "clamp every step into the joint limits",
		},
		&cli.DurationFlag{
			Name:  ikFlagTimeout,
			Usage: "wall clock budget per solve",
		},
		&cli.Int64Flag{
			Name:  ikFlagRandomSeed,
			Usage: "seed of the random restarts",
		},
		&cli.StringFlag{
			Name:  ikFlagMetric,
			Usage: "what is minimized: squared_norm or position_only",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "kin",
		Usage:           "evaluate and solve elementary transform kinematic models",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagModel,
				Aliases: []string{"m"},
				Value:   defaultModel,
				Usage:   "load the model from `FILE` (.json, .yaml) or builtin:<name>",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "models",
				Usage:  "list the built-in models and their named configurations",
				Action: ModelsAction,
			},
			{
				Name:  "fk",
				Usage: "print the end effector pose of a configuration",
				Flags: []cli.Flag{
					qFlag(),
					&cli.BoolFlag{
						Name:  kinFlagBase,
						Usage: "apply the model's base transform",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  kinFlagTool,
						Usage: "apply the model's tool transform",
						Value: true,
					},
				},
				Action: FKAction,
			},
			{
				Name:      "traj",
				Usage:     "evaluate forward kinematics for every row of a CSV file",
				UsageText: "kin traj --file <q.csv> [--parallel N]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     kinFlagFile,
						Required: true,
						Usage:    "CSV file with one configuration per row",
					},
					&cli.IntFlag{
						Name:  kinFlagParallel,
						Usage: "number of goroutines, 0 evaluates serially",
					},
				},
				Action: TrajAction,
			},
			{
				Name:  "jacobian",
				Usage: "print the manipulator Jacobian",
				Flags: []cli.Flag{
					qFlag(),
					&cli.StringFlag{
						Name:  kinFlagFrame,
						Value: "base",
						Usage: "frame the Jacobian is expressed in: base or tool",
					},
				},
				Action: JacobianAction,
			},
			{
				Name:  "hessian",
				Usage: "print the manipulator Hessian, one slice per joint",
				Flags: []cli.Flag{
					qFlag(),
					&cli.StringFlag{
						Name:  kinFlagFrame,
						Value: "base",
						Usage: "frame the Hessian is expressed in: base or tool",
					},
				},
				Action: HessianAction,
			},
			{
				Name:  "manipulability",
				Usage: "print the Yoshikawa manipulability and its gradient",
				Flags: []cli.Flag{
					qFlag(),
					&cli.StringFlag{
						Name:  kinFlagAxes,
						Value: "all",
						Usage: "rows used: all, trans or rot",
					},
				},
				Action: ManipulabilityAction,
			},
			{
				Name:      "ik",
				Usage:     "solve for a configuration reaching a target pose",
				UsageText: "kin ik (--target x,y,z,rx,ry,rz | --target-q <q>) [--seed <q>] [ik options]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  ikFlagTarget,
						Usage: "target translation and rotation vector",
					},
					&cli.StringFlag{
						Name:  ikFlagTargetQ,
						Usage: "use the pose reached by this configuration as the target",
					},
					&cli.StringFlag{
						Name:  ikFlagSeed,
						Usage: "starting configuration, defaults to qr or zeros",
					},
				}, ikOptionFlags()...),
				Action: IKAction,
			},
			{
				Name:  "ik-bench",
				Usage: "solve random reachable targets and report statistics",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  ikFlagCount,
						Value: 100,
						Usage: "number of targets",
					},
					&cli.StringFlag{
						Name:  ikFlagSeed,
						Usage: "starting configuration, defaults to qr or zeros",
					},
				}, ikOptionFlags()...),
				Action: IKBenchAction,
			},
		},
	}
}
