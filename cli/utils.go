package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/logging"
	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/referenceframe/models"
	"go.viam.com/kinematics/spatialmath"
)

const builtinPrefix = "builtin:"

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// successf prints a message prefixed with a green "Success:".
func successf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprint(w, color.New(color.Bold, color.FgGreen).Sprint("Success: "))
	printf(w, format, a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprint(w, color.New(color.Bold, color.FgYellow).Sprint("Warning: "))
	printf(w, format, a...)
}

// newLogger returns the command's logger, at debug level when --debug is set.
func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(generalFlagDebug) {
		return logging.NewDebugLogger("kin")
	}
	return logging.NewLogger("kin")
}

// loadModel loads the model named by --model, either a file or builtin:<name>.
func loadModel(c *cli.Context) (*referenceframe.Model, error) {
	src := c.String(generalFlagModel)
	if name, ok := strings.CutPrefix(src, builtinPrefix); ok {
		return models.Load(name)
	}
	return referenceframe.ParseModelFile(src, "")
}

// parseFloats parses a comma separated list of numbers, ignoring empty fields.
func parseFloats(s string) ([]float64, error) {
	fields := lo.Compact(lo.Map(strings.Split(s, ","), func(f string, _ int) string {
		return strings.TrimSpace(f)
	}))
	out := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d of %q", i, s)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseConfiguration resolves a named model configuration or a list of numbers and checks it
// against the model.
func parseConfiguration(m *referenceframe.Model, s string) ([]float64, error) {
	var q []float64
	if named, ok := m.Configurations[s]; ok {
		q = append(q, named...)
	} else {
		var err error
		if q, err = parseFloats(s); err != nil {
			return nil, err
		}
	}
	if m.Tree != nil {
		return q, m.Tree.ValidateConfiguration(q)
	}
	return q, m.Chain.ValidateConfiguration(q)
}

// defaultSeed is the model's qr configuration if it has one, otherwise all zeros.
func defaultSeed(m *referenceframe.Model) []float64 {
	if q, err := m.Configuration("qr"); err == nil {
		return q
	}
	return make([]float64, m.N())
}

// chainConfiguration trims a model configuration to the entries the model's chain reads.
func chainConfiguration(m *referenceframe.Model, q []float64) []float64 {
	return q[:m.Chain.N()]
}

// parseTarget parses "x,y,z,rx,ry,rz", a translation followed by a rotation vector.
func parseTarget(s string) (spatialmath.Pose, error) {
	v, err := parseFloats(s)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	if len(v) != 6 {
		return spatialmath.Pose{}, errors.Errorf("target needs 6 values x,y,z,rx,ry,rz, got %d", len(v))
	}
	return spatialmath.NewPoseFromRotationVector(
		r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		r3.Vector{X: v[3], Y: v[4], Z: v[5]},
	), nil
}

func formatFloats(v []float64) string {
	return strings.Join(lo.Map(v, func(f float64, _ int) string {
		return strconv.FormatFloat(f, 'f', 6, 64)
	}), ", ")
}

// newTable returns a table writer that prints header and footer cells as given instead of upper cased.
func newTable() table.Writer {
	t := table.NewWriter()
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// poseTable renders a pose as its 4×4 matrix followed by its quaternion.
func poseTable(p spatialmath.Pose) string {
	t := newTable()
	t.AppendHeader(table.Row{"", "x", "y", "z", "t"})
	for r, label := range []string{"x", "y", "z", ""} {
		row := table.Row{label}
		for c := 0; c < 4; c++ {
			row = append(row, fmt.Sprintf("%.6f", p.At(r, c)))
		}
		t.AppendRow(row)
	}
	q := spatialmath.RotationToQuaternion(p)
	t.AppendFooter(table.Row{"quat", fmt.Sprintf("w:%.6f", q.Real), fmt.Sprintf("x:%.6f", q.Imag),
		fmt.Sprintf("y:%.6f", q.Jmag), fmt.Sprintf("z:%.6f", q.Kmag)})
	return t.Render()
}

// matrixTable renders a matrix with the given row labels and columns labelled q0, q1, ...
func matrixTable(m mat.Matrix, rowLabels []string) string {
	rows, cols := m.Dims()
	t := newTable()
	header := table.Row{""}
	for c := 0; c < cols; c++ {
		header = append(header, fmt.Sprintf("q%d", c))
	}
	t.AppendHeader(header)
	for r := 0; r < rows; r++ {
		row := table.Row{rowLabels[r]}
		for c := 0; c < cols; c++ {
			row = append(row, fmt.Sprintf("%.6f", m.At(r, c)))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

var twistLabels = []string{"vx", "vy", "vz", "wx", "wy", "wz"}
