package kinematics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Axes selects which rows of a Jacobian a manipulability measure uses.
type Axes int

const (
	// AxesAll uses all six rows.
	AxesAll Axes = iota
	// AxesTrans uses the linear rows.
	AxesTrans
	// AxesRot uses the angular rows.
	AxesRot
)

func (a Axes) rows() (int, int) {
	switch a {
	case AxesTrans:
		return 0, 3
	case AxesRot:
		return 3, 6
	default:
		return 0, 6
	}
}

// String returns the name accepted by ParseAxes.
func (a Axes) String() string {
	switch a {
	case AxesTrans:
		return "trans"
	case AxesRot:
		return "rot"
	default:
		return "all"
	}
}

// ParseAxes parses "all", "trans" or "rot".
func ParseAxes(s string) (Axes, error) {
	for _, a := range []Axes{AxesAll, AxesTrans, AxesRot} {
		if a.String() == s {
			return a, nil
		}
	}
	return AxesAll, errors.Errorf("unknown axes %q, expected all, trans or rot", s)
}

func selectRows(j mat.Matrix, axes Axes) mat.Matrix {
	lo, hi := axes.rows()
	_, n := j.Dims()
	if lo == 0 && hi == 6 {
		return j
	}
	if d, ok := j.(*mat.Dense); ok {
		return d.Slice(lo, hi, 0, n)
	}
	out := mat.NewDense(hi-lo, n, nil)
	for r := lo; r < hi; r++ {
		for c := 0; c < n; c++ {
			out.Set(r-lo, c, j.At(r, c))
		}
	}
	return out
}

// Manipulability returns Yoshikawa's measure sqrt(det(J·Jᵀ)) over the selected rows.
func Manipulability(j mat.Matrix, axes Axes) float64 {
	js := selectRows(j, axes)
	var jjt mat.Dense
	jjt.Mul(js, js.T())
	det := mat.Det(&jjt)
	if det <= 0 {
		return 0
	}
	return math.Sqrt(det)
}

// ManipulabilityJacobian returns the gradient of the manipulability with respect to each joint,
// m · Σ (J·H_iᵀ) ∘ (J·Jᵀ)⁻¹, using the Hessian h of the same Jacobian. It returns nil at a
// singularity, where the gradient is undefined.
func ManipulabilityJacobian(j mat.Matrix, h Hessian, axes Axes) []float64 {
	js := selectRows(j, axes)
	m := Manipulability(j, axes)

	var jjt, inv mat.Dense
	jjt.Mul(js, js.T())
	if err := inv.Inverse(&jjt); err != nil {
		return nil
	}

	n := h.N()
	out := make([]float64, n)
	var c mat.Dense
	for i := 0; i < n; i++ {
		hi := selectRows(h.Slice(i), axes)
		c.Reset()
		c.Mul(js, hi.T())
		r, k := c.Dims()
		var s float64
		for a := 0; a < r; a++ {
			for b := 0; b < k; b++ {
				s += c.At(a, b) * inv.At(a, b)
			}
		}
		out[i] = m * s
	}
	return out
}
