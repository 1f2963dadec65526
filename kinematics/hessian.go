package kinematics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// Hessian is the n×6×n manipulator Hessian. Slice j is the 6×n matrix of the derivatives of every
// Jacobian column with respect to joint j. The slices share one contiguous buffer.
type Hessian struct {
	n    int
	data []float64
}

// NewHessian derives the Hessian from a 6×n Jacobian. For i ≥ j the linear block of H[j][:, i] is
// ω_j × v_i and the angular block ω_j × ω_i. Each such entry is mirrored into H[i][:, j] with the
// linear block copied and the angular block left zero.
func NewHessian(j mat.Matrix) Hessian {
	_, n := j.Dims()
	h := Hessian{n: n, data: make([]float64, n*6*n)}

	cols := make([][2]r3.Vector, n)
	for c := 0; c < n; c++ {
		cols[c][0] = r3.Vector{X: j.At(0, c), Y: j.At(1, c), Z: j.At(2, c)}
		cols[c][1] = r3.Vector{X: j.At(3, c), Y: j.At(4, c), Z: j.At(5, c)}
	}

	for jj := 0; jj < n; jj++ {
		w := cols[jj][1]
		for i := jj; i < n; i++ {
			lin := spatialmath.Cross(w, cols[i][0])
			ang := spatialmath.Cross(w, cols[i][1])
			h.set(jj, i, lin, ang)
			if i != jj {
				h.set(i, jj, lin, r3.Vector{})
			}
		}
	}
	return h
}

// Hessian0 returns the Hessian of chain at q built from the base-frame Jacobian.
func Hessian0(chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) Hessian {
	return NewHessian(Jacobian0(chain, q, tool))
}

// HessianE returns the Hessian of chain at q built from the tool-frame Jacobian.
func HessianE(chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) Hessian {
	return NewHessian(JacobianE(chain, q, tool))
}

func (h Hessian) set(j, i int, lin, ang r3.Vector) {
	base := j * 6 * h.n
	h.data[base+0*h.n+i] = lin.X
	h.data[base+1*h.n+i] = lin.Y
	h.data[base+2*h.n+i] = lin.Z
	h.data[base+3*h.n+i] = ang.X
	h.data[base+4*h.n+i] = ang.Y
	h.data[base+5*h.n+i] = ang.Z
}

// N returns the number of joints.
func (h Hessian) N() int {
	return h.n
}

// At returns H[j][row, i].
func (h Hessian) At(j, row, i int) float64 {
	return h.data[j*6*h.n+row*h.n+i]
}

// Slice returns H[j] as a 6×n matrix sharing the Hessian's storage.
func (h Hessian) Slice(j int) *mat.Dense {
	return mat.NewDense(6, h.n, h.data[j*6*h.n:(j+1)*6*h.n])
}

// RawData returns the backing buffer, laid out as n consecutive row-major 6×n slices.
func (h Hessian) RawData() []float64 {
	return h.data
}
