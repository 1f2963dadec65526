package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

// Cross returns a × b.
func Cross(a, b r3.Vector) r3.Vector {
	return a.Cross(b)
}

// Norm returns the euclidean norm of v.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// Trace returns the trace of the rotation block of p.
func Trace(p Pose) float64 {
	return p[0] + p[5] + p[10]
}

// Trace3 returns the trace of a row-major 3x3 matrix.
func Trace3(r [9]float64) float64 {
	return r[0] + r[4] + r[8]
}
