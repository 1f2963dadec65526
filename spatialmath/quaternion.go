package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// RotationToQuaternion extracts the unit quaternion of the rotation block of p.
// Each component magnitude comes from a sum-of-squares formula over the trace and the
// off-diagonal sums/differences; the vector signs are then taken from the off-diagonal
// differences. The scalar part is always non-negative.
func RotationToQuaternion(p Pose) quat.Number {
	r00, r01, r02 := p[0], p[1], p[2]
	r10, r11, r12 := p[4], p[5], p[6]
	r20, r21, r22 := p[8], p[9], p[10]

	t12p := sq(r01 + r10)
	t13p := sq(r02 + r20)
	t23p := sq(r12 + r21)

	t12m := sq(r01 - r10)
	t13m := sq(r02 - r20)
	t23m := sq(r12 - r21)

	d1 := sq(r00 + r11 + r22 + 1)
	d2 := sq(r00 - r11 - r22 + 1)
	d3 := sq(-r00 + r11 - r22 + 1)
	d4 := sq(-r00 - r11 + r22 + 1)

	q := quat.Number{
		Real: math.Sqrt(d1+t23m+t13m+t12m) / 4,
		Imag: math.Sqrt(t23m+d2+t12p+t13p) / 4,
		Jmag: math.Sqrt(t13m+t12p+d3+t23p) / 4,
		Kmag: math.Sqrt(t12m+t13p+t23p+d4) / 4,
	}

	if r21 < r12 {
		q.Imag = -q.Imag
	}
	if r02 < r20 {
		q.Jmag = -q.Jmag
	}
	if r10 < r01 {
		q.Kmag = -q.Kmag
	}
	return q
}

// QuaternionToPose returns the pure rotation described by q. q is normalized first.
func QuaternionToPose(q quat.Number) Pose {
	if n := quat.Abs(q); n > 0 && n != 1 {
		q = quat.Scale(1/n, q)
	}
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Pose{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y), 0,
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x), 0,
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// QuaternionAlmostEqual is an equality test for quaternions that treats q and -q as the same rotation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol && math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol && math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol && math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol && math.Abs(a.Kmag+b.Kmag) < tol
}

func sq(v float64) float64 {
	return v * v
}
