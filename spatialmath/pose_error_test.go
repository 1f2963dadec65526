package spatialmath

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestPoseErrorSelf(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		p := randomPose(rnd)
		e := PoseError(p, p)
		for _, v := range e {
			test.That(t, v, test.ShouldAlmostEqual, 0, 1e-12)
		}
	}
}

func TestPoseErrorTranslation(t *testing.T) {
	e := PoseError(TransY(2), TransX(1))
	test.That(t, e.Linear(), test.ShouldResemble, r3.Vector{X: 1, Y: -2})
	test.That(t, e.Angular(), test.ShouldResemble, r3.Vector{})
	test.That(t, e.Norm2(), test.ShouldAlmostEqual, 5)
}

func TestPoseErrorRotation(t *testing.T) {
	e := PoseError(Identity(), RotZ(0.3))
	test.That(t, e[3], test.ShouldAlmostEqual, 0)
	test.That(t, e[4], test.ShouldAlmostEqual, 0)
	test.That(t, e[5], test.ShouldAlmostEqual, 0.3)

	e = PoseError(RotX(0.2), RotX(-0.5))
	test.That(t, e[3], test.ShouldAlmostEqual, -0.7)

	// the error is expressed in the base frame: a rotation about the achieved pose's local
	// axis shows up along the rotated axis.
	achieved := RotX(math.Pi / 2)
	target := Compose(achieved, RotZ(0.1))
	e = PoseError(achieved, target)
	test.That(t, e[3], test.ShouldAlmostEqual, 0)
	test.That(t, e[4], test.ShouldAlmostEqual, -0.1)
	test.That(t, e[5], test.ShouldAlmostEqual, 0)

	test.That(t, e.WeightedSquaredNorm(4), test.ShouldAlmostEqual, 0.04)
}

func TestPoseErrorHalfTurn(t *testing.T) {
	// Near 180 degrees the axis sign is unrecoverable; both directions give the same error.
	pos := PoseError(Identity(), RotX(math.Pi))
	neg := PoseError(Identity(), RotX(-math.Pi))
	test.That(t, pos[3], test.ShouldAlmostEqual, math.Pi)
	test.That(t, pos[4], test.ShouldAlmostEqual, 0)
	test.That(t, pos[5], test.ShouldAlmostEqual, 0)
	test.That(t, neg, test.ShouldResemble, pos)

	e := PoseError(Identity(), RotY(math.Pi))
	test.That(t, e[4], test.ShouldAlmostEqual, math.Pi)
}

func TestPoseErrorMagnitude(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		rv := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
		rv = rv.Normalize().Mul(rnd.Float64() * 3)
		target := NewPoseFromRotationVector(r3.Vector{}, rv)
		e := PoseError(Identity(), target)
		test.That(t, e.Angular().Sub(rv).Norm(), test.ShouldBeLessThan, 1e-9)
	}
}

func TestAdjoint(t *testing.T) {
	test.That(t, mat.EqualApprox(Adjoint(Identity()), eye(6), 1e-15), test.ShouldBeTrue)

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		a := randomPose(rnd)
		b := randomPose(rnd)
		var prod mat.Dense
		prod.Mul(Adjoint(a), Adjoint(b))
		test.That(t, mat.EqualApprox(&prod, Adjoint(Compose(a, b)), 1e-9), test.ShouldBeTrue)

		var inv mat.Dense
		inv.Mul(Adjoint(a), Adjoint(RigidInverse(a)))
		test.That(t, mat.EqualApprox(&inv, eye(6), 1e-9), test.ShouldBeTrue)
	}

	v := VelocityTransform(RotZ(math.Pi / 2))
	test.That(t, v.At(0, 1), test.ShouldAlmostEqual, -1)
	test.That(t, v.At(4, 3), test.ShouldAlmostEqual, 1)
	test.That(t, v.At(0, 4), test.ShouldEqual, 0.)
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
