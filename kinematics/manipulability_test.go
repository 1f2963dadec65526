package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/referenceframe/models"
)

func TestParseAxes(t *testing.T) {
	for _, a := range []Axes{AxesAll, AxesTrans, AxesRot} {
		parsed, err := ParseAxes(a.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, a)
	}
	_, err := ParseAxes("both")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "both")
}

func TestManipulabilityMatchesSingularValues(t *testing.T) {
	m := models.Panda()
	qr, err := m.Configuration("qr")
	test.That(t, err, test.ShouldBeNil)
	j := Jacobian0(m.Chain, qr, nil)

	for _, axes := range []Axes{AxesAll, AxesTrans, AxesRot} {
		lo, hi := axes.rows()
		var svd mat.SVD
		ok := svd.Factorize(j.Slice(lo, hi, 0, 7), mat.SVDNone)
		test.That(t, ok, test.ShouldBeTrue)
		expected := 1.
		for _, s := range svd.Values(nil) {
			expected *= s
		}
		got := Manipulability(j, axes)
		test.That(t, got, test.ShouldBeGreaterThan, 0)
		test.That(t, got, test.ShouldAlmostEqual, expected, 1e-9)
	}
}

func TestManipulabilityIsFrameInvariant(t *testing.T) {
	m := models.Panda()
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		q := referenceframe.RandomConfiguration(m.Chain.Limits(), rnd)
		j0 := Jacobian0(m.Chain, q, nil)
		je := JacobianE(m.Chain, q, nil)
		for _, axes := range []Axes{AxesAll, AxesTrans, AxesRot} {
			test.That(t, Manipulability(j0, axes), test.ShouldAlmostEqual, Manipulability(je, axes), 1e-9)
		}
	}
}

func TestManipulabilitySingular(t *testing.T) {
	m := models.Panda()
	qz, err := m.Configuration("qz")
	test.That(t, err, test.ShouldBeNil)
	// joints 0 and 2 share an axis at the zero pose
	test.That(t, Manipulability(Jacobian0(m.Chain, qz, nil), AxesAll), test.ShouldAlmostEqual, 0, 1e-6)

	zero := mat.NewDense(6, 3, nil)
	test.That(t, Manipulability(zero, AxesAll), test.ShouldEqual, 0)
	test.That(t, ManipulabilityJacobian(zero, NewHessian(zero), AxesAll), test.ShouldBeNil)
}

func TestManipulabilityJacobianMatchesFiniteDifference(t *testing.T) {
	m := models.Panda()
	qr, err := m.Configuration("qr")
	test.That(t, err, test.ShouldBeNil)

	j := Jacobian0(m.Chain, qr, nil)
	h := NewHessian(j)
	for _, axes := range []Axes{AxesAll, AxesTrans, AxesRot} {
		grad := ManipulabilityJacobian(j, h, axes)
		test.That(t, len(grad), test.ShouldEqual, 7)

		q := append([]float64(nil), qr...)
		for i := range q {
			q[i] = qr[i] + fdStep
			plus := Manipulability(Jacobian0(m.Chain, q, nil), axes)
			q[i] = qr[i] - fdStep
			minus := Manipulability(Jacobian0(m.Chain, q, nil), axes)
			q[i] = qr[i]
			numerical := (plus - minus) / (2 * fdStep)
			test.That(t, math.Abs(grad[i]-numerical), test.ShouldBeLessThan, 1e-6)
		}
	}
}

func BenchmarkManipulabilityJacobian(b *testing.B) {
	m := models.Panda()
	q, _ := m.Configuration("qr")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := Jacobian0(m.Chain, q, nil)
		ManipulabilityJacobian(j, NewHessian(j), AxesAll)
	}
}
