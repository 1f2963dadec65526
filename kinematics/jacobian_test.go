package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/referenceframe/models"
	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/testutils"
)

const fdStep = 1e-5

// numericalJacobian differentiates forward kinematics by central differences over the configuration.
func numericalJacobian(chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) *mat.Dense {
	n := chain.N()
	j := mat.NewDense(6, n, nil)
	qq := append([]float64(nil), q...)
	for i := 0; i < n; i++ {
		qq[i] = q[i] + fdStep
		plus := chain.ForwardKinematics(qq, nil, tool)
		qq[i] = q[i] - fdStep
		minus := chain.ForwardKinematics(qq, nil, tool)
		qq[i] = q[i]
		e := spatialmath.PoseError(minus, plus)
		for r := 0; r < 6; r++ {
			j.Set(r, i, e[r]/(2*fdStep))
		}
	}
	return j
}

func TestJacobian0MatchesFiniteDifference(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 30; i++ {
		chain := testutils.RandomChain(rnd, 1+rnd.Intn(7), false)
		q := referenceframe.RandomConfiguration(chain.Limits(), rnd)
		var tool *spatialmath.Pose
		if i%2 == 0 {
			p := testutils.RandomPose(rnd)
			tool = &p
		}
		test.That(t, mat.EqualApprox(Jacobian0(chain, q, tool), numericalJacobian(chain, q, tool), 1e-6), test.ShouldBeTrue)
	}
}

func TestJacobianFrames(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		chain := testutils.RandomChain(rnd, 1+rnd.Intn(8), false)
		q := referenceframe.RandomConfiguration(chain.Limits(), rnd)
		var tool *spatialmath.Pose
		if i%2 == 1 {
			p := testutils.RandomPose(rnd)
			tool = &p
		}

		j0 := Jacobian0(chain, q, tool)
		je := JacobianE(chain, q, tool)
		end := chain.ForwardKinematics(q, nil, tool)

		var mapped mat.Dense
		mapped.Mul(spatialmath.VelocityTransform(end), je)
		test.That(t, mat.EqualApprox(&mapped, j0, 1e-9), test.ShouldBeTrue)
	}
}

func TestJacobianPandaKnownColumns(t *testing.T) {
	m := models.Panda()
	qz, err := m.Configuration("qz")
	test.That(t, err, test.ShouldBeNil)

	j := Jacobian0(m.Chain, qz, nil)
	r, c := j.Dims()
	test.That(t, r, test.ShouldEqual, 6)
	test.That(t, c, test.ShouldEqual, 7)

	// the first joint spins the end effector about the base z axis
	test.That(t, j.At(0, 0), test.ShouldAlmostEqual, 0)
	test.That(t, j.At(1, 0), test.ShouldAlmostEqual, 0.088)
	test.That(t, j.At(2, 0), test.ShouldAlmostEqual, 0)
	test.That(t, j.At(5, 0), test.ShouldAlmostEqual, 1)

	// the last joint is aligned with the flange, it only rotates it
	for row := 0; row < 3; row++ {
		test.That(t, j.At(row, 6), test.ShouldAlmostEqual, 0)
	}
	test.That(t, j.At(5, 6), test.ShouldAlmostEqual, -1)

	je := JacobianE(m.Chain, qz, nil)
	test.That(t, je.At(5, 6), test.ShouldAlmostEqual, 1)
}

func TestJacobianToReusesBuffer(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	chain := testutils.RandomChain(rnd, 5, false)
	dst := mat.NewDense(6, chain.NumJoints(), nil)
	for i := 0; i < 5; i++ {
		q := referenceframe.RandomConfiguration(chain.Limits(), rnd)
		Jacobian0To(dst, chain, q, nil)
		test.That(t, mat.Equal(dst, Jacobian0(chain, q, nil)), test.ShouldBeTrue)
		JacobianETo(dst, chain, q, nil)
		test.That(t, mat.Equal(dst, JacobianE(chain, q, nil)), test.ShouldBeTrue)
	}
}

func TestStaticElementsFold(t *testing.T) {
	// tx(1) Rz(q0) tx(1) Rz(q1) tx(1) is a planar two link arm
	chain := referenceframe.NewChain(
		referenceframe.Tx(1),
		referenceframe.NewJointET(referenceframe.RotZ, 0),
		referenceframe.Tx(1),
		referenceframe.NewJointET(referenceframe.RotZ, 1),
		referenceframe.Tx(1),
	)
	q := []float64{0, math.Pi / 2}
	j := Jacobian0(chain, q, nil)
	// end effector at (2, 1): joint 0 at (1, 0), joint 1 at (2, 0)
	test.That(t, j.At(0, 0), test.ShouldAlmostEqual, -1)
	test.That(t, j.At(1, 0), test.ShouldAlmostEqual, 1)
	test.That(t, j.At(0, 1), test.ShouldAlmostEqual, -1)
	test.That(t, j.At(1, 1), test.ShouldAlmostEqual, 0)
	test.That(t, j.At(5, 0), test.ShouldAlmostEqual, 1)
	test.That(t, j.At(5, 1), test.ShouldAlmostEqual, 1)
}

func TestFlippedJoint(t *testing.T) {
	plain := referenceframe.NewChain(referenceframe.NewJointET(referenceframe.RotY, 0), referenceframe.Tz(1))
	flipped := referenceframe.NewChain(referenceframe.NewJointET(referenceframe.RotY, 0).WithFlip(), referenceframe.Tz(1))
	q := []float64{0.3}
	neg := []float64{-0.3}

	var negated mat.Dense
	negated.Scale(-1, Jacobian0(plain, neg, nil))
	test.That(t, mat.EqualApprox(Jacobian0(flipped, q, nil), &negated, 1e-12), test.ShouldBeTrue)
	negated.Scale(-1, JacobianE(plain, neg, nil))
	test.That(t, mat.EqualApprox(JacobianE(flipped, q, nil), &negated, 1e-12), test.ShouldBeTrue)
}

func TestConfigurationJacobian(t *testing.T) {
	chain := referenceframe.NewChain(
		referenceframe.NewJointET(referenceframe.RotZ, 0),
		referenceframe.Tx(0.5),
		referenceframe.NewJointET(referenceframe.RotY, 1),
		referenceframe.Tx(0.5),
		referenceframe.NewJointET(referenceframe.RotZ, 0),
		referenceframe.Tx(0.5),
	)
	q := []float64{0.2, -0.4}
	j := Jacobian0(chain, q, nil)
	_, cols := j.Dims()
	test.That(t, cols, test.ShouldEqual, 3)

	jq := mat.NewDense(6, chain.N(), nil)
	ConfigurationJacobian(jq, j, chain.JointIndices())
	test.That(t, mat.EqualApprox(jq, numericalJacobian(chain, q, nil), 1e-6), test.ShouldBeTrue)
}

func TestLinkJacobian(t *testing.T) {
	chain := models.Panda()
	tree := models.PandaTree()
	hand, ok := tree.Tree.Find("panda_hand")
	test.That(t, ok, test.ShouldBeTrue)

	rnd := rand.New(rand.NewSource(1))
	q := referenceframe.RandomConfiguration(chain.Chain.Limits(), rnd)
	tool := spatialmath.TransZ(0.1)
	qt := append(append([]float64(nil), q...), 0, 0)

	test.That(t, mat.EqualApprox(LinkJacobian0(tree.Tree, hand, qt, &tool), Jacobian0(chain.Chain, q, &tool), 1e-9),
		test.ShouldBeTrue)
	test.That(t, mat.EqualApprox(LinkJacobianE(tree.Tree, hand, qt, &tool), JacobianE(chain.Chain, q, &tool), 1e-9),
		test.ShouldBeTrue)
}

func BenchmarkJacobian0(b *testing.B) {
	m := models.Panda()
	q, _ := m.Configuration("qr")
	dst := mat.NewDense(6, 7, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Jacobian0To(dst, m.Chain, q, nil)
	}
}

func BenchmarkJacobianE(b *testing.B) {
	m := models.Panda()
	q, _ := m.Configuration("qr")
	dst := mat.NewDense(6, 7, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		JacobianETo(dst, m.Chain, q, nil)
	}
}
