package models

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

func TestNames(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"panda", "panda_tree"})
	_, err := Load("ur5")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPanda(t *testing.T) {
	m := Panda()
	test.That(t, m.Name, test.ShouldEqual, "panda")
	test.That(t, m.N(), test.ShouldEqual, 7)
	test.That(t, m.Chain.NumJoints(), test.ShouldEqual, 7)
	test.That(t, m.Chain.Len(), test.ShouldEqual, 22)
	test.That(t, m.Chain.Limits()[3], test.ShouldResemble, referenceframe.Limit{Min: -3.0718, Max: -0.0698})
	test.That(t, m.IK["restarts"], test.ShouldEqual, 10.)

	qz, err := m.Configuration("qz")
	test.That(t, err, test.ShouldBeNil)
	p := m.Chain.ForwardKinematics(qz, nil, nil)
	test.That(t, p.Translation().X, test.ShouldAlmostEqual, 0.088)
	test.That(t, p.Translation().Y, test.ShouldAlmostEqual, 0)
	test.That(t, p.Translation().Z, test.ShouldAlmostEqual, 0.823)
	test.That(t, p.At(0, 0), test.ShouldAlmostEqual, math.Sqrt2/2)
	test.That(t, p.At(2, 2), test.ShouldAlmostEqual, -1)

	qr, err := m.Configuration("qr")
	test.That(t, err, test.ShouldBeNil)
	p = m.Chain.ForwardKinematics(qr, nil, nil)
	test.That(t, p.Translation().X, test.ShouldAlmostEqual, 0.48400688202638553, 1e-9)
	test.That(t, p.Translation().Y, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, p.Translation().Z, test.ShouldAlmostEqual, 0.413027777128414, 1e-9)
	test.That(t, p.At(0, 2), test.ShouldAlmostEqual, 0.09983341664682799, 1e-9)
}

func TestPandaString(t *testing.T) {
	s := Panda().Chain.String()
	test.That(t, s, test.ShouldStartWith, "tz(0.333) ⊕ Rz(q0) ⊕ Rx(-90°) ⊕ Rz(q1) ⊕ Rx(90°) ⊕ tz(0.316)")
	test.That(t, s, test.ShouldEndWith, "Rz(q6) ⊕ tz(0.103) ⊕ Rz(-45°)")
}

func TestPandaTreeMatchesChain(t *testing.T) {
	chain := Panda()
	tree := PandaTree()
	test.That(t, tree.N(), test.ShouldEqual, 9)
	test.That(t, len(tree.Tree.Links), test.ShouldEqual, 11)
	test.That(t, tree.Chain.NumJoints(), test.ShouldEqual, 7)

	hand, ok := tree.Tree.Find("panda_hand")
	test.That(t, ok, test.ShouldBeTrue)
	left, _ := tree.Tree.Find("panda_leftfinger")
	right, _ := tree.Tree.Find("panda_rightfinger")

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		q := referenceframe.RandomConfiguration(chain.Chain.Limits(), rnd)
		q = append(q, 0.02, 0.03)
		tree.Tree.Propagate(q, spatialmath.Identity())

		expected := chain.Chain.ForwardKinematics(q[:7], nil, nil)
		test.That(t, spatialmath.PoseAlmostEqual(tree.Tree.Links[hand].FK, expected, 1e-9), test.ShouldBeTrue)
		test.That(t, spatialmath.PoseAlmostEqual(tree.Chain.ForwardKinematics(q, nil, nil), expected, 1e-9),
			test.ShouldBeTrue)

		// fingers open symmetrically about the hand's y axis
		handInv := spatialmath.RigidInverse(tree.Tree.Links[hand].FK)
		l := spatialmath.Compose(handInv, tree.Tree.Links[left].FK).Translation()
		r := spatialmath.Compose(handInv, tree.Tree.Links[right].FK).Translation()
		test.That(t, l.Y, test.ShouldAlmostEqual, 0.02)
		test.That(t, r.Y, test.ShouldAlmostEqual, -0.03)
		test.That(t, l.Z, test.ShouldAlmostEqual, 0.0584)

		for _, link := range tree.Tree.Links {
			for _, s := range link.Shapes {
				test.That(t, spatialmath.PoseAlmostEqual(s.WorldT, spatialmath.Compose(link.FK, s.Base), 1e-12),
					test.ShouldBeTrue)
			}
		}
	}
}
