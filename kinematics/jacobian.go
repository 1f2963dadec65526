// Package kinematics computes differential kinematics of elementary transform chains: the
// manipulator Jacobian in the base and tool frames, the manipulator Hessian and the manipulability
// measures built on them.
//
// Columns follow the joint elements in chain order. Rows 0-2 hold the linear velocity of the end
// effector, rows 3-5 the angular velocity. A flipped joint's column is negated so that every column
// is the derivative with respect to the configuration entry, not the axis angle.
//
// The linear rows are the velocity of the end effector's origin, not a spatial twist. Jacobian0 is
// therefore blockdiag(R, R)·JacobianE for the rotation R of the end pose; the full twist adjoint
// would add a [p]×R term that only applies to twists referred to the base origin.
package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/referenceframe"
	"go.viam.com/kinematics/spatialmath"
)

// Jacobian0 returns the 6×NumJoints Jacobian of chain at q expressed in the base frame. tool is optional
// and extends the end effector. The chain must have at least one joint.
func Jacobian0(chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) *mat.Dense {
	dst := mat.NewDense(6, chain.NumJoints(), nil)
	Jacobian0To(dst, chain, q, tool)
	return dst
}

// Jacobian0To is Jacobian0 writing into dst, which must be 6×NumJoints.
func Jacobian0To(dst *mat.Dense, chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) {
	t := chain.ForwardKinematics(q, nil, tool)
	u := spatialmath.Identity()
	col := 0
	for i := 0; i < chain.Len(); i++ {
		et := chain.Element(i)
		if !et.IsJoint() {
			u = spatialmath.Compose(u, et.Pose())
			continue
		}
		u = spatialmath.Compose(u, et.Evaluate(q[et.JointIndex()]))
		d := spatialmath.Compose(spatialmath.RigidInverse(u), t)
		lin, ang := baseColumn(et.Axis(), &u, &d)
		setColumn(dst, col, lin, ang, et.Flip())
		col++
	}
}

// JacobianE returns the 6×NumJoints Jacobian of chain at q expressed in the tool frame.
func JacobianE(chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) *mat.Dense {
	dst := mat.NewDense(6, chain.NumJoints(), nil)
	JacobianETo(dst, chain, q, tool)
	return dst
}

// JacobianETo is JacobianE writing into dst, which must be 6×NumJoints. The chain is walked from the
// tool backwards so no inverse is needed.
func JacobianETo(dst *mat.Dense, chain *referenceframe.Chain, q []float64, tool *spatialmath.Pose) {
	u := spatialmath.Identity()
	if tool != nil {
		u = *tool
	}
	col := chain.NumJoints() - 1
	for i := chain.Len() - 1; i >= 0; i-- {
		et := chain.Element(i)
		if !et.IsJoint() {
			u = spatialmath.Compose(et.Pose(), u)
			continue
		}
		lin, ang := toolColumn(et.Axis(), &u)
		setColumn(dst, col, lin, ang, et.Flip())
		col--
		u = spatialmath.Compose(et.Evaluate(q[et.JointIndex()]), u)
	}
}

// LinkJacobian0 is Jacobian0 of the path from the tree root to the link at index end.
func LinkJacobian0(tree *referenceframe.Tree, end int, q []float64, tool *spatialmath.Pose) *mat.Dense {
	return Jacobian0(tree.PathChain(end), q, tool)
}

// LinkJacobianE is JacobianE of the path from the tree root to the link at index end.
func LinkJacobianE(tree *referenceframe.Tree, end int, q []float64, tool *spatialmath.Pose) *mat.Dense {
	return JacobianE(tree.PathChain(end), q, tool)
}

// ConfigurationJacobian folds a 6×NumJoints Jacobian into the 6×N Jacobian with respect to the
// configuration vector, summing columns whose joints share an index. dst must be 6×n.
func ConfigurationJacobian(dst *mat.Dense, j mat.Matrix, jointIndices []int) {
	dst.Zero()
	for col, idx := range jointIndices {
		for r := 0; r < 6; r++ {
			dst.Set(r, idx, dst.At(r, idx)+j.At(r, col))
		}
	}
}
