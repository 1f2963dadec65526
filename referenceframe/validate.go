package referenceframe

import (
	"fmt"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/utils"
)

// rigidTolerance bounds the orthonormality error accepted for fixed transforms read from descriptors.
const rigidTolerance = 1e-6

// Validate checks the structural preconditions the kinematics routines assume and returns every
// violation found.
func (c *Chain) Validate() error {
	if len(c.ets) == 0 {
		return ErrEmptyChain
	}
	var errAll error
	for i := range c.ets {
		multierr.AppendInto(&errAll, validateET(i, &c.ets[i]))
	}
	return errAll
}

func validateET(i int, et *ET) error {
	var errAll error
	what := fmt.Sprintf("element %d (%s)", i, et)
	if et.isJoint || et.elementary {
		if !et.axis.Valid() {
			multierr.AppendInto(&errAll, NewInvalidAxisError(fmt.Sprint(int(et.axis))))
		}
	}
	if et.isJoint {
		if et.jointIndex < 0 {
			multierr.AppendInto(&errAll, NewJointIndexOutOfRangeError(i, et.jointIndex, 0))
		}
		if et.hasLimit && !(et.limit.Min <= et.limit.Max) {
			multierr.AppendInto(&errAll, NewInvalidLimitError(what, et.limit))
		}
		return errAll
	}
	if !spatialmath.IsRigid(et.t, rigidTolerance) {
		multierr.AppendInto(&errAll, NewNonRigidTransformError(what))
	}
	return errAll
}

// ValidateDoF checks that every joint index of the chain lies in [0, dof).
func (c *Chain) ValidateDoF(dof int) error {
	var errAll error
	for i := range c.ets {
		if c.ets[i].isJoint && (c.ets[i].jointIndex < 0 || c.ets[i].jointIndex >= dof) {
			multierr.AppendInto(&errAll, NewJointIndexOutOfRangeError(i, c.ets[i].jointIndex, dof))
		}
	}
	return errAll
}

// ValidateConfiguration checks that q has exactly N finite entries.
func (c *Chain) ValidateConfiguration(q []float64) error {
	return validateConfiguration(q, c.n)
}

// ValidateBatch checks that qs has N columns and only finite entries.
func (c *Chain) ValidateBatch(qs mat.Matrix) error {
	rows, cols := qs.Dims()
	if cols != c.n {
		return NewIncorrectDoFError(cols, c.n)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := qs.At(i, j); !utils.IsFinite(v) {
				return NewNonFiniteInputError(i*cols+j, v)
			}
		}
	}
	return nil
}

// Validate checks that parents precede children, that joint links are well formed and that every
// fixed transform is rigid.
func (t *Tree) Validate() error {
	var errAll error
	for i := range t.Links {
		l := &t.Links[i]
		if l.Parent < -1 || l.Parent >= i {
			multierr.AppendInto(&errAll, NewParentOrderError(l.Name, i, l.Parent))
		}
		if !spatialmath.IsRigid(l.A, rigidTolerance) {
			multierr.AppendInto(&errAll, NewNonRigidTransformError(fmt.Sprintf("link %q", l.Name)))
		}
		if l.IsJoint {
			if !l.Axis.Valid() {
				multierr.AppendInto(&errAll, NewInvalidAxisError(fmt.Sprint(int(l.Axis))))
			}
			if l.JointIndex < 0 {
				multierr.AppendInto(&errAll, NewJointIndexOutOfRangeError(i, l.JointIndex, 0))
			}
			if l.Limit != nil && !(l.Limit.Min <= l.Limit.Max) {
				multierr.AppendInto(&errAll, NewInvalidLimitError(fmt.Sprintf("link %q", l.Name), *l.Limit))
			}
		}
		for j := range l.Shapes {
			if !spatialmath.IsRigid(l.Shapes[j].Base, rigidTolerance) {
				multierr.AppendInto(&errAll,
					NewNonRigidTransformError(fmt.Sprintf("shape %d of link %q", j, l.Name)))
			}
		}
	}
	return errAll
}

// ValidateConfiguration checks that q has exactly N finite entries.
func (t *Tree) ValidateConfiguration(q []float64) error {
	return validateConfiguration(q, t.N())
}

func validateConfiguration(q []float64, n int) error {
	if len(q) != n {
		return NewIncorrectDoFError(len(q), n)
	}
	for i, v := range q {
		if !utils.IsFinite(v) {
			return NewNonFiniteInputError(i, v)
		}
	}
	return nil
}
