package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrCircularReference is returned when link parents form a cycle.
var ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

// ErrEmptyChain is returned when a descriptor contains no elements.
var ErrEmptyChain = errors.New("chain has no elements")

// NewIncorrectDoFError is returned when a configuration has the wrong length.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match degrees of freedom, expected %d but got %d", expected, actual)
}

// NewJointIndexOutOfRangeError is returned when an element references a joint outside the configuration.
func NewJointIndexOutOfRangeError(element, jointIndex, n int) error {
	return errors.Errorf("element %d references joint %d, outside [0, %d)", element, jointIndex, n)
}

// NewParentOrderError is returned when a link appears before its parent in the arena.
func NewParentOrderError(name string, index, parent int) error {
	return errors.Errorf("link %q at index %d has parent index %d, parents must come first", name, index, parent)
}

// NewInvalidAxisError is returned for an unknown axis name or code.
func NewInvalidAxisError(axis string) error {
	return errors.Errorf("invalid axis %q, expected one of Rx Ry Rz tx ty tz", axis)
}

// NewNonFiniteInputError is returned when a configuration contains NaN or infinite values.
func NewNonFiniteInputError(index int, value float64) error {
	return errors.Errorf("input %d is not finite: %v", index, value)
}

// NewNonRigidTransformError is returned when a fixed transform is not a rigid motion.
func NewNonRigidTransformError(what string) error {
	return errors.Errorf("%s is not a rigid transform", what)
}

// NewInvalidLimitError is returned when a joint limit has min greater than max.
func NewInvalidLimitError(what string, limit Limit) error {
	return errors.Errorf("%s has invalid limit [%v, %v]", what, limit.Min, limit.Max)
}

// NewFrameMissingError is returned when a named link or configuration cannot be found.
func NewFrameMissingError(name string) error {
	return errors.Errorf("frame with name %q not in model", name)
}

// NewParentFrameMissingError is returned when a link names a parent that does not exist.
func NewParentFrameMissingError(name, parent string) error {
	return errors.Errorf("parent %q of link %q not found", parent, name)
}
