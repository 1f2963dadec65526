package referenceframe

import (
	"strings"

	"go.viam.com/kinematics/spatialmath"
)

// Axis names the motion an elementary transform performs.
type Axis int

// The integer values are stable and are used in serialized descriptors.
const (
	RotX Axis = iota
	RotY
	RotZ
	TransX
	TransY
	TransZ
)

type axisInfo struct {
	name       string
	generator  func(float64) spatialmath.Pose
	index      int
	rotational bool
}

// axisTable is the single source of per-axis behavior. Forward kinematics and both Jacobian
// sweeps read it, so the generator and the column formulas can not drift apart.
var axisTable = [...]axisInfo{
	RotX:   {"Rx", spatialmath.RotX, 0, true},
	RotY:   {"Ry", spatialmath.RotY, 1, true},
	RotZ:   {"Rz", spatialmath.RotZ, 2, true},
	TransX: {"tx", spatialmath.TransX, 0, false},
	TransY: {"ty", spatialmath.TransY, 1, false},
	TransZ: {"tz", spatialmath.TransZ, 2, false},
}

// Valid reports whether a is one of the six known axes.
func (a Axis) Valid() bool {
	return a >= RotX && a <= TransZ
}

// String returns the conventional short name, e.g. "Rz" or "tx".
func (a Axis) String() string {
	if !a.Valid() {
		return "invalid"
	}
	return axisTable[a].name
}

// Index returns the principal direction of the axis: 0 for X, 1 for Y, 2 for Z.
func (a Axis) Index() int {
	return axisTable[a].index
}

// IsRotation reports whether the axis is a rotation rather than a translation.
func (a Axis) IsRotation() bool {
	return axisTable[a].rotational
}

// Transform evaluates the elementary generator for the axis at v.
func (a Axis) Transform(v float64) spatialmath.Pose {
	return axisTable[a].generator(v)
}

// ParseAxis accepts the short names returned by String, case-insensitively.
func ParseAxis(s string) (Axis, error) {
	for a, info := range axisTable {
		if strings.EqualFold(info.name, s) {
			return Axis(a), nil
		}
	}
	return 0, NewInvalidAxisError(s)
}

// Permutation returns the two axis indices that follow a cyclically, (a+1)%3 and (a+2)%3.
func (a Axis) Permutation() (int, int) {
	i := axisTable[a].index
	return (i + 1) % 3, (i + 2) % 3
}
