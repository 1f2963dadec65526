package referenceframe

import (
	"fmt"

	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/utils"
)

// ET is an elementary transform: either a fixed pose or a single-axis motion parameterized by
// one joint value. ETs are immutable; the With* methods return modified copies.
type ET struct {
	isJoint    bool
	axis       Axis
	flip       bool
	jointIndex int

	// eta is the constant of a static elementary transform, kept for printing and inversion.
	eta        float64
	elementary bool
	t          spatialmath.Pose

	limit    Limit
	hasLimit bool
}

// NewJointET returns a joint-parameterized elementary transform about or along axis.
func NewJointET(axis Axis, jointIndex int) ET {
	return ET{isJoint: true, axis: axis, jointIndex: jointIndex, t: spatialmath.Identity()}
}

// NewStaticET returns an elementary transform fixed at pose.
func NewStaticET(pose spatialmath.Pose) ET {
	return ET{t: pose}
}

func newElementary(axis Axis, eta float64) ET {
	return ET{axis: axis, eta: eta, elementary: true, t: axis.Transform(eta)}
}

// Rx returns a static rotation of theta radians about X.
func Rx(theta float64) ET { return newElementary(RotX, theta) }

// Ry returns a static rotation of theta radians about Y.
func Ry(theta float64) ET { return newElementary(RotY, theta) }

// Rz returns a static rotation of theta radians about Z.
func Rz(theta float64) ET { return newElementary(RotZ, theta) }

// Tx returns a static translation of d along X.
func Tx(d float64) ET { return newElementary(TransX, d) }

// Ty returns a static translation of d along Y.
func Ty(d float64) ET { return newElementary(TransY, d) }

// Tz returns a static translation of d along Z.
func Tz(d float64) ET { return newElementary(TransZ, d) }

// WithFlip returns a copy of a joint ET whose joint value is negated before use.
func (et ET) WithFlip() ET {
	et.flip = true
	return et
}

// WithLimit returns a copy carrying a joint limit. Limits are not enforced by evaluation.
func (et ET) WithLimit(lo, hi float64) ET {
	et.limit = Limit{Min: lo, Max: hi}
	et.hasLimit = true
	return et
}

// IsJoint reports whether the ET depends on a joint value.
func (et ET) IsJoint() bool { return et.isJoint }

// Axis returns the axis of a joint or elementary static ET.
func (et ET) Axis() Axis { return et.axis }

// Flip reports whether the joint value is negated.
func (et ET) Flip() bool { return et.flip }

// JointIndex returns the index of the configuration entry driving the ET.
func (et ET) JointIndex() int { return et.jointIndex }

// Eta returns the constant of a static elementary ET.
func (et ET) Eta() float64 { return et.eta }

// Pose returns the fixed pose of a static ET.
func (et ET) Pose() spatialmath.Pose { return et.t }

// Limit returns the joint limit if one was set.
func (et ET) Limit() (Limit, bool) {
	if !et.hasLimit {
		return Unlimited, false
	}
	return et.limit, true
}

// Evaluate returns the transform of the ET at joint value q. q is ignored for static ETs.
func (et ET) Evaluate(q float64) spatialmath.Pose {
	if !et.isJoint {
		return et.t
	}
	if et.flip {
		q = -q
	}
	return axisTable[et.axis].generator(q)
}

// Inverse returns the ET undoing this one. A joint ET inverts by toggling its flip.
func (et ET) Inverse() ET {
	if et.isJoint {
		et.flip = !et.flip
		return et
	}
	et.t = spatialmath.RigidInverse(et.t)
	et.eta = -et.eta
	return et
}

// String renders joints as "Rz(q0)", static elementary transforms as "tz(0.333)" or
// "Rx(-90°)" and any other static pose as "SE3".
func (et ET) String() string {
	switch {
	case et.isJoint:
		sign := ""
		if et.flip {
			sign = "-"
		}
		return fmt.Sprintf("%s(%sq%d)", et.axis, sign, et.jointIndex)
	case et.elementary && et.axis.IsRotation():
		return fmt.Sprintf("%s(%.4g°)", et.axis, utils.RadToDeg(et.eta))
	case et.elementary:
		return fmt.Sprintf("%s(%.4g)", et.axis, et.eta)
	default:
		return "SE3"
	}
}
