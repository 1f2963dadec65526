package referenceframe

import (
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/kinematics/spatialmath"
)

// Shape is a piece of geometry rigidly attached to a link. Base is the only input; the other fields
// are caches refreshed by Tree.Propagate.
type Shape struct {
	Name string
	// Base is the shape offset relative to its link.
	Base spatialmath.Pose

	// LinkT is the world pose of the owning link.
	LinkT spatialmath.Pose
	// WorldT is LinkT · Base.
	WorldT spatialmath.Pose
	// WorldQ is the orientation of WorldT.
	WorldQ quat.Number
}

// Link is one node of a kinematic tree. Its local transform is A for a static link, or A followed by a
// single joint motion for a joint link. Parent indexes the owning Tree's links, -1 for a root.
type Link struct {
	Name   string
	Parent int

	A          spatialmath.Pose
	IsJoint    bool
	Axis       Axis
	Flip       bool
	JointIndex int
	Limit      *Limit

	// FK is the world pose of the link after the last propagation.
	FK     spatialmath.Pose
	Shapes []Shape
}

// NewStaticLink returns a root link with a fixed local transform.
func NewStaticLink(name string, a spatialmath.Pose) Link {
	return Link{Name: name, Parent: -1, A: a, FK: spatialmath.Identity()}
}

// NewJointLink returns a root link whose local transform is a followed by a joint motion.
func NewJointLink(name string, a spatialmath.Pose, axis Axis, jointIndex int) Link {
	l := NewStaticLink(name, a)
	l.IsJoint = true
	l.Axis = axis
	l.JointIndex = jointIndex
	return l
}

// Local returns the transform of the link relative to its parent at configuration q.
func (l *Link) Local(q []float64) spatialmath.Pose {
	if !l.IsJoint {
		return l.A
	}
	v := q[l.JointIndex]
	if l.Flip {
		v = -v
	}
	return spatialmath.Compose(l.A, axisTable[l.Axis].generator(v))
}

// ET returns the joint motion of the link as an elementary transform, carrying its limit.
func (l *Link) ET() ET {
	et := NewJointET(l.Axis, l.JointIndex)
	if l.Flip {
		et = et.WithFlip()
	}
	if l.Limit != nil {
		et = et.WithLimit(l.Limit.Min, l.Limit.Max)
	}
	return et
}

func (l *Link) refreshShapes() {
	for i := range l.Shapes {
		s := &l.Shapes[i]
		s.LinkT = l.FK
		s.WorldT = spatialmath.Compose(l.FK, s.Base)
		s.WorldQ = spatialmath.RotationToQuaternion(s.WorldT)
	}
}
