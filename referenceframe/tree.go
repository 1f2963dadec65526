package referenceframe

import (
	"go.viam.com/kinematics/spatialmath"
)

// Tree is an arena of links in parent-before-child order. Links refer to their parent by index.
// Propagate mutates the link and shape caches in place, so a Tree must not be propagated from two
// goroutines at once.
type Tree struct {
	Links []Link
}

// NewTree builds a tree over a copy of links. Ordering is not checked; see Validate.
func NewTree(links ...Link) *Tree {
	t := &Tree{Links: make([]Link, len(links))}
	copy(t.Links, links)
	for i := range t.Links {
		t.Links[i].Shapes = append([]Shape(nil), links[i].Shapes...)
	}
	return t
}

// N is the length of the configuration vector the tree reads from.
func (t *Tree) N() int {
	n := 0
	for i := range t.Links {
		if t.Links[i].IsJoint && t.Links[i].JointIndex+1 > n {
			n = t.Links[i].JointIndex + 1
		}
	}
	return n
}

// Find returns the index of the link called name.
func (t *Tree) Find(name string) (int, bool) {
	for i := range t.Links {
		if t.Links[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Propagate recomputes the world pose of every link at configuration q, and the world transform and
// orientation of every attached shape. Links are visited in arena order.
func (t *Tree) Propagate(q []float64, base spatialmath.Pose) {
	for i := range t.Links {
		l := &t.Links[i]
		local := l.Local(q)
		if l.Parent < 0 {
			l.FK = spatialmath.Compose(base, local)
		} else {
			l.FK = spatialmath.Compose(t.Links[l.Parent].FK, local)
		}
		l.refreshShapes()
	}
}

// Path returns the link indices from the root down to end, inclusive.
func (t *Tree) Path(end int) []int {
	var rev []int
	for i := end; i >= 0; i = t.Links[i].Parent {
		rev = append(rev, i)
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// PathChain flattens the path from the root to end into a chain: a static element for each
// non-identity A and a joint element for each joint link. Its forward kinematics from base equals
// the FK that Propagate computes for end.
func (t *Tree) PathChain(end int) *Chain {
	var ets []ET
	for _, idx := range t.Path(end) {
		l := &t.Links[idx]
		if l.A != spatialmath.Identity() {
			ets = append(ets, NewStaticET(l.A))
		}
		if l.IsJoint {
			ets = append(ets, l.ET())
		}
	}
	return NewChain(ets...)
}
