package referenceframe

import (
	"strings"

	"go.viam.com/kinematics/spatialmath"
)

// Chain is an ordered sequence of elementary transforms, T = E1 · E2 · … · Ek, from the reference
// frame to the tool frame. A Chain is immutable once built and is safe for concurrent use.
type Chain struct {
	ets []ET
	// n is the width of a configuration, one past the largest joint index.
	n int
	// joints is the number of joint elements, which is also the Jacobian width.
	joints int
}

// NewChain builds a chain from ets. The input slice is copied.
func NewChain(ets ...ET) *Chain {
	c := &Chain{ets: make([]ET, len(ets))}
	copy(c.ets, ets)
	for _, et := range c.ets {
		if !et.isJoint {
			continue
		}
		c.joints++
		if et.jointIndex+1 > c.n {
			c.n = et.jointIndex + 1
		}
	}
	return c
}

// Len returns the number of elements.
func (c *Chain) Len() int {
	return len(c.ets)
}

// Element returns element i. The returned value must not be modified.
func (c *Chain) Element(i int) *ET {
	return &c.ets[i]
}

// ETs returns a copy of the elements.
func (c *Chain) ETs() []ET {
	out := make([]ET, len(c.ets))
	copy(out, c.ets)
	return out
}

// N is the length of the configuration vector the chain reads from.
func (c *Chain) N() int {
	return c.n
}

// NumJoints is the number of joint elements, which is the number of Jacobian columns.
// It differs from N only when a joint index is shared or skipped.
func (c *Chain) NumJoints() int {
	return c.joints
}

// JointIndices lists the joint index of each joint element in chain order.
func (c *Chain) JointIndices() []int {
	out := make([]int, 0, c.joints)
	for i := range c.ets {
		if c.ets[i].isJoint {
			out = append(out, c.ets[i].jointIndex)
		}
	}
	return out
}

// Limits returns one limit per configuration entry. The first joint element declaring a limit for an
// index wins; indices without a declared limit are Unlimited.
func (c *Chain) Limits() []Limit {
	limits := make([]Limit, c.n)
	set := make([]bool, c.n)
	for i := range limits {
		limits[i] = Unlimited
	}
	for i := range c.ets {
		et := &c.ets[i]
		if !et.isJoint || !et.hasLimit || set[et.jointIndex] {
			continue
		}
		limits[et.jointIndex] = et.limit
		set[et.jointIndex] = true
	}
	return limits
}

// ForwardKinematics composes the chain at configuration q. base and tool are optional and are
// applied before the first and after the last element respectively.
func (c *Chain) ForwardKinematics(q []float64, base, tool *spatialmath.Pose) spatialmath.Pose {
	acc := spatialmath.Identity()
	if base != nil {
		acc = *base
	}
	for i := range c.ets {
		et := &c.ets[i]
		if et.isJoint {
			acc = spatialmath.Compose(acc, et.Evaluate(q[et.jointIndex]))
		} else {
			acc = spatialmath.Compose(acc, et.t)
		}
	}
	if tool != nil {
		acc = spatialmath.Compose(acc, *tool)
	}
	return acc
}

// Inverse returns the chain whose composition is the inverse of this one: the elements in
// reverse order, each inverted.
func (c *Chain) Inverse() *Chain {
	ets := make([]ET, len(c.ets))
	for i := range c.ets {
		ets[len(c.ets)-1-i] = c.ets[i].Inverse()
	}
	return NewChain(ets...)
}

// Concat returns a chain composing c followed by others.
func (c *Chain) Concat(others ...*Chain) *Chain {
	ets := c.ETs()
	for _, o := range others {
		ets = append(ets, o.ets...)
	}
	return NewChain(ets...)
}

// String renders the chain as its elements joined by " ⊕ ".
func (c *Chain) String() string {
	parts := make([]string, len(c.ets))
	for i := range c.ets {
		parts[i] = c.ets[i].String()
	}
	return strings.Join(parts, " ⊕ ")
}
