package referenceframe

import (
	"math"
	"math/rand"

	"go.viam.com/kinematics/utils"
)

// Limit represents the range of motion of a single joint.
type Limit struct {
	Min float64
	Max float64
}

// Unlimited is the limit carried by joints that declare none.
var Unlimited = Limit{Min: math.Inf(-1), Max: math.Inf(1)}

// IsBounded reports whether both ends of the limit are finite.
func (l Limit) IsBounded() bool {
	return !math.IsInf(l.Min, 0) && !math.IsInf(l.Max, 0)
}

// Contains reports whether v lies within the limit.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp restricts v to the limit.
func (l Limit) Clamp(v float64) float64 {
	return utils.Clamp(v, l.Min, l.Max)
}

func limitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}

	const epsilon = 1e-5
	for idx, x := range a {
		if !utils.Float64AlmostEqual(x.Min, b[idx].Min, epsilon) ||
			!utils.Float64AlmostEqual(x.Max, b[idx].Max, epsilon) {
			return false
		}
	}

	return true
}

// RestrictedRandomConfiguration will produce a configuration within the limits, restricting the range to
// `lim` percent of each limit around its midpoint.
func RestrictedRandomConfiguration(limits []Limit, rSeed *rand.Rand, lim float64) []float64 {
	if rSeed == nil {
		//nolint:gosec
		rSeed = rand.New(rand.NewSource(1))
	}
	q := make([]float64, 0, len(limits))
	for _, limit := range limits {
		l, u := limit.Min, limit.Max

		// Default to [-pi, pi] if limits are infinite
		if math.IsInf(l, -1) {
			l = -math.Pi
		}
		if math.IsInf(u, 1) {
			u = math.Pi
		}

		mid := (l + u) / 2
		half := lim * (u - l) / 2
		q = append(q, mid+half*(2*rSeed.Float64()-1))
	}
	return q
}

// RandomConfiguration will produce a configuration uniformly distributed within the limits.
func RandomConfiguration(limits []Limit, rSeed *rand.Rand) []float64 {
	return RestrictedRandomConfiguration(limits, rSeed, 1)
}

// ClampConfiguration restricts each joint value of q to its limit in place.
func ClampConfiguration(q []float64, limits []Limit) {
	for i := range q {
		if i < len(limits) {
			q[i] = limits[i].Clamp(q[i])
		}
	}
}
