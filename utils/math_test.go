package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversion(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(-37.5)), test.ShouldAlmostEqual, -37.5)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(2, -1, 1), test.ShouldEqual, 1.)
	test.That(t, Clamp(-2, -1, 1), test.ShouldEqual, -1.)
	test.That(t, Clamp(0.5, -1, 1), test.ShouldEqual, 0.5)
}

func TestIsFinite(t *testing.T) {
	test.That(t, IsFinite(1, 2, 3), test.ShouldBeTrue)
	test.That(t, IsFinite(1, math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
	test.That(t, IsFinite(), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1+1e-9, 1e-6), test.ShouldBeTrue)
	test.That(t, MaxInt(3, 4), test.ShouldEqual, 4)
	test.That(t, MinInt(3, 4), test.ShouldEqual, 3)
}
