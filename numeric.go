package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EPSILON is the tolerance below which two floating-point values are
// considered equal. It governs feasibility checks, basis identification,
// and Answer comparison throughout the package.
const EPSILON = 1e-9

// nearlyEqual reports whether a and b differ by no more than EPSILON.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= EPSILON
}

// nearlyZero reports whether v is within EPSILON of zero.
func nearlyZero(v float64) bool {
	return math.Abs(v) <= EPSILON
}

// nearlyInteger reports whether v is within EPSILON of its nearest integer.
func nearlyInteger(v float64) bool {
	return nearlyZero(v - math.Round(v))
}

// maxAbs returns the largest absolute value in xs (its infinity norm), or 0
// for an empty slice.
func maxAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Norm(xs, math.Inf(1))
}
