// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/lift-progression/pkg/constants"
)

// Round rounds a weight to two decimals so that repeated percentage math
// does not leak floating point noise into recommendations.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ReduceByFraction removes fraction of value, e.g. ReduceByFraction(100, 0.1) == 90.
func ReduceByFraction(value, fraction float64) float64 {
	return Round(value * (1 - fraction))
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
