// Package calculation turns a user profile and goal into a daily macro
// target and rolls meal logs up into daily totals and adherence recaps.
//
// Everything here is pure: no I/O, no logging, no shared state. Missing
// inputs are reported through nil or ok=false results, never errors.
package calculation

import "math"

// round rounds half-up (toward positive infinity on ties), so -2.5 becomes -2.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
