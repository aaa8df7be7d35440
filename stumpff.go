package astrora

import "math"

// StumpffThreshold is the |z| at or below which the Stumpff functions are evaluated from their
// series expansions instead of the closed forms. The derivatives use the wider
// stumpffDerivativeSeries band. Tunable.
const StumpffThreshold = 1e-6

// stumpffDerivativeSeries is the |z| below which the derivatives use their series. It deliberately
// departs from StumpffThreshold, which only governs C and S: the closed form derivatives divide a
// difference of order z by z and lose about four digits just above 1e-6.
const stumpffDerivativeSeries = 1e-2

// Stumpff returns the Stumpff functions C(z) and S(z).
// The branch is selected by the sign of z: elliptic above the threshold, hyperbolic below its
// opposite, and a fourth order series in between to avoid the cancellation of 1-cos√z.
func Stumpff(z float64) (c, s float64) {
	switch {
	case z > StumpffThreshold:
		sz := math.Sqrt(z)
		ssz, csz := math.Sincos(sz)
		c = (1 - csz) / z
		s = (sz - ssz) / (z * sz)
	case z < -StumpffThreshold:
		sz := math.Sqrt(-z)
		c = (1 - math.Cosh(sz)) / z
		s = (math.Sinh(sz) - sz) / (-z * sz)
	default:
		z2 := z * z
		c = 1/2. - z/24 + z2/720 - z2*z/40320
		s = 1/6. - z/120 + z2/5040 - z2*z/362880
	}
	return
}

// StumpffDerivatives returns dC/dz and dS/dz.
func StumpffDerivatives(z float64) (dc, ds float64) {
	if math.Abs(z) <= math.Max(StumpffThreshold, stumpffDerivativeSeries) {
		z2 := z * z
		dc = -1/24. + z/360 - z2/13440 + z2*z/907200
		ds = -1/120. + z/2520 - z2/120960 + z2*z/9979200
		return
	}
	c, s := Stumpff(z)
	dc = (1 - z*s - 2*c) / (2 * z)
	ds = (c - 3*s) / (2 * z)
	return
}
