package astrora

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	methodUniversal = "universal-variable"

	universalTolerance  = 1e-8  // seconds
	universalStallAfter = 10    // iterations before a stalled z counts as converged
	universalStallStep  = 1e-12 // negligible change of z
	universalNudge      = 0.1   // z increment when y(z) <= 0
	degenerateA         = 1e-6  // m
)

// universalMaxIterations is the iteration budget of the zero revolution solver.
var universalMaxIterations = 100

// solveUniversal solves the direct (zero revolution) transfer by Newton-Raphson iterations on the
// universal variable z, and reconstructs the velocities from the Lagrange coefficients.
// Inputs must have been validated.
func solveUniversal(r1, r2 r3.Vec, tof, μ float64, shortWay bool) (LambertSolution, error) {
	r1Norm := r3.Norm(r1)
	r2Norm := r3.Norm(r2)
	cosΔν := r3.Dot(r1, r2) / (r1Norm * r2Norm)
	dm := 1.0
	if !shortWay {
		dm = -1.0
	}
	A := dm * math.Sqrt(r1Norm*r2Norm*(1+cosΔν))
	if math.Abs(A) < degenerateA {
		return LambertSolution{}, invalidState("Δν ~ 180 degrees (A = %g): the transfer plane is not unique", A)
	}

	sqrtμ := math.Sqrt(μ)
	y := func(z, c, s float64) float64 {
		return r1Norm + r2Norm + A*(z*s-1)/math.Sqrt(c)
	}

	// t(z) increases with z, so [zLow, zUp] brackets the solution. 4π² is the single revolution bound.
	z := 0.0
	zLow, zUp := math.Inf(-1), 4*math.Pi*math.Pi
	converged := false
	iteration := 0
	for ; iteration < universalMaxIterations; iteration++ {
		c, s := Stumpff(z)
		yz := y(z, c, s)
		if yz <= 0 {
			// Infeasible region, which only exists for A > 0: move z up.
			zLow = z
			z += universalNudge
			if z >= zUp {
				z = (zLow + zUp) / 2
			}
			continue
		}
		χ := math.Sqrt(yz / c)
		Δt := (χ*χ*χ*s + A*math.Sqrt(yz)) / sqrtμ
		δ := tof - Δt
		if math.Abs(δ) < universalTolerance {
			converged = true
			break
		}
		if δ > 0 {
			zLow = z
		} else {
			zUp = z
		}
		zNext := z + δ/universalDtDz(z, yz, χ, c, s, A, sqrtμ)
		if !finite(zNext) || zNext <= zLow || zNext >= zUp {
			// Newton left the bracket: bisect instead.
			if math.IsInf(zLow, -1) {
				zNext = z - math.Max(1, math.Abs(z))
			} else {
				zNext = (zLow + zUp) / 2
			}
		}
		if iteration > universalStallAfter && math.Abs(zNext-z) < universalStallStep {
			// Time of flight is at its floating point resolution.
			converged = true
			break
		}
		z = zNext
	}
	if !converged {
		return LambertSolution{}, &ConvergenceError{Method: methodUniversal, Iterations: iteration, Tolerance: universalTolerance}
	}

	c, s := Stumpff(z)
	yz := y(z, c, s)
	// Lagrange coefficients
	f := 1 - yz/r1Norm
	g := A * math.Sqrt(yz) / sqrtμ
	gDot := 1 - yz/r2Norm
	v1 := r3.Scale(1/g, r3.Sub(r2, r3.Scale(f, r1)))
	v2 := r3.Scale(1/g, r3.Sub(r3.Scale(gDot, r2), r1))

	a, e := conic(r1, v1, μ)
	return LambertSolution{
		R1: r1, R2: r2, TOF: tof, Mu: μ,
		V1: v1, V2: v2,
		A: a, E: e,
		Revs: 0, ShortWay: shortWay,
		Iterations: iteration + 1,
	}, nil
}

// universalDtDz returns dt/dz at z, where y = y(z) and χ = √(y/C).
// Near z = 0 the closed near-parabolic form is used:
// dt/dz = [√2/40·y^(3/2) + A/8·(√y + A·√(1/(2y)))] / √μ
func universalDtDz(z, y, χ, c, s, A, sqrtμ float64) float64 {
	sqrty := math.Sqrt(y)
	if math.Abs(z) <= StumpffThreshold {
		return (math.Sqrt2/40*y*sqrty + A/8*(sqrty+A*math.Sqrt(1/(2*y)))) / sqrtμ
	}
	dc, ds := StumpffDerivatives(z)
	sqrtc := math.Sqrt(c)
	dy := A * ((s+z*ds)/sqrtc - (z*s-1)*dc/(2*c*sqrtc))
	dχ := (dy*c - y*dc) / (2 * c * c * χ)
	return (3*χ*χ*dχ*s + χ*χ*χ*ds + A*dy/(2*sqrty)) / sqrtμ
}
