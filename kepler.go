package astrora

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	methodKepler = "universal-kepler"

	keplerMaxIterations = 1000
	keplerTolerance     = 1e-10 // relative change of the universal anomaly
)

// Propagate returns the two body state dt seconds after (r0, v0) around a body of gravitational
// parameter mu, by solving the universal Kepler equation for the universal anomaly χ with
// a bracketed Newton's method and applying the Lagrange coefficients. dt may be negative.
func Propagate(r0, v0 r3.Vec, dt, mu float64) (r, v r3.Vec, err error) {
	r0Norm := r3.Norm(r0)
	if !(r0Norm >= 1) {
		return r, v, invalidParameter("position magnitude", r0Norm, "must be > 1 m")
	}
	if !(mu > 0) || math.IsInf(mu, 1) {
		return r, v, invalidParameter("gravitational parameter", mu, "must be positive")
	}
	if !finite(dt) {
		return r, v, invalidParameter("time step", dt, "must be finite")
	}
	if dt == 0 {
		return r0, v0, nil
	}

	sqrtμ := math.Sqrt(mu)
	vr0 := r3.Dot(r0, v0) / r0Norm
	α := 2/r0Norm - r3.Dot(v0, v0)/mu // reciprocal of the semi-major axis

	// Initial guesses from Vallado, Algorithm 8.
	var χ float64
	switch {
	case α*r0Norm > 1e-12:
		χ = sqrtμ * α * dt
	case α*r0Norm < -1e-12:
		a := 1 / α
		sdt := math.Copysign(1, dt)
		χ = sdt * math.Sqrt(-a) * math.Log(-2*mu*α*dt/(r3.Dot(r0, v0)+sdt*math.Sqrt(-mu*a)*(1-r0Norm*α)))
	}
	// F(χ) increases with χ (dF/dχ = r > 0) and F(0) = -√μ dt, so the root lies on the side of dt.
	χLow, χUp := 0.0, math.Inf(1)
	if dt < 0 {
		χLow, χUp = math.Inf(-1), 0
	}
	if χ == 0 || !finite(χ) || χ <= χLow || χ >= χUp {
		χ = sqrtμ * dt / r0Norm
	}
	converged := false
	iteration := 0
	for ; iteration < keplerMaxIterations; iteration++ {
		z := α * χ * χ
		c, s := Stumpff(z)
		χ2 := χ * χ
		F := r0Norm*vr0/sqrtμ*χ2*c + (1-α*r0Norm)*χ2*χ*s + r0Norm*χ - sqrtμ*dt
		dF := r0Norm*vr0/sqrtμ*χ*(1-z*s) + (1-α*r0Norm)*χ2*c + r0Norm
		ratio := F / dF
		if finite(ratio) && math.Abs(ratio) <= keplerTolerance*math.Max(1, math.Abs(χ)) {
			χ -= ratio
			converged = true
			break
		}
		if F < 0 {
			χLow = χ
		} else {
			χUp = χ
		}
		χNext := χ - ratio
		if !finite(χNext) || χNext <= χLow || χNext >= χUp {
			// Newton left the bracket: expand it while open, bisect once closed.
			switch {
			case math.IsInf(χUp, 1):
				χNext = χLow + math.Max(1, math.Abs(χLow))
			case math.IsInf(χLow, -1):
				χNext = χUp - math.Max(1, math.Abs(χUp))
			default:
				χNext = (χLow + χUp) / 2
			}
		}
		step := χNext - χ
		χ = χNext
		if math.Abs(step) <= keplerTolerance*math.Max(1, math.Abs(χ)) {
			converged = true
			break
		}
	}
	if !converged {
		return r, v, &ConvergenceError{Method: methodKepler, Iterations: iteration, Tolerance: keplerTolerance}
	}

	z := α * χ * χ
	c, s := Stumpff(z)
	χ2 := χ * χ
	f := 1 - χ2/r0Norm*c
	g := dt - χ2*χ*s/sqrtμ
	r = r3.Add(r3.Scale(f, r0), r3.Scale(g, v0))
	rNorm := r3.Norm(r)
	fDot := sqrtμ / (rNorm * r0Norm) * (z*χ*s - χ)
	gDot := 1 - χ2/rNorm*c
	v = r3.Add(r3.Scale(fDot, r0), r3.Scale(gDot, v0))
	return r, v, nil
}
