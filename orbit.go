package astrora

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
)

// Orbit defines an orbit via its classical orbital elements. Angles are in radians, the
// semi-major axis in meters (negative for hyperbolas).
type Orbit struct {
	a, e, i, Ω, ω, ν float64
	μ                float64 // gravitational parameter of the central body
}

// NewOrbitFromOE creates an orbit from the orbital elements.
// WARNING: Angles must be in degrees not radian.
func NewOrbitFromOE(a, e, i, Ω, ω, ν, μ float64) Orbit {
	return Orbit{a: a, e: e, i: Deg2rad(i), Ω: Deg2rad(Ω), ω: Deg2rad(ω), ν: Deg2rad(ν), μ: μ}
}

// NewOrbitFromRV returns the orbital elements of the state (R, V).
// For circular orbits ω is zero and ν is the argument of latitude (inclined) or the true
// longitude (equatorial); for equatorial orbits Ω is zero and ω is the longitude of periapsis.
func NewOrbitFromRV(R, V r3.Vec, μ float64) Orbit {
	// From Vallado's RV2COE, page 113
	hVec := r3.Cross(R, V)
	n := r3.Vec{X: -hVec.Y, Y: hVec.X} // k x h
	v := r3.Norm(V)
	r := r3.Norm(R)
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := r3.Scale(1/μ, r3.Sub(r3.Scale(v*v-μ/r, R), r3.Scale(r3.Dot(R, V), V)))
	e := r3.Norm(eVec)
	hNorm := r3.Norm(hVec)
	i := math.Acos(clamp(hVec.Z/hNorm, -1, 1))
	nNorm := r3.Norm(n)
	equatorial := nNorm < angleε*hNorm
	circular := e < eccentricityε

	var Ω, ω, ν float64
	if !equatorial {
		Ω = math.Acos(clamp(n.X/nNorm, -1, 1))
		if n.Y < 0 {
			Ω = 2*math.Pi - Ω
		}
	}
	// The in-plane angles of an equatorial orbit are measured in the direction of motion.
	hSign := sign(hVec.Z)
	switch {
	case circular && equatorial:
		// True longitude
		ν = math.Atan2(hSign*R.Y, R.X)
	case circular:
		// Argument of latitude
		ν = math.Acos(clamp(r3.Dot(n, R)/(nNorm*r), -1, 1))
		if R.Z < 0 {
			ν = 2*math.Pi - ν
		}
	default:
		if equatorial {
			// Longitude of periapsis
			ω = math.Atan2(hSign*eVec.Y, eVec.X)
		} else {
			ω = math.Acos(clamp(r3.Dot(n, eVec)/(nNorm*e), -1, 1))
			if eVec.Z < 0 {
				ω = 2*math.Pi - ω
			}
		}
		cosν := r3.Dot(eVec, R) / (e * r)
		if abscosν := math.Abs(cosν); abscosν > 1 && scalar.EqualWithinAbs(abscosν, 1, 1e-12) {
			cosν = sign(cosν)
		}
		ν = math.Acos(cosν)
		if r3.Dot(R, V) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	return Orbit{a: a, e: e, i: i, Ω: wrap2π(Ω), ω: wrap2π(ω), ν: wrap2π(ν), μ: μ}
}

// wrap2π returns the angle in [0, 2π).
func wrap2π(θ float64) float64 {
	θ = math.Mod(θ, 2*math.Pi)
	if θ < 0 {
		θ += 2 * math.Pi
	}
	return θ
}

// Elements returns the classical orbital elements (radians).
func (o Orbit) Elements() (a, e, i, Ω, ω, ν float64) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.ν
}

// GM returns the gravitational parameter of the central body.
func (o Orbit) GM() float64 {
	return o.μ
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return -o.μ / (2 * o.a)
}

// SemiParameter returns the semi parameter p.
func (o Orbit) SemiParameter() float64 {
	return o.a * (1 - o.e*o.e)
}

// Apoapsis returns the apoapsis radius, infinite for open orbits.
func (o Orbit) Apoapsis() float64 {
	if o.e >= 1 {
		return math.Inf(1)
	}
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() float64 {
	return o.a * (1 - o.e)
}

// Period returns the period of this orbit, or zero if it is open.
func (o Orbit) Period() time.Duration {
	if o.e >= 1 || o.a <= 0 {
		return 0
	}
	seconds := 2 * math.Pi * math.Sqrt(o.a*o.a*o.a/o.μ)
	return time.Duration(seconds * float64(time.Second))
}

// RNorm returns the norm of the radius vector without computing the radius vector.
func (o Orbit) RNorm() float64 {
	return o.SemiParameter() / (1 + o.e*math.Cos(o.ν))
}

// RV returns the position and velocity vectors.
func (o Orbit) RV() (R, V r3.Vec) {
	p := o.SemiParameter()
	sinν, cosν := math.Sincos(o.ν)
	R = PQW2ECI(o.i, o.ω, o.Ω, r3.Vec{X: p * cosν / (1 + o.e*cosν), Y: p * sinν / (1 + o.e*cosν)})
	sqrtμp := math.Sqrt(o.μ / p)
	V = PQW2ECI(o.i, o.ω, o.Ω, r3.Vec{X: -sqrtμp * sinν, Y: sqrtμp * (o.e + cosν)})
	return
}

// String implements the stringer interface.
func (o Orbit) String() string {
	return fmt.Sprintf("a=%.1f km e=%.4f i=%.3f Ω=%.3f ω=%.3f ν=%.3f", o.a/1e3, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν))
}

// Radii2ae returns the semi major axis and the eccentricty from the radii.
func Radii2ae(rA, rP float64) (a, e float64) {
	if rA < rP {
		panic("periapsis cannot be greater than apoapsis")
	}
	a = (rP + rA) / 2
	e = (rA - rP) / (rA + rP)
	return
}

// trueAnomaly returns the true anomaly of the elliptic orbit of eccentricity e at mean anomaly M,
// solving Kepler's equation M = E - e sin E with Newton's method.
func trueAnomaly(M, e float64) float64 {
	M = wrap2π(M)
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < 50; i++ {
		sinE, cosE := math.Sincos(E)
		δ := (E - e*sinE - M) / (1 - e*cosE)
		E -= δ
		if math.Abs(δ) < 1e-14 {
			break
		}
	}
	sinE2, cosE2 := math.Sincos(E / 2)
	return wrap2π(2 * math.Atan2(math.Sqrt(1+e)*sinE2, math.Sqrt(1-e)*cosE2))
}
