package astrora

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// AU is one astronomical unit in meters.
	AU = 1.495978707e11
	// J2000 is the Julian date of the J2000 epoch, 2000-01-01 12:00 TT.
	J2000 = 2451545.0
)

// meanElements are the Keplerian elements of a planet at J2000 and their rates per Julian
// century, in AU and degrees, in the J2000 ecliptic frame.
type meanElements struct {
	a, e, i, L, ϖ, Ω                   float64
	aDot, eDot, iDot, LDot, ϖDot, ΩDot float64
}

// CelestialObject defines a celestial object.
type CelestialObject struct {
	Name   string
	Radius float64 // m
	μ      float64 // m^3/s^2
	mean   *meanElements
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialObject) GM() float64 {
	return c.μ
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// HelioOrbit returns the heliocentric osculating orbit of this object at dt, in the J2000 ecliptic
// frame, from its secularly varying mean elements. It is an approximation valid between 1800 and 2050.
func (c CelestialObject) HelioOrbit(dt time.Time) (Orbit, error) {
	if c.mean == nil {
		return Orbit{}, fmt.Errorf("%s has no heliocentric elements", c.Name)
	}
	T := (julian.TimeToJD(dt.UTC()) - J2000) / 36525
	m := c.mean
	a := (m.a + m.aDot*T) * AU
	e := m.e + m.eDot*T
	i := (m.i + m.iDot*T) * deg2rad
	L := (m.L + m.LDot*T) * deg2rad
	ϖ := (m.ϖ + m.ϖDot*T) * deg2rad
	Ω := (m.Ω + m.ΩDot*T) * deg2rad
	ω := ϖ - Ω
	if i < 0 {
		// Earth's inclination rate drives it below zero after J2000: flip the node line.
		i, Ω, ω = -i, Ω+math.Pi, ω+math.Pi
	}
	return Orbit{a: a, e: e, i: i, Ω: wrap2π(Ω), ω: wrap2π(ω), ν: trueAnomaly(L-ϖ, e), μ: Sun.μ}, nil
}

// HelioState returns the heliocentric position and velocity of this object at dt.
func (c CelestialObject) HelioState(dt time.Time) (R, V r3.Vec, err error) {
	if c.Name == Sun.Name {
		return R, V, nil
	}
	o, err := c.HelioOrbit(dt)
	if err != nil {
		return R, V, err
	}
	R, V = o.RV()
	return R, V, nil
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined planet '%s'", name)
	}
}

/* Definitions */
// Mean elements from Standish, "Keplerian Elements for Approximate Positions of the Major Planets", table 1.

// Sun is our closest star.
var Sun = CelestialObject{"Sun", 695700e3, 1.32712440017987e20, nil}

// Mercury is hot.
var Mercury = CelestialObject{"Mercury", 2439.7e3, 2.2031780e13, &meanElements{
	0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
	0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081}}

// Venus is poisonous.
var Venus = CelestialObject{"Venus", 6051.8e3, 3.24858599e14, &meanElements{
	0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
	0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418}}

// Earth is home. Its elements are those of the Earth-Moon barycenter.
var Earth = CelestialObject{"Earth", 6378.1363e3, 3.98600433e14, &meanElements{
	1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
	0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0}}

// Mars is the vacation place.
var Mars = CelestialObject{"Mars", 3396.19e3, 4.28283100e13, &meanElements{
	1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
	0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343}}

// Jupiter is big.
var Jupiter = CelestialObject{"Jupiter", 71492.0e3, 1.266865361e17, &meanElements{
	5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
	-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106}}

// Saturn floats and that's really cool.
var Saturn = CelestialObject{"Saturn", 60268.0e3, 3.7931208e16, &meanElements{
	9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
	-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794}}

// Uranus is no joke.
var Uranus = CelestialObject{"Uranus", 25559.0e3, 5.7939513e15, &meanElements{
	19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
	-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589}}

// Neptune is windy.
var Neptune = CelestialObject{"Neptune", 24764.0e3, 6.836527e15, &meanElements{
	30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
	0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664}}
