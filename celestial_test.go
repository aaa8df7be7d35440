package astrora

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// eclipticLongitude returns the longitude of R in degrees, within [0, 360).
func eclipticLongitude(R r3.Vec) float64 {
	return Rad2deg(math.Atan2(R.Y, R.X))
}

func TestCelestialObjectHelioState(t *testing.T) {
	for _, tc := range []struct {
		body CelestialObject
		dt   time.Time
		r    float64 // AU
		λ    float64 // degrees
	}{
		// Around the March equinox, the Sun is seen at 0 degrees so the Earth is at 180 degrees.
		{Earth, time.Date(2016, 3, 20, 4, 30, 0, 0, time.UTC), 0.99592, 179.78},
		{Earth, julian.JDToTime(J2000), 0.98331, 100.38},
		// 2016 opposition
		{Mars, time.Date(2016, 5, 22, 0, 0, 0, 0, time.UTC), 1.5223, 241.3},
	} {
		R, V, err := tc.body.HelioState(tc.dt)
		if err != nil {
			t.Fatalf("%s: %s", tc.body, err)
		}
		if r := r3.Norm(R) / AU; !scalar.EqualWithinAbs(r, tc.r, 1e-3) {
			t.Fatalf("%s at %s: |R| = %f AU, expected %f", tc.body, tc.dt, r, tc.r)
		}
		if λ := eclipticLongitude(R); math.Abs(math.Mod(λ-tc.λ+540, 360)-180) > 0.05 {
			t.Fatalf("%s at %s: longitude %f, expected %f", tc.body, tc.dt, λ, tc.λ)
		}
		// Prograde and near circular
		if r3.Cross(R, V).Z <= 0 {
			t.Fatalf("%s is not prograde", tc.body)
		}
		if vc := math.Sqrt(Sun.GM() / r3.Norm(R)); math.Abs(r3.Norm(V)-vc)/vc > 0.1 {
			t.Fatalf("%s: |V| = %f m/s, circular speed %f m/s", tc.body, r3.Norm(V), vc)
		}
	}
	_, V, err := Earth.HelioState(time.Date(2016, 3, 20, 4, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(r3.Norm(V), 29906, 5) {
		t.Fatalf("|V| = %f m/s", r3.Norm(V))
	}
}

func TestCelestialObjectHelioOrbit(t *testing.T) {
	for _, body := range []CelestialObject{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune} {
		o, err := body.HelioOrbit(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("%s: %s", body, err)
		}
		a, e, i, _, _, _ := o.Elements()
		if a < 0.3*AU || a > 31*AU || e > 0.21 || Rad2deg(i) > 8 || o.GM() != Sun.GM() {
			t.Fatalf("%s: implausible orbit %s", body, o)
		}
	}
	R, V, err := Sun.HelioState(time.Now())
	if err != nil || R != (r3.Vec{}) || V != (r3.Vec{}) {
		t.Fatal("the Sun is at the origin")
	}
	vesta := CelestialObject{Name: "Vesta", Radius: 262.7e3, μ: 1.7288e10}
	if _, err := vesta.HelioOrbit(time.Now()); err == nil {
		t.Fatal("expected an error without mean elements")
	}
	if _, _, err := vesta.HelioState(time.Now()); err == nil {
		t.Fatal("expected an error without mean elements")
	}
}

func TestCelestialObjectNegativeInclination(t *testing.T) {
	dt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	o, err := Earth.HelioOrbit(dt)
	if err != nil {
		t.Fatal(err)
	}
	_, _, i, _, _, _ := o.Elements()
	if i < 0 || Rad2deg(i) > 0.01 {
		t.Fatalf("Earth inclination %f degrees", Rad2deg(i))
	}
	// Same state as the unnormalized elements.
	m := Earth.mean
	T := (julian.TimeToJD(dt) - J2000) / 36525
	e := m.e + m.eDot*T
	ϖ := (m.ϖ + m.ϖDot*T) * deg2rad
	Ω := (m.Ω + m.ΩDot*T) * deg2rad
	raw := Orbit{a: (m.a + m.aDot*T) * AU, e: e, i: (m.i + m.iDot*T) * deg2rad, Ω: Ω, ω: ϖ - Ω, ν: trueAnomaly((m.L+m.LDot*T)*deg2rad-ϖ, e), μ: Sun.μ}
	if raw.i >= 0 {
		t.Fatalf("expected a negative raw inclination, got %f", raw.i)
	}
	R, V := o.RV()
	rawR, rawV := raw.RV()
	if !vectorsEqual(R, rawR, 1) || !vectorsEqual(V, rawV, 1e-6) {
		t.Fatalf("\nGot %+v %+v\nExp %+v %+v", R, V, rawR, rawV)
	}
}

func TestCelestialObjectFromString(t *testing.T) {
	for _, body := range []CelestialObject{Sun, Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune} {
		for _, name := range []string{body.Name, strings.ToUpper(body.Name), " " + strings.ToLower(body.Name) + " "} {
			obj, err := CelestialObjectFromString(name)
			if err != nil {
				t.Fatalf("%s: %s", name, err)
			}
			if obj.Name != body.Name || obj.GM() != body.GM() {
				t.Fatalf("%s returned %s", name, obj)
			}
		}
	}
	if _, err := CelestialObjectFromString("pluto"); err == nil {
		t.Fatal("Pluto is not supported")
	}
	if Mars.String() != "Mars body" {
		t.Fatal(Mars.String())
	}
}
