package astrora

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPropagateVallado(t *testing.T) {
	// Vallado 4th edition, example 2-4
	r0 := r3.Vec{X: 1131.340e3, Y: -2282.343e3, Z: 6672.423e3}
	v0 := r3.Vec{X: -5643.05, Y: 4303.33, Z: 2428.79}
	r, v, err := Propagate(r0, v0, 40*60, μEarth)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	rExp := r3.Vec{X: -4219.7527e3, Y: 4363.0292e3, Z: -3958.7666e3}
	vExp := r3.Vec{X: 3689.866, Y: -1916.735, Z: -6112.511}
	if !vectorsEqual(r, rExp, 1) || !vectorsEqual(v, vExp, 1e-3) {
		t.Fatalf("\nGot %+v %+v\nExp %+v %+v", r, v, rExp, vExp)
	}
	// And back
	rB, vB, err := Propagate(r, v, -40*60, μEarth)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	if !vectorsEqual(rB, r0, 1e-3) || !vectorsEqual(vB, v0, 1e-6) {
		t.Fatalf("backward propagation: %+v %+v", rB, vB)
	}
}

func TestPropagateCircular(t *testing.T) {
	r0, _, P := leoGeometry()
	vc := math.Sqrt(μEarth / leoR)
	v0 := r3.Vec{Y: vc}
	for _, tc := range []struct {
		dt   float64
		r, v r3.Vec
	}{
		{P / 4, r3.Vec{Y: leoR}, r3.Vec{X: -vc}},
		{-P / 4, r3.Vec{Y: -leoR}, r3.Vec{X: vc}},
		{P / 2, r3.Vec{X: -leoR}, r3.Vec{Y: -vc}},
		{10*P + 100, r3.Vec{X: 6959365.859, Y: 753144.633}, r3.Vec{X: -811.89565, Y: 7502.24938}},
		{0, r0, v0},
	} {
		r, v, err := Propagate(r0, v0, tc.dt, μEarth)
		if err != nil {
			t.Fatalf("dt=%f: %s", tc.dt, err)
		}
		if !vectorsEqual(r, tc.r, 1e-2) || !vectorsEqual(v, tc.v, 1e-5) {
			t.Fatalf("dt=%f\nGot %+v %+v\nExp %+v %+v", tc.dt, r, v, tc.r, tc.v)
		}
	}
}

func TestPropagateHyperbolic(t *testing.T) {
	r0 := r3.Vec{X: 7000e3}
	v0 := r3.Vec{Y: 12000, Z: 2000}
	ξ0 := r3.Norm2(v0)/2 - μEarth/r3.Norm(r0)
	h0 := r3.Cross(r0, v0)
	for _, dt := range []float64{5000, -5000, 60, 86400} {
		r, v, err := Propagate(r0, v0, dt, μEarth)
		if err != nil {
			t.Fatalf("dt=%f: %s", dt, err)
		}
		ξ := r3.Norm2(v)/2 - μEarth/r3.Norm(r)
		if !scalar.EqualWithinRel(ξ, ξ0, 1e-9) {
			t.Fatalf("dt=%f: energy %f != %f", dt, ξ, ξ0)
		}
		if h := r3.Cross(r, v); !vectorsEqual(h, h0, 1e-9*r3.Norm(h0)) {
			t.Fatalf("dt=%f: angular momentum %+v != %+v", dt, h, h0)
		}
	}
	r, _, err := Propagate(r0, v0, 5000, μEarth)
	if err != nil {
		t.Fatal(err)
	}
	if !vectorsEqual(r, r3.Vec{X: -14088462.183, Y: 37687887.009, Z: 6281314.502}, 1e-2) {
		t.Fatalf("r = %+v", r)
	}
}

func TestPropagateEccentric(t *testing.T) {
	// e = 0.83, where plain Newton iterations cycle at dt = 2040 s.
	r0 := r3.Vec{X: 6955164.276}
	v0 := r3.Vec{X: -7085.447, Y: 5187.966, Z: -6.863}
	r, v, err := Propagate(r0, v0, 2040, μEarth)
	if err != nil {
		t.Fatalf("err = %s", err)
	}
	rExp := r3.Vec{X: 1442851.941, Y: -10979751.916, Z: 14524.775}
	vExp := r3.Vec{X: 3867.0983, Y: -4419.4583, Z: 5.8464}
	if !vectorsEqual(r, rExp, 1e-2) || !vectorsEqual(v, vExp, 1e-3) {
		t.Fatalf("\nGot %+v %+v\nExp %+v %+v", r, v, rExp, vExp)
	}
	// Every 10 s over a period (10905 s), both ways.
	for step := 10; step < 11000; step += 10 {
		for _, dt := range []float64{float64(step), -float64(step)} {
			r, v, err := Propagate(r0, v0, dt, μEarth)
			if err != nil {
				t.Fatalf("dt=%f: %s", dt, err)
			}
			rB, _, err := Propagate(r, v, -dt, μEarth)
			if err != nil {
				t.Fatalf("dt=%f back: %s", dt, err)
			}
			if !vectorsEqual(rB, r0, 1e-3) {
				t.Fatalf("dt=%f: round trip ended at %+v", dt, rB)
			}
		}
	}
}

func TestPropagateErrors(t *testing.T) {
	r0, _, _ := leoGeometry()
	v0 := r3.Vec{Y: 7000}
	for _, tc := range []struct {
		r0     r3.Vec
		dt, mu float64
	}{
		{r3.Vec{}, 100, μEarth},
		{r0, 100, 0},
		{r0, 100, math.Inf(1)},
		{r0, math.NaN(), μEarth},
		{r0, math.Inf(-1), μEarth},
	} {
		if _, _, err := Propagate(tc.r0, v0, tc.dt, tc.mu); err == nil {
			t.Fatalf("expected an error for %+v", tc)
		}
	}
}

func TestPropagateRK4(t *testing.T) {
	r0 := r3.Vec{X: 1131.340e3, Y: -2282.343e3, Z: 6672.423e3}
	v0 := r3.Vec{X: -5643.05, Y: 4303.33, Z: 2428.79}
	for _, dt := range []float64{2400, -2400, 7} {
		rExp, vExp, err := Propagate(r0, v0, dt, μEarth)
		if err != nil {
			t.Fatal(err)
		}
		r, v, err := PropagateRK4(r0, v0, dt, μEarth, 5)
		if err != nil {
			t.Fatal(err)
		}
		if !vectorsEqual(r, rExp, 1) || !vectorsEqual(v, vExp, 1e-3) {
			t.Fatalf("dt=%f\nRK4 %+v %+v\nExp %+v %+v", dt, r, v, rExp, vExp)
		}
	}
	if r, v, err := PropagateRK4(r0, v0, 0, μEarth, 5); err != nil || r != r0 || v != v0 {
		t.Fatal("null propagation must return the initial state")
	}
	if _, _, err := PropagateRK4(r0, v0, 10, μEarth, 0); err == nil {
		t.Fatal("expected an error for a null step")
	}
	if _, _, err := PropagateRK4(r0, v0, 10, -1, 1); err == nil {
		t.Fatal("expected an error for a negative μ")
	}
}
