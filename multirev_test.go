package astrora

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMultiRevRoundTrip(t *testing.T) {
	r1, r2, P := leoGeometry()
	householder, err := NewSolver(Config{Update: HouseholderUpdate, Branch: BranchSingle}, nil, nil)
	require.NoError(t, err)
	solved := 0
	for _, periods := range []float64{3, 5, 9, 20} {
		tof := periods * P
		for _, kind := range []TransferKind{TransferShortWay, TransferLongWay} {
			nMax, err := MaxRevolutions(r1, r2, tof, μEarth, kind)
			require.NoError(t, err)
			for _, revs := range []uint32{1, 2, 3, 10} {
				if revs > nMax {
					continue
				}
				sol, err := Solve(r1, r2, tof, μEarth, kind, revs)
				if err != nil {
					t.Fatalf("%.0fP %s N=%d: %s", periods, kind, revs, err)
				}
				if sol.Revs != revs || sol.ShortWay != (kind == TransferShortWay) {
					t.Fatalf("%.0fP %s N=%d: solution echoes N=%d short=%v", periods, kind, revs, sol.Revs, sol.ShortWay)
				}
				if sol.E >= 1 || sol.A <= 0 {
					t.Fatalf("%.0fP %s N=%d: multi revolution transfers are elliptic (a=%f, e=%f)", periods, kind, revs, sol.A, sol.E)
				}
				// N complete revolutions must fit in the time of flight.
				period := 2 * math.Pi * math.Sqrt(sol.A*sol.A*sol.A/μEarth)
				if float64(revs)*period > tof {
					t.Fatalf("%.0fP %s N=%d: %d periods of %f s exceed %f s", periods, kind, revs, revs, period, tof)
				}
				r, v, err := Propagate(r1, sol.V1, tof, μEarth)
				require.NoError(t, err)
				if !vectorsEqual(r, r2, 1) || !vectorsEqual(v, sol.V2, 1e-3) {
					t.Fatalf("%.0fP %s N=%d: propagated to %+v at %+v, expected %+v at %+v", periods, kind, revs, r, v, r2, sol.V2)
				}
				hSol, err := householder.Solve(r1, r2, tof, μEarth, kind, revs)
				require.NoError(t, err)
				if !vectorsEqual(hSol.V1, sol.V1, 1e-3) || !vectorsEqual(hSol.V2, sol.V2, 1e-3) {
					t.Fatalf("%.0fP %s N=%d: Householder (%+v) and Newton (%+v) differ", periods, kind, revs, hSol.V1, sol.V1)
				}
				solved++
			}
		}
	}
	if solved < 20 {
		t.Fatalf("only %d cases solved", solved)
	}
}

func TestMultiRevNinePeriods(t *testing.T) {
	r1, r2, P := leoGeometry()
	sol, err := Solve(r1, r2, 9*P, μEarth, TransferShortWay, 2)
	require.NoError(t, err)
	require.InDelta(t, 18832184.6, sol.A, 1)
	require.InDelta(t, 0.672054, sol.E, 1e-5)
	a, _ := conic(r1, sol.V1, μEarth)
	require.True(t, scalar.EqualWithinRel(a, sol.A, 1e-6), "vis-viva a = %f, solution a = %f", a, sol.A)
	require.True(t, sol.Iterations > 0 && sol.Iterations <= multiRevMaxIterations)
}

func TestMaxRevolutions(t *testing.T) {
	r1, r2, P := leoGeometry()
	n, err := MaxRevolutions(r1, r2, 9*P, μEarth, TransferShortWay)
	require.NoError(t, err)
	require.Equal(t, uint32(10), n)
	n, err = MaxRevolutions(r1, r2, 1000, μEarth, TransferAuto)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = Solve(r1, r2, 9*P, μEarth, TransferShortWay, 11)
	require.ErrorIs(t, err, ErrInvalidParameter)
	var perr *ParameterError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "revolutions", perr.Name)
	require.Equal(t, 11.0, perr.Value)

	_, err = Solve(r1, r2, 1000, μEarth, TransferShortWay, 1)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = MaxRevolutions(r1, r2, -1, μEarth, TransferShortWay)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestMultiRevCollinear(t *testing.T) {
	r1, _, P := leoGeometry()
	for _, r2 := range []r3.Vec{r3.Scale(2, r1), r3.Scale(-1, r1)} {
		_, err := Solve(r1, r2, 5*P, μEarth, TransferAuto, 1)
		require.ErrorIs(t, err, ErrInvalidState)
		_, err = MaxRevolutions(r1, r2, 5*P, μEarth, TransferAuto)
		require.ErrorIs(t, err, ErrInvalidState)
	}
}

func TestIzzoTime(t *testing.T) {
	for _, λ := range []float64{0.41421356, -0.41421356, 0, 0.9} {
		T00 := math.Acos(λ) + λ*math.Sqrt(1-λ*λ)
		for n := uint32(0); n < 4; n++ {
			T, ok := izzoTime(0, λ, n)
			if !ok || !scalar.EqualWithinAbs(T, T00+float64(n)*math.Pi, 1e-12) {
				t.Fatalf("λ=%f N=%d: T(0) = %f (%v), expected %f", λ, n, T, ok, T00+float64(n)*math.Pi)
			}
		}
	}
	for _, x := range []float64{1, -1, 1.5, math.NaN()} {
		if _, ok := izzoTime(x, 0.4, 1); ok {
			t.Fatalf("T(%f) should be undefined", x)
		}
	}
	// Derivatives against the closed form slope of a smooth region.
	x, λ := 0.3, 0.4
	d1, d2, _, ok := izzoDerivatives(x, λ, 2)
	require.True(t, ok)
	h := 1e-5
	tp, _ := izzoTime(x+h, λ, 2)
	tm, _ := izzoTime(x-h, λ, 2)
	t0, _ := izzoTime(x, λ, 2)
	require.InDelta(t, (tp-tm)/(2*h), d1, 1e-4*math.Abs(d1))
	require.InDelta(t, (tp-2*t0+tm)/(h*h), d2, 1e-2*math.Abs(d2))
	_, _, _, ok = izzoDerivatives(0.9999, λ, 2)
	require.False(t, ok)
}

func TestMultiRevUpdate(t *testing.T) {
	for name, exp := range map[string]MultiRevUpdate{"": NewtonUpdate, "Newton": NewtonUpdate, "householder ": HouseholderUpdate} {
		u, err := ParseMultiRevUpdate(name)
		require.NoError(t, err)
		require.Equal(t, exp, u)
	}
	_, err := ParseMultiRevUpdate("halley")
	require.ErrorIs(t, err, ErrInvalidParameter)
	require.Equal(t, "householder", HouseholderUpdate.String())
	require.Equal(t, "MultiRevUpdate(0)", MultiRevUpdate(0).String())
}

func TestMultiRevStep(t *testing.T) {
	step, ok := NewtonUpdate.step(0.5, 2, 1, 1)
	require.True(t, ok)
	require.Equal(t, -0.25, step)
	// Householder reduces to Newton when the higher derivatives vanish.
	step, ok = HouseholderUpdate.step(0.5, 2, 0, 0)
	require.True(t, ok)
	require.InDelta(t, -0.25, step, 1e-15)
	for _, u := range []MultiRevUpdate{NewtonUpdate, HouseholderUpdate} {
		_, ok = u.step(0.5, 0, 0, 0)
		require.False(t, ok, u.String())
		_, ok = u.step(math.NaN(), 1, 1, 1)
		require.False(t, ok, u.String())
	}
}
