package astrora

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	methodMultiRev = "multi-revolution"

	multiRevTolerance  = 1e-8 // nondimensional time
	multiRevMaxStep    = 0.3
	multiRevBound      = 0.99 // |x| after each update
	multiRevGuessBound = 0.7  // |x| of the initial guess
	multiRevMaxA       = 1e6  // nondimensional semi-major axis

	// Finite difference steps for the first, second and third derivatives of the time function.
	fdStep1 = 1e-6
	fdStep2 = 1e-4
	fdStep3 = 1e-3

	collinearSinΔν = 1e-10
)

// multiRevMaxIterations is the iteration budget of the multi revolution solver.
var multiRevMaxIterations = 50

// MultiRevUpdate is the update rule of the multi revolution iteration.
type MultiRevUpdate uint8

const (
	// NewtonUpdate only uses the first derivative of the time of flight function.
	NewtonUpdate MultiRevUpdate = iota + 1
	// HouseholderUpdate is the third order update using the first three derivatives.
	HouseholderUpdate
)

func (u MultiRevUpdate) String() string {
	switch u {
	case NewtonUpdate:
		return "newton"
	case HouseholderUpdate:
		return "householder"
	default:
		return fmt.Sprintf("MultiRevUpdate(%d)", uint8(u))
	}
}

// step returns the change of x for the residual δ = T(x) - T and the derivatives of T at x,
// or false if it is not finite.
func (u MultiRevUpdate) step(δ, d1, d2, d3 float64) (float64, bool) {
	var step float64
	switch u {
	case HouseholderUpdate:
		step = -δ * (d1*d1 - δ*d2/2) / (d1*(d1*d1-δ*d2) + d3*δ*δ/6)
	default:
		step = -δ / d1
	}
	return step, finite(step)
}

// ParseMultiRevUpdate returns the update rule from its name.
func ParseMultiRevUpdate(name string) (MultiRevUpdate, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "newton":
		return NewtonUpdate, nil
	case "householder":
		return HouseholderUpdate, nil
	default:
		return 0, fmt.Errorf("%w: unknown multi-revolution update %q", ErrInvalidParameter, name)
	}
}

// izzoGeometry is the nondimensional description of a transfer.
type izzoGeometry struct {
	r1Norm, r2Norm float64
	c, s           float64 // chord and semi-perimeter
	λ              float64
	T              float64 // nondimensional time of flight
	ir1, ir2       r3.Vec  // radial unit vectors
	it1, it2       r3.Vec  // tangential unit vectors, in the direction of motion
}

func newIzzoGeometry(r1, r2 r3.Vec, tof, μ float64, shortWay bool) (izzoGeometry, error) {
	g := izzoGeometry{r1Norm: r3.Norm(r1), r2Norm: r3.Norm(r2)}
	g.c = r3.Norm(r3.Sub(r2, r1))
	g.s = (g.r1Norm + g.r2Norm + g.c) / 2
	h := r3.Cross(r1, r2)
	if r3.Norm(h) < collinearSinΔν*g.r1Norm*g.r2Norm {
		return g, invalidState("r1 and r2 are collinear: the transfer plane is not unique")
	}
	ih := unit(h)
	g.ir1 = unit(r1)
	g.ir2 = unit(r2)
	g.λ = math.Sqrt(1 - math.Min(g.c/g.s, 1))
	g.it1 = r3.Cross(ih, g.ir1)
	g.it2 = r3.Cross(ih, g.ir2)
	if !shortWay {
		g.λ = -g.λ
		g.it1 = r3.Scale(-1, g.it1)
		g.it2 = r3.Scale(-1, g.it2)
	}
	g.T = tof * math.Sqrt(2*μ/(g.s*g.s*g.s))
	return g, nil
}

// maxRevs returns the largest revolution count whose x = 0 time of flight does not exceed T.
func (g izzoGeometry) maxRevs() uint32 {
	T00 := math.Acos(g.λ) + g.λ*math.Sqrt(1-g.λ*g.λ)
	if g.T <= T00 {
		return 0
	}
	n := math.Floor((g.T - T00) / math.Pi)
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// MaxRevolutions returns the largest revolution count admissible for this geometry and time of flight.
func MaxRevolutions(r1, r2 r3.Vec, tof, mu float64, kind TransferKind) (uint32, error) {
	if err := validate(r1, r2, tof, mu, kind); err != nil {
		return 0, err
	}
	g, err := newIzzoGeometry(r1, r2, tof, mu, kind.shortWay(r1, r2))
	if err != nil {
		return 0, err
	}
	return g.maxRevs(), nil
}

// izzoTime is Lagrange's time of flight equation in the x variable, nondimensionalized by √(s³/2μ):
// T(x) = a^(3/2)/2 · [(α - sin α) - (β - sin β) + 2Nπ] with a = 1/(1-x²), α = 2 acos x and
// β = 2 asin(λ√(1-x²)). Returns false where the function is undefined.
func izzoTime(x, λ float64, n uint32) (float64, bool) {
	omx2 := 1 - x*x
	if !(omx2 > 0) {
		return 0, false
	}
	a := 1 / omx2
	if a > multiRevMaxA {
		return 0, false
	}
	if 1-λ*λ*omx2 < 0 {
		return 0, false
	}
	sinβ2 := λ * math.Sqrt(omx2)
	if math.Abs(sinβ2) > 1 {
		return 0, false
	}
	α := 2 * math.Acos(x)
	β := 2 * math.Asin(sinβ2)
	return a * math.Sqrt(a) / 2 * ((α - math.Sin(α)) - (β - math.Sin(β)) + 2*float64(n)*math.Pi), true
}

// izzoDerivatives returns the first three derivatives of izzoTime at x by symmetric finite
// differences: central for the first, three points for the second and five points for the third.
func izzoDerivatives(x, λ float64, n uint32) (d1, d2, d3 float64, ok bool) {
	var t [7]float64
	for i, xi := range [7]float64{x, x + fdStep1, x - fdStep1, x + fdStep2, x - fdStep2, x + fdStep3, x - fdStep3} {
		if t[i], ok = izzoTime(xi, λ, n); !ok {
			return
		}
	}
	tp2, ok2 := izzoTime(x+2*fdStep3, λ, n)
	tm2, ok3 := izzoTime(x-2*fdStep3, λ, n)
	if !ok2 || !ok3 {
		return 0, 0, 0, false
	}
	d1 = (t[1] - t[2]) / (2 * fdStep1)
	d2 = (t[3] - 2*t[0] + t[4]) / (fdStep2 * fdStep2)
	d3 = (tp2 - 2*t[5] + 2*t[6] - tm2) / (2 * fdStep3 * fdStep3 * fdStep3)
	return d1, d2, d3, true
}

// initialGuess returns the starting x for n revolutions.
func (g izzoGeometry) initialGuess(n uint32) float64 {
	if n == 1 {
		return 0
	}
	q := math.Pow(8*g.T/(float64(n)*math.Pi), 2/3.)
	return clamp((q-1)/(q+1), -multiRevGuessBound, multiRevGuessBound)
}

// solveMultiRev solves the transfer with n >= 1 complete revolutions.
// Inputs must have been validated.
func solveMultiRev(r1, r2 r3.Vec, tof, μ float64, shortWay bool, n uint32, update MultiRevUpdate) (LambertSolution, error) {
	g, err := newIzzoGeometry(r1, r2, tof, μ, shortWay)
	if err != nil {
		return LambertSolution{}, err
	}
	if nMax := g.maxRevs(); n > nMax {
		return LambertSolution{}, invalidParameter("revolutions", float64(n), fmt.Sprintf("exceeds the maximum of %d for this geometry and time of flight", nMax))
	}

	x := g.initialGuess(n)
	converged := false
	iteration := 0
	for ; iteration < multiRevMaxIterations; iteration++ {
		Tx, ok := izzoTime(x, g.λ, n)
		if !ok {
			return LambertSolution{}, invalidState("time of flight function undefined at x = %g (λ = %g)", x, g.λ)
		}
		δ := Tx - g.T
		if math.Abs(δ) < multiRevTolerance {
			converged = true
			break
		}
		d1, d2, d3, ok := izzoDerivatives(x, g.λ, n)
		if !ok {
			return LambertSolution{}, invalidState("time of flight derivatives undefined at x = %g (λ = %g)", x, g.λ)
		}
		step, ok := update.step(δ, d1, d2, d3)
		if !ok {
			return LambertSolution{}, invalidState("%s update undefined at x = %g (λ = %g)", update, x, g.λ)
		}
		x = clamp(x+clamp(step, -multiRevMaxStep, multiRevMaxStep), -multiRevBound, multiRevBound)
	}
	if !converged {
		return LambertSolution{}, &ConvergenceError{Method: methodMultiRev, Iterations: iteration, Tolerance: multiRevTolerance}
	}

	v1, v2 := g.velocities(x, μ)
	_, e := conic(r1, v1, μ)
	return LambertSolution{
		R1: r1, R2: r2, TOF: tof, Mu: μ,
		V1: v1, V2: v2,
		A: g.s / (2 * (1 - x*x)), E: e,
		Revs: n, ShortWay: shortWay,
		Iterations: iteration + 1,
	}, nil
}

// velocities reconstructs the terminal velocities at x from their radial and tangential components.
func (g izzoGeometry) velocities(x, μ float64) (v1, v2 r3.Vec) {
	λ := g.λ
	y := math.Sqrt(1 - λ*λ*(1-x*x))
	γ := math.Sqrt(μ * g.s / 2)
	ρ := (g.r1Norm - g.r2Norm) / g.c
	σ := math.Sqrt(1 - ρ*ρ)
	vr1 := γ * ((λ*y - x) - ρ*(λ*y+x)) / g.r1Norm
	vr2 := -γ * ((λ*y - x) + ρ*(λ*y+x)) / g.r2Norm
	vt := γ * σ * (y + λ*x)
	v1 = r3.Add(r3.Scale(vr1, g.ir1), r3.Scale(vt/g.r1Norm, g.it1))
	v2 = r3.Add(r3.Scale(vr2, g.ir2), r3.Scale(vt/g.r2Norm, g.it2))
	return
}
