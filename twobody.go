package astrora

import (
	"math"

	"github.com/cachemcclure/astrora/integrator"
	"gonum.org/v1/gonum/spatial/r3"
)

// twoBody integrates the Keplerian equations of motion r'' = -μ r / |r|³.
type twoBody struct {
	μ     float64
	steps uint64
	state []float64 // r then v
}

func (b *twoBody) GetState() []float64 {
	return b.state
}

func (b *twoBody) SetState(i uint64, s []float64) {
	b.state = s
}

func (b *twoBody) Stop(i uint64) bool {
	return i >= b.steps
}

func (b *twoBody) Func(t float64, f []float64) []float64 {
	r := r3.Vec{X: f[0], Y: f[1], Z: f[2]}
	rNorm := r3.Norm(r)
	μOvr3 := -b.μ / (rNorm * rNorm * rNorm)
	return []float64{f[3], f[4], f[5], μOvr3 * r.X, μOvr3 * r.Y, μOvr3 * r.Z}
}

// PropagateRK4 numerically integrates the two body state (r0, v0) for dt seconds with a fixed
// step RK4 of at most maxStep seconds. The step is shortened so that the last one lands on dt.
func PropagateRK4(r0, v0 r3.Vec, dt, mu, maxStep float64) (r, v r3.Vec, err error) {
	if !(mu > 0) || math.IsInf(mu, 1) {
		return r, v, invalidParameter("gravitational parameter", mu, "must be positive")
	}
	if !(maxStep > 0) {
		return r, v, invalidParameter("maximum step", maxStep, "must be positive")
	}
	if !finite(dt) {
		return r, v, invalidParameter("time step", dt, "must be finite")
	}
	if dt == 0 {
		return r0, v0, nil
	}
	steps := uint64(math.Ceil(math.Abs(dt) / maxStep))
	step := math.Abs(dt) / float64(steps)
	// Backward propagation integrates the time reversed system, i.e. with negated velocities.
	sgn := math.Copysign(1, dt)
	sys := &twoBody{
		μ:     mu,
		steps: steps,
		state: []float64{r0.X, r0.Y, r0.Z, sgn * v0.X, sgn * v0.Y, sgn * v0.Z},
	}
	if _, _, err = integrator.NewRK4(0, step, sys).Solve(); err != nil {
		return r, v, err
	}
	s := sys.state
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}, r3.Vec{X: sgn * s[3], Y: sgn * s[4], Z: sgn * s[5]}, nil
}
