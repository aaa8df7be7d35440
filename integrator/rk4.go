package integrator

import (
	"fmt"
	"math"
)

// RK4 is a fixed step fourth order Runge-Kutta integrator.
type RK4 struct {
	X0         float64    // Initial time.
	StepSize   float64    // Step size.
	Integrator Integrable // What is to be integrated.
}

// NewRK4 returns a new RK4 integrator starting at x0.
func NewRK4(x0 float64, stepSize float64, inte Integrable) *RK4 {
	if !(stepSize > 0) {
		panic("RK4 step size must be positive")
	}
	if inte == nil {
		panic("RK4 integrable may not be nil")
	}
	return &RK4{X0: x0, StepSize: stepSize, Integrator: inte}
}

// Solve integrates until the integrable asks to stop.
// Returns the number of steps performed and the final time, or an error if the state diverged.
func (r *RK4) Solve() (uint64, float64, error) {
	const (
		half     = 1 / 2.0
		oneSixth = 1 / 6.0
		oneThird = 1 / 3.0
	)

	h := r.StepSize
	xi := r.X0
	n := len(r.Integrator.GetState())
	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	tState := make([]float64, n)

	iterNum := uint64(0)
	for !r.Integrator.Stop(iterNum) {
		state := r.Integrator.GetState()
		for i, y := range r.Integrator.Func(xi, state) {
			k1[i] = y * h
			tState[i] = state[i] + k1[i]*half
		}
		for i, y := range r.Integrator.Func(xi+h*half, tState) {
			k2[i] = y * h
			tState[i] = state[i] + k2[i]*half
		}
		for i, y := range r.Integrator.Func(xi+h*half, tState) {
			k3[i] = y * h
			tState[i] = state[i] + k3[i]
		}
		newState := make([]float64, n)
		for i, y := range r.Integrator.Func(xi+h, tState) {
			newState[i] = state[i] + oneSixth*(k1[i]+y*h) + oneThird*(k2[i]+k3[i])
			if math.IsNaN(newState[i]) || math.IsInf(newState[i], 0) {
				return iterNum, xi, fmt.Errorf("integrator: state[%d] diverged at step %d (t = %g)", i, iterNum, xi)
			}
		}
		r.Integrator.SetState(iterNum, newState)

		xi += h
		iterNum++
	}
	return iterNum, xi, nil
}
