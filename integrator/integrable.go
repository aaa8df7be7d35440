package integrator

// Integrable defines something which can be integrated, i.e. has a state vector.
// Implementations manage their own state history, if any.
type Integrable interface {
	GetState() []float64                   // Latest state.
	SetState(i uint64, s []float64)        // Store the state s reached after step i.
	Stop(i uint64) bool                    // Whether to stop before step i.
	Func(t float64, s []float64) []float64 // Time derivative of the state s at t.
}
