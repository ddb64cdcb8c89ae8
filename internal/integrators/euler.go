package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/navsim/internal/sim"
)

// Euler is the explicit first-order stepper x + dt·f(x, u, t). It holds no state and
// is safe to share between simulators.
type Euler struct{}

var _ sim.Integrator = Euler{}

func NewEuler() Euler { return Euler{} }

func (Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	next := make(sim.State, len(x))
	floats.AddScaledTo(next, x, dt, dyn.Derivative(x, u, t))
	return next
}
