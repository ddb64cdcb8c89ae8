package models

import (
	"math"

	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

// Unicycle is the kinematic model of a differential-drive base. The state is
// [x, y, θ] and the input is [v, ω]. Non-zero limits saturate the input.
type Unicycle struct {
	MaxV     float64
	MaxOmega float64
}

var _ sim.Plant = (*Unicycle)(nil)

func NewUnicycle() *Unicycle {
	return &Unicycle{}
}

// NewTurtleBot returns a unicycle with the speed limits of a TurtleBot3 Burger.
func NewTurtleBot() *Unicycle {
	return &Unicycle{MaxV: 0.22, MaxOmega: 2.84}
}

func (m *Unicycle) StateDim() int   { return 3 }
func (m *Unicycle) ControlDim() int { return 2 }

func (m *Unicycle) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	var v, om float64
	if len(u) >= 2 {
		v = saturate(u[0], m.MaxV)
		om = saturate(u[1], m.MaxOmega)
	}
	sin, cos := math.Sincos(x[2])
	return sim.State{v * cos, v * sin, om}
}

func (m *Unicycle) Pose(x sim.State) robot.Pose {
	return robot.Pose{X: x[0], Y: x[1], Theta: robot.WrapAngle(x[2])}
}

func (m *Unicycle) State(p robot.Pose) sim.State {
	return sim.State{p.X, p.Y, p.Theta}
}

func (m *Unicycle) Control(cmd robot.Command) sim.Control {
	return sim.Control{cmd.V, cmd.Omega}
}

func saturate(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	return math.Max(-limit, math.Min(v, limit))
}
