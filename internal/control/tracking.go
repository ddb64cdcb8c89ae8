package control

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/san-kum/navsim/internal/robot"
)

// Reference is a time-indexed trajectory with two derivatives.
type Reference interface {
	Sample(t float64) (pos, vel, acc r2.Point)
}

// TrackingState is the running state a Tracker carries between calls.
type TrackingState struct {
	V     float64 // last commanded speed
	Omega float64 // last commanded angular rate
	Accel float64 // last forward acceleration
	T     float64 // last query time
}

// Tracker is a feedback-linearization controller for a unicycle.
//
// The virtual inputs
//
//	u1 = ẍd + kpx (xd - x) + kdx (ẋd - V cos θ)
//	u2 = ÿd + kpy (yd - y) + kdy (ẏd - V sin θ)
//
// are rotated into the body frame to give a forward acceleration and an angular rate.
// The commanded speed is the integral of that acceleration.
type Tracker struct {
	Gains Gains
	state TrackingState
	first bool
}

func NewTracker(g Gains) *Tracker {
	return &Tracker{Gains: g, first: true}
}

// Reset clears the running state. Call it whenever a new reference is accepted.
func (c *Tracker) Reset() {
	c.state = TrackingState{}
	c.first = true
}

// State returns the running state after the last call.
func (c *Tracker) State() TrackingState {
	return c.state
}

// Compute returns the command tracking ref at time t from the given pose.
func (c *Tracker) Compute(pose robot.Pose, ref Reference, t float64) robot.Command {
	dt := t - c.state.T
	if c.first || dt < 0 {
		dt = 0
	}

	pd, vd, ad := ref.Sample(t)

	sin, cos := math.Sincos(pose.Theta)
	ex := pd.X - pose.X
	ey := pd.Y - pose.Y
	exDot := vd.X - c.state.V*cos
	eyDot := vd.Y - c.state.V*sin

	u1 := ad.X + c.Gains.Kpx*ex + c.Gains.Kdx*exDot
	u2 := ad.Y + c.Gains.Kpy*ey + c.Gains.Kdy*eyDot

	vPrev := math.Max(c.state.V, c.Gains.VMin)

	a := cos*u1 + sin*u2
	om := (-sin*u1 + cos*u2) / vPrev

	v := vPrev + a*dt

	c.state = TrackingState{V: v, Omega: om, Accel: a, T: t}
	c.first = false

	return robot.Command{V: v, Omega: om}
}
