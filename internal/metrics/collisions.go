package metrics

import "github.com/san-kum/navsim/internal/sim"

// Collisions counts the control periods the robot spent inside an occupied cell.
type Collisions struct {
	count int
}

func NewCollisions() *Collisions {
	return &Collisions{}
}

func (c *Collisions) Name() string { return "collisions" }

func (c *Collisions) Observe(s sim.Sample) {
	if s.Collision {
		c.count++
	}
}

func (c *Collisions) Value() float64 { return float64(c.count) }
func (c *Collisions) Reset()         { c.count = 0 }
