package metrics

import (
	"math"

	"github.com/san-kum/navsim/internal/sim"
)

// DefaultWheelBase is the wheel separation of a TurtleBot3 Burger, in meters.
const DefaultWheelBase = 0.16

// ControlEffort is the mean wheel speed magnitude of a differential drive executing
// the commands. An in-place turn costs wheelBase/2·|ω| per wheel, so turning and
// driving are measured in the same unit.
type ControlEffort struct {
	halfBase float64
	sum      float64
	samples  int
}

func NewControlEffort(wheelBase float64) *ControlEffort {
	return &ControlEffort{halfBase: wheelBase / 2}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(s sim.Sample) {
	turn := c.halfBase * s.Cmd.Omega
	left, right := s.Cmd.V-turn, s.Cmd.V+turn
	c.sum += (math.Abs(left) + math.Abs(right)) / 2
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
