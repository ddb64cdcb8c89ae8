package control

import "github.com/san-kum/navsim/internal/robot"

// Heading is a proportional controller that rotates the robot in place.
type Heading struct {
	Kp float64
}

func NewHeading(kp float64) Heading {
	return Heading{Kp: kp}
}

// Compute returns an angular rate proportional to the wrapped heading error. The linear
// speed is always zero.
func (h Heading) Compute(current, target float64) robot.Command {
	return robot.Command{Omega: h.Kp * robot.WrapAngle(target-current)}
}
