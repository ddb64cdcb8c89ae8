package robot

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose is the planar state of a differential-drive robot.
type Pose struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Theta float64 `json:"theta" yaml:"theta"`
}

// NewPose builds a pose from a position and heading.
func NewPose(p r2.Point, theta float64) Pose {
	return Pose{X: p.X, Y: p.Y, Theta: theta}
}

// Position drops the heading.
func (p Pose) Position() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

func (p Pose) IsValid() bool {
	for _, v := range []float64{p.X, p.Y, p.Theta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Pose) String() string {
	return fmt.Sprintf("(x=%.3f, y=%.3f, theta=%.3f)", p.X, p.Y, p.Theta)
}

// Command is the velocity target for the base. The zero value stops the robot.
type Command struct {
	V     float64 `json:"v"`
	Omega float64 `json:"omega"`
}

// Stop is the zero-motion command.
var Stop = Command{}

func (c Command) IsZero() bool {
	return c.V == 0 && c.Omega == 0
}

func (c Command) String() string {
	return fmt.Sprintf("(v=%.3f, omega=%.3f)", c.V, c.Omega)
}
