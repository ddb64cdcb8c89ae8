package metrics

import (
	"github.com/golang/geo/r2"

	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

// PathLength is the distance the robot has travelled.
type PathLength struct {
	last   r2.Point
	seen   bool
	length float64
}

func NewPathLength() *PathLength {
	return &PathLength{}
}

func (p *PathLength) Name() string { return "path_length" }

func (p *PathLength) Observe(s sim.Sample) {
	pos := s.Pose.Position()
	if p.seen {
		p.length += robot.Distance(p.last, pos)
	}
	p.last = pos
	p.seen = true
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	*p = PathLength{}
}
