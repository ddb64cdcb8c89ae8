package metrics

import (
	"math"

	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

// TrackingError is the RMS distance between the robot and the plan's desired position,
// over the periods in which a reference exists.
type TrackingError struct {
	sumSq   float64
	peak    float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{}
}

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(s sim.Sample) {
	if s.Reference == nil {
		return
	}
	d := robot.DistanceLinear(s.Pose, *s.Reference)
	e.sumSq += d * d
	e.peak = math.Max(e.peak, d)
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

// Peak is the largest error seen.
func (e *TrackingError) Peak() float64 { return e.peak }

func (e *TrackingError) Reset() {
	*e = TrackingError{}
}
