package trajectory

import (
	"iter"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/navsim/internal/robot"
)

// Plan is a time-parameterized reference trajectory fitted to a discrete path.
//
// A Plan is immutable. Replanning builds a new one.
type Plan struct {
	waypoints []r2.Point
	knots     []r2.Point // distinct waypoints, one per time stamp
	times     []float64
	x, y      *Spline
	duration  float64
}

// New fits a plan to waypoints traversed at the constant nominal speed vMax.
//
// Each distinct waypoint is stamped with its cumulative arc length divided by vMax, then
// x(t) and y(t) are fitted independently. Consecutive duplicate waypoints are collapsed
// before fitting.
func New(waypoints []r2.Point, vMax float64) (*Plan, error) {
	if len(waypoints) < MinWaypoints {
		return nil, errors.Wrapf(ErrTooFewWaypoints, "got %d", len(waypoints))
	}
	if !(vMax > 0) {
		return nil, errors.Wrapf(ErrInvalidSpeed, "got %g", vMax)
	}

	distinct := make([]r2.Point, 0, len(waypoints))
	distinct = append(distinct, waypoints[0])
	segments := make([]float64, 0, len(waypoints)-1)
	for _, p := range waypoints[1:] {
		d := robot.Distance(distinct[len(distinct)-1], p)
		if d == 0 {
			continue
		}
		distinct = append(distinct, p)
		segments = append(segments, d)
	}

	total := floats.Sum(segments)
	if total == 0 {
		return nil, ErrZeroLength
	}
	if len(distinct) < MinWaypoints {
		return nil, errors.Wrapf(ErrTooFewWaypoints, "%d distinct of %d", len(distinct), len(waypoints))
	}

	times := make([]float64, len(distinct))
	floats.CumSum(times[1:], segments)
	floats.Scale(1/vMax, times)

	xs := make([]float64, len(distinct))
	ys := make([]float64, len(distinct))
	for i, p := range distinct {
		xs[i], ys[i] = p.X, p.Y
	}

	sx, err := NewSpline(times, xs)
	if err != nil {
		return nil, errors.Wrap(err, "fitting x")
	}
	sy, err := NewSpline(times, ys)
	if err != nil {
		return nil, errors.Wrap(err, "fitting y")
	}

	return &Plan{
		waypoints: append([]r2.Point(nil), waypoints...),
		knots:     distinct,
		times:     times,
		x:         sx,
		y:         sy,
		duration:  times[len(times)-1],
	}, nil
}

// Duration is the total traversal time in seconds.
func (p *Plan) Duration() float64 { return p.duration }

// Waypoints returns a copy of the raw path the plan was built from.
func (p *Plan) Waypoints() []r2.Point {
	return append([]r2.Point(nil), p.waypoints...)
}

// Times returns the time stamp of each distinct waypoint.
func (p *Plan) Times() []float64 {
	return append([]float64(nil), p.times...)
}

func (p *Plan) clamp(t float64) float64 {
	return math.Max(0, math.Min(t, p.duration))
}

// Sample returns position, velocity and acceleration at t. Query time is clamped to
// [0, Duration].
func (p *Plan) Sample(t float64) (pos, vel, acc r2.Point) {
	t = p.clamp(t)
	pos = r2.Point{X: p.x.Eval(t), Y: p.y.Eval(t)}
	vel = r2.Point{X: p.x.Derivative(t), Y: p.y.Derivative(t)}
	acc = r2.Point{X: p.x.SecondDerivative(t), Y: p.y.SecondDerivative(t)}
	return pos, vel, acc
}

// DesiredState is the reference pose at t, heading along the direction of travel.
func (p *Plan) DesiredState(t float64) robot.Pose {
	pos, vel, _ := p.Sample(t)
	return robot.NewPose(pos, math.Atan2(vel.Y, vel.X))
}

// SampledPath yields the smoothed curve at uniform time steps in [0, Duration).
func (p *Plan) SampledPath(step float64) iter.Seq[r2.Point] {
	return func(yield func(r2.Point) bool) {
		if !(step > 0) {
			return
		}
		for i := 0; ; i++ {
			t := float64(i) * step
			if t >= p.duration {
				return
			}
			if !yield(r2.Point{X: p.x.Eval(t), Y: p.y.Eval(t)}) {
				return
			}
		}
	}
}

// UpcomingWaypoints returns the fitted waypoints after the start whose time stamp is at
// or after t.
func (p *Plan) UpcomingWaypoints(t float64) []r2.Point {
	out := make([]r2.Point, 0, len(p.times))
	for i := 1; i < len(p.times); i++ {
		if p.times[i] >= t {
			out = append(out, p.knots[i])
		}
	}
	return out
}
