package sim

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/robot"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// Dynamics is a continuous-time plant.
type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Plant maps between the robot's view of the world and a plant state vector.
type Plant interface {
	Dynamics
	Pose(x State) robot.Pose
	State(p robot.Pose) State
	Control(cmd robot.Command) Control
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Sample is what metrics and observers see after each control period.
type Sample struct {
	T         float64
	Pose      robot.Pose
	Cmd       robot.Command
	Mode      nav.Mode
	Reference *robot.Pose // desired pose while tracking, nil otherwise
	Collision bool        // robot centre in an occupied cell
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// Collider is implemented by maps that can answer exact cell occupancy.
type Collider interface {
	Occupied(p r2.Point) bool
}

// PlanSource exposes the active reference of a controller. The navigator implements it.
type PlanSource interface {
	TrackingReference() (robot.Pose, bool)
}

type Config struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	// StopOnArrival ends the run once the goal was reached, the controller is idle and no
	// events remain.
	StopOnArrival bool `yaml:"stop_on_arrival"`
	ValidateState bool `yaml:"validate_state"`
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Duration:      120,
		StopOnArrival: true,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	var err error
	if !(c.Dt > 0) {
		err = multierr.Append(err, errors.Errorf("dt must be positive, got %g", c.Dt))
	}
	if !(c.Duration > 0) {
		err = multierr.Append(err, errors.Errorf("duration must be positive, got %g", c.Duration))
	}
	return err
}

// Event is delivered to the controller once simulated time reaches At. Exactly one of
// Goal and Map is set.
type Event struct {
	At   float64
	Goal *robot.Pose
	Map  nav.Occupancy
}

func GoalEvent(at float64, goal robot.Pose) Event  { return Event{At: at, Goal: &goal} }
func MapEvent(at float64, occ nav.Occupancy) Event { return Event{At: at, Map: occ} }

type Result struct {
	Times    []float64
	States   []State
	Controls []Control
	Modes    []nav.Mode
	Metrics  map[string]float64

	// NavResults holds every navigation outcome the controller published, in order.
	NavResults []bool
	// ArrivalTime is the time of the first successful outcome, or -1.
	ArrivalTime float64
	Planned     []r2.Point // last raw plan
	Smoothed    []r2.Point // last smoothed plan
	StepsTaken  int
	Errors      []error
}

// Reached reports whether the last published outcome was a success.
func (r *Result) Reached() bool {
	return len(r.NavResults) > 0 && r.NavResults[len(r.NavResults)-1]
}

// Poses converts the recorded states with p.
func (r *Result) Poses(p Plant) []robot.Pose {
	out := make([]robot.Pose, len(r.States))
	for i, x := range r.States {
		out[i] = p.Pose(x)
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
