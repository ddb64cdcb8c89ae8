package sim

import (
	"context"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/robot"
)

// Simulator closes the loop between a navigation controller and a plant on a mock clock.
// It doubles as the controller's publisher. A Simulator is not safe for concurrent use.
type Simulator struct {
	plant      Plant
	integrator Integrator
	cfg        Config
	clk        *clock.Mock
	logger     *zap.SugaredLogger

	ctrl      nav.Controller
	metrics   []Metric
	observers []Observer
	events    []Event

	x       State
	step    int
	steps   int
	next    int
	cmd     robot.Command
	occ     nav.Occupancy
	started bool
	done    bool
	result  *Result
}

var _ nav.Publisher = (*Simulator)(nil)

// New builds a simulator starting the plant at start.
func New(plant Plant, integrator Integrator, cfg Config, start robot.Pose, logger *zap.SugaredLogger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	x := plant.State(start)
	if len(x) != plant.StateDim() {
		return nil, errors.Wrapf(ErrDimension, "got %d, want %d", len(x), plant.StateDim())
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	s := &Simulator{
		plant:      plant,
		integrator: integrator,
		cfg:        cfg,
		clk:        clock.NewMock(),
		logger:     logger,
		x:          x,
		steps:      int(cfg.Duration/cfg.Dt + 1e-9),
	}
	s.result = &Result{
		Times:       make([]float64, 0, s.steps+1),
		States:      make([]State, 0, s.steps+1),
		Controls:    make([]Control, 0, s.steps),
		Modes:       make([]nav.Mode, 0, s.steps+1),
		Metrics:     make(map[string]float64),
		ArrivalTime: -1,
	}
	return s, nil
}

// Clock is the simulated clock the controller must use.
func (s *Simulator) Clock() clock.Clock { return s.clk }

// Attach sets the controller driven by the simulator.
func (s *Simulator) Attach(ctrl nav.Controller) { s.ctrl = ctrl }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Schedule queues events; they are delivered in time order before the control period in
// which they fall due.
func (s *Simulator) Schedule(events ...Event) {
	s.events = append(s.events, events...)
	pending := s.events[s.next:]
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].At < pending[j].At })
}

func (s *Simulator) Config() Config             { return s.cfg }
func (s *Simulator) Time() float64              { return float64(s.step) * s.cfg.Dt }
func (s *Simulator) Pose() robot.Pose           { return s.plant.Pose(s.x) }
func (s *Simulator) Command() robot.Command     { return s.cmd }
func (s *Simulator) Occupancy() nav.Occupancy   { return s.occ }
func (s *Simulator) Controller() nav.Controller { return s.ctrl }
func (s *Simulator) Done() bool                 { return s.done }
func (s *Simulator) Result() *Result            { return s.result }

func (s *Simulator) PublishCommand(cmd robot.Command) { s.cmd = cmd }

func (s *Simulator) PublishNavSuccess(ok bool) {
	s.result.NavResults = append(s.result.NavResults, ok)
	if ok && s.result.ArrivalTime < 0 {
		s.result.ArrivalTime = s.Time()
	}
	s.logger.Debugw("navigation outcome", "success", ok, "t", s.Time())
}

func (s *Simulator) PublishPlannedPath(path []r2.Point)  { s.result.Planned = path }
func (s *Simulator) PublishSmoothedPath(path []r2.Point) { s.result.Smoothed = path }

// Step advances one control period. It reports whether more steps remain.
func (s *Simulator) Step() (bool, error) {
	if s.ctrl == nil {
		return false, ErrNoController
	}
	if s.done {
		return false, nil
	}
	if !s.started {
		s.begin()
	}

	s.deliverEvents()

	t := s.Time()
	pose := s.plant.Pose(s.x)
	if cmd, ok := s.ctrl.Tick(pose); ok {
		s.cmd = cmd
	}
	u := s.plant.Control(s.cmd)

	sample := s.sample(t, pose)
	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnStep(sample)
	}

	newX := s.integrator.Step(s.plant, s.x, u, t, s.cfg.Dt)
	if s.cfg.ValidateState && !newX.IsValid() {
		err := errors.Wrap(ErrInvalidState, SimError{Time: t, Step: s.step, Message: "plant diverged"}.Error())
		s.result.Errors = append(s.result.Errors, err)
		s.finish()
		return false, err
	}

	s.x = newX
	s.step++
	s.clk.Add(time.Duration(s.cfg.Dt * float64(time.Second)))
	s.record(u)

	if s.finished() {
		s.finish()
	}
	return !s.done, nil
}

// Run steps until the configured duration elapses, the run ends on arrival or ctx is
// done.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	for {
		select {
		case <-ctx.Done():
			s.finish()
			return s.result, ctx.Err()
		default:
		}

		more, err := s.Step()
		if err != nil {
			return s.result, err
		}
		if !more {
			return s.result, nil
		}
	}
}

func (s *Simulator) begin() {
	s.started = true
	for _, m := range s.metrics {
		m.Reset()
	}
	s.result.Times = append(s.result.Times, 0)
	s.result.States = append(s.result.States, s.x.Clone())
	s.result.Modes = append(s.result.Modes, s.ctrl.Mode())
}

func (s *Simulator) deliverEvents() {
	now := s.Time() + 1e-9
	for s.next < len(s.events) && s.events[s.next].At <= now {
		ev := s.events[s.next]
		s.next++
		s.ctrl.SetPose(s.plant.Pose(s.x))
		switch {
		case ev.Map != nil:
			s.occ = ev.Map
			s.logger.Debugw("delivering map", "t", s.Time())
			s.ctrl.HandleMap(ev.Map)
		case ev.Goal != nil:
			s.logger.Debugw("delivering goal", "t", s.Time(), "goal", *ev.Goal)
			s.ctrl.HandleGoal(*ev.Goal)
		}
	}
}

func (s *Simulator) sample(t float64, pose robot.Pose) Sample {
	sample := Sample{T: t, Pose: pose, Cmd: s.cmd, Mode: s.ctrl.Mode()}
	if ps, ok := s.ctrl.(PlanSource); ok {
		if ref, ok := ps.TrackingReference(); ok {
			sample.Reference = &ref
		}
	}
	if c, ok := s.occ.(Collider); ok {
		sample.Collision = c.Occupied(pose.Position())
	}
	return sample
}

func (s *Simulator) record(u Control) {
	s.result.Times = append(s.result.Times, s.Time())
	s.result.States = append(s.result.States, s.x.Clone())
	s.result.Controls = append(s.result.Controls, u)
	s.result.Modes = append(s.result.Modes, s.ctrl.Mode())
	s.result.StepsTaken = s.step
}

func (s *Simulator) finished() bool {
	if s.step >= s.steps {
		return true
	}
	return s.cfg.StopOnArrival &&
		s.result.ArrivalTime >= 0 &&
		s.next >= len(s.events) &&
		s.ctrl.Mode() == nav.ModeIdle &&
		!s.ctrl.CanComputeControl()
}

func (s *Simulator) finish() {
	if s.done {
		return
	}
	s.done = true
	for _, m := range s.metrics {
		s.result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Infow("simulation finished",
		"steps", s.step,
		"t", s.Time(),
		"reached", s.result.Reached(),
		"errors", len(s.result.Errors),
	)
}
