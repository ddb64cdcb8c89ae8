package experiment

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/astar"
	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/occupancy"
	"github.com/san-kum/navsim/internal/sim"
)

// Experiment wires one scenario: the rasterized map, the planner, the navigator and the
// simulator driving it.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *zap.SugaredLogger

	plant     sim.Plant
	grid      *occupancy.StochGrid
	navigator *nav.Navigator
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry, logger *zap.SugaredLogger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Experiment{cfg: cfg, registry: registry, logger: logger}
}

// Setup builds every component and schedules the scenario's events.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid scenario")
	}

	plant, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	integrator, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	grid, err := occupancy.Rasterize(e.cfg.Map)
	if err != nil {
		return errors.Wrap(err, "rasterizing map")
	}

	s, err := sim.New(plant, integrator, e.cfg.Sim, e.cfg.Start, e.logger.Named("sim"))
	if err != nil {
		return err
	}
	planner := astar.NewPlanner(e.logger.Named("astar"))
	navigator := nav.New(e.cfg.Nav, planner, s, s.Clock(), e.logger.Named("nav"))
	s.Attach(navigator)

	for _, m := range e.registry.DefaultMetrics(e.cfg.Sim.Dt) {
		s.AddMetric(m)
	}

	s.Schedule(sim.MapEvent(e.cfg.MapDelay, grid))
	for _, g := range e.cfg.Goals {
		s.Schedule(sim.GoalEvent(g.At, g.Pose))
	}
	s.Schedule(mapChanges(grid, e.cfg.MapChanges)...)

	e.plant = plant
	e.grid = grid
	e.navigator = navigator
	e.simulator = s
	return nil
}

// mapChanges turns the configured changes into cumulative map snapshots.
func mapChanges(base *occupancy.StochGrid, changes []config.MapChange) []sim.Event {
	changes = append([]config.MapChange(nil), changes...)
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].At < changes[j].At })

	events := make([]sim.Event, 0, len(changes))
	grid := base
	for _, c := range changes {
		grid = grid.WithObstacles(c.Add...)
		events = append(events, sim.MapEvent(c.At, grid))
	}
	return events
}

// Run sets the experiment up if needed and runs it to completion.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}
	e.logger.Infow("running scenario",
		"name", e.cfg.Name,
		"model", e.cfg.Model,
		"integrator", e.cfg.Integrator,
		"goals", len(e.cfg.Goals),
	)
	return e.simulator.Run(ctx)
}

func (e *Experiment) Config() *config.Config     { return e.cfg }
func (e *Experiment) Plant() sim.Plant           { return e.plant }
func (e *Experiment) Grid() *occupancy.StochGrid { return e.grid }
func (e *Experiment) Navigator() *nav.Navigator  { return e.navigator }
func (e *Experiment) Simulator() *sim.Simulator  { return e.simulator }
