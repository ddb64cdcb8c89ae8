package experiment

import (
	"maps"
	"slices"

	"github.com/pkg/errors"

	"github.com/san-kum/navsim/internal/integrators"
	"github.com/san-kum/navsim/internal/metrics"
	"github.com/san-kum/navsim/internal/models"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/sim"
)

var (
	ErrUnknownModel      = errors.New("unknown model")
	ErrUnknownIntegrator = errors.New("unknown integrator")
)

type Registry struct {
	models      map[string]func() sim.Plant
	integrators map[string]func() sim.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() sim.Plant),
		integrators: make(map[string]func() sim.Integrator),
	}

	r.models["unicycle"] = func() sim.Plant { return models.NewUnicycle() }
	r.models["turtlebot"] = func() sim.Plant { return models.NewTurtleBot() }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	return r
}

func (r *Registry) GetModel(name string) (sim.Plant, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownModel, name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return slices.Sorted(maps.Keys(r.models))
}

func (r *Registry) ListIntegrators() []string {
	return slices.Sorted(maps.Keys(r.integrators))
}

// DefaultMetrics returns fresh instances of every navigation metric.
func (r *Registry) DefaultMetrics(dt float64) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewControlEffort(metrics.DefaultWheelBase),
		metrics.NewPathLength(),
		metrics.NewTrackingError(),
		metrics.NewCollisions(),
	}
	for _, m := range []nav.Mode{nav.ModeIdle, nav.ModeAlign, nav.ModeTrack, nav.ModePark} {
		ms = append(ms, metrics.NewModeTime(m, dt))
	}
	return ms
}
