package optim

import (
	"context"
	"maps"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/sim"
)

var ErrNoCandidate = errors.New("no candidate reached the goal")

// Builder creates the experiment evaluated for one parameter set.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// WithWorkers caps the number of concurrent runs. Zero means unlimited.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	g.workers = n
	return g
}

// Candidates enumerates every combination of the parameter ranges.
func (g *GridSearch) Candidates() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[name] = val
		g.enumerate(depth+1, next, out)
	}
}

// Search runs every candidate and returns the parameters minimising metricName. Runs
// that do not reach the goal score +Inf.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, math.Inf(1), errors.Errorf("got %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	candidates := g.Candidates()
	sims := make([]*sim.Simulator, len(candidates))
	for i, params := range candidates {
		exp, err := build(params)
		if err != nil {
			return nil, math.Inf(1), errors.Wrapf(err, "candidate %v", params)
		}
		if err := exp.Setup(); err != nil {
			return nil, math.Inf(1), errors.Wrapf(err, "candidate %v", params)
		}
		sims[i] = exp.Simulator()
	}

	results, err := sim.RunAll(ctx, sims, g.workers)
	if err != nil {
		return nil, math.Inf(1), err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, res := range results {
		if score := Score(res, metricName); score < best {
			best = score
			bestParams = candidates[i]
		}
	}
	if bestParams == nil {
		return nil, best, ErrNoCandidate
	}
	return bestParams, best, nil
}

// Score is the metric value of a successful run, or +Inf.
func Score(res *sim.Result, metricName string) float64 {
	if !res.Reached() {
		return math.Inf(1)
	}
	v, ok := res.Metrics[metricName]
	if !ok || math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// GainBuilder evaluates controller gains on copies of base.
func GainBuilder(base *config.Config, registry *experiment.Registry, logger *zap.SugaredLogger) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := cfg.Nav.Gains.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.New(cfg, registry, logger), nil
	}
}
