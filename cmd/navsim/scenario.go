package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/navsim/internal/config"
)

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "scenario file path (yaml)")
	f.String("model", config.DefaultModel, "robot model")
	f.String("integrator", config.DefaultIntegrator, "integrator")
	f.Float64("dt", 0.1, "control period and timestep")
	f.Float64("time", 120, "maximum duration")
	f.Float64("start-x", 0, "start x")
	f.Float64("start-y", 0, "start y")
	f.Float64("start-theta", 0, "start heading")
	f.Float64("goal-x", 4, "goal x")
	f.Float64("goal-y", 0, "goal y")
	f.Float64("goal-theta", 0, "goal heading")
	f.Float64("vmax", 0.2, "planned speed")
}

// loadScenario resolves the scenario of a command: a preset argument or --config file,
// else the defaults, then any flag set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	f := cmd.Flags()

	var cfg *config.Config
	path, _ := f.GetString("config")
	switch {
	case len(args) > 0 && path != "":
		return nil, errors.New("use either a preset or --config, not both")
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	case path != "":
		loaded, err := config.Load(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		cfg = loaded
	default:
		cfg = config.DefaultConfig()
	}

	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	num := func(name string, dst *float64) {
		if f.Changed(name) {
			*dst, _ = f.GetFloat64(name)
		}
	}

	str("model", &cfg.Model)
	str("integrator", &cfg.Integrator)
	num("dt", &cfg.Sim.Dt)
	num("time", &cfg.Sim.Duration)
	num("start-x", &cfg.Start.X)
	num("start-y", &cfg.Start.Y)
	num("start-theta", &cfg.Start.Theta)
	num("vmax", &cfg.Nav.VMax)

	if f.Changed("goal-x") || f.Changed("goal-y") || f.Changed("goal-theta") {
		goal := config.Goal{}
		if len(cfg.Goals) > 0 {
			goal = cfg.Goals[0]
		}
		num("goal-x", &goal.Pose.X)
		num("goal-y", &goal.Pose.Y)
		num("goal-theta", &goal.Pose.Theta)
		cfg.Goals = []config.Goal{goal}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseGrid reads name=v1,v2,... entries into parallel name and value lists.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, errors.Errorf("bad grid entry %q, want name=v1,v2", e)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "grid entry %q", e)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
