package config

import (
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/occupancy"
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

const (
	DefaultModel         = "turtlebot"
	DefaultIntegrator    = "rk4"
	DefaultMapResolution = 0.05
	DefaultMapSize       = 12.0
)

// Goal is a navigation request issued At seconds into the run.
type Goal struct {
	At   float64    `yaml:"at"`
	Pose robot.Pose `yaml:",inline"`
}

// MapChange adds obstacles to the published map At seconds into the run.
type MapChange struct {
	At  float64              `yaml:"at"`
	Add []occupancy.Obstacle `yaml:"add"`
}

type Config struct {
	Name       string           `yaml:"name"`
	Model      string           `yaml:"model"`
	Integrator string           `yaml:"integrator"`
	Sim        sim.Config       `yaml:"sim"`
	Start      robot.Pose       `yaml:"start"`
	Goals      []Goal           `yaml:"goals"`
	Map        occupancy.Layout `yaml:"map"`
	// MapDelay is when the first map is published.
	MapDelay   float64     `yaml:"map_delay"`
	MapChanges []MapChange `yaml:"map_changes"`
	Nav        nav.Config  `yaml:"nav"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Sim:        sim.DefaultConfig(),
		Goals:      []Goal{{Pose: robot.Pose{X: 4}}},
		Map:        DefaultLayout(),
		Nav:        nav.DefaultConfig(),
	}
}

// DefaultLayout is an empty square map centred on the origin.
func DefaultLayout() occupancy.Layout {
	return occupancy.Layout{
		Resolution: DefaultMapResolution,
		Origin:     r2.Point{X: -DefaultMapSize / 2, Y: -DefaultMapSize / 2},
		Width:      DefaultMapSize,
		Height:     DefaultMapSize,
		WindowSize: occupancy.DefaultWindowSize,
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Model == "" {
		err = multierr.Append(err, errors.New("model is required"))
	}
	if c.Integrator == "" {
		err = multierr.Append(err, errors.New("integrator is required"))
	}
	if len(c.Goals) == 0 {
		err = multierr.Append(err, errors.New("at least one goal is required"))
	}
	if !c.Start.IsValid() {
		err = multierr.Append(err, errors.Errorf("invalid start pose %v", c.Start))
	}
	for i, g := range c.Goals {
		if g.At < 0 || !g.Pose.IsValid() {
			err = multierr.Append(err, errors.Errorf("goal %d: invalid time %g or pose %v", i, g.At, g.Pose))
		}
	}
	for i, m := range c.MapChanges {
		if m.At < 0 {
			err = multierr.Append(err, errors.Errorf("map change %d: negative time %g", i, m.At))
		}
	}
	if c.MapDelay < 0 || math.IsNaN(c.MapDelay) {
		err = multierr.Append(err, errors.Errorf("map_delay must not be negative, got %g", c.MapDelay))
	}
	err = multierr.Append(err, errors.Wrap(c.Sim.Validate(), "sim"))
	err = multierr.Append(err, errors.Wrap(c.Map.Validate(), "map"))
	return multierr.Append(err, errors.Wrap(c.Nav.Validate(), "nav"))
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Goals = append([]Goal(nil), c.Goals...)
	out.Map.Obstacles = append([]occupancy.Obstacle(nil), c.Map.Obstacles...)
	out.Map.Unknown = append([]occupancy.Obstacle(nil), c.Map.Unknown...)
	out.MapChanges = make([]MapChange, len(c.MapChanges))
	for i, m := range c.MapChanges {
		out.MapChanges[i] = MapChange{At: m.At, Add: append([]occupancy.Obstacle(nil), m.Add...)}
	}
	return &out
}
