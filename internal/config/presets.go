package config

import (
	"maps"
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/san-kum/navsim/internal/occupancy"
	"github.com/san-kum/navsim/internal/robot"
)

var Presets = map[string]*Config{
	"straight": preset("straight", func(c *Config) {
		c.Goals = []Goal{{Pose: robot.Pose{X: 4, Theta: math.Pi / 2}}}
	}),
	"turnaround": preset("turnaround", func(c *Config) {
		c.Start = robot.Pose{Theta: math.Pi}
		c.Goals = []Goal{{Pose: robot.Pose{X: 3}}}
	}),
	"detour": preset("detour", func(c *Config) {
		c.Map.Obstacles = []occupancy.Obstacle{
			occupancy.Box(r2.Point{X: 1.5, Y: -1.5}, r2.Point{X: 2, Y: 1.5}),
		}
		c.Goals = []Goal{{Pose: robot.Pose{X: 4}}}
	}),
	"blocked": preset("blocked", func(c *Config) {
		c.Goals = []Goal{{Pose: robot.Pose{X: 4}}}
		c.MapChanges = []MapChange{{
			At:  5,
			Add: []occupancy.Obstacle{occupancy.Box(r2.Point{X: 2.3, Y: -0.4}, r2.Point{X: 2.7, Y: 0.4})},
		}}
	}),
	"unreachable": preset("unreachable", func(c *Config) {
		c.Map.Obstacles = []occupancy.Obstacle{
			occupancy.Box(r2.Point{X: 2, Y: -1}, r2.Point{X: 4, Y: -0.8}),
			occupancy.Box(r2.Point{X: 2, Y: 0.8}, r2.Point{X: 4, Y: 1}),
			occupancy.Box(r2.Point{X: 2, Y: -1}, r2.Point{X: 2.2, Y: 1}),
			occupancy.Box(r2.Point{X: 3.8, Y: -1}, r2.Point{X: 4, Y: 1}),
		}
		c.Goals = []Goal{{Pose: robot.Pose{X: 3}}}
		c.Sim.Duration = 10
	}),
	"late_map": preset("late_map", func(c *Config) {
		c.MapDelay = 2
		c.Goals = []Goal{{Pose: robot.Pose{X: 3, Y: 1}}}
	}),
	"tour": preset("tour", func(c *Config) {
		c.Goals = []Goal{
			{Pose: robot.Pose{X: 2, Y: 0, Theta: math.Pi / 2}},
			{At: 30, Pose: robot.Pose{X: 2, Y: 2, Theta: math.Pi}},
			{At: 60, Pose: robot.Pose{X: 0, Y: 2, Theta: -math.Pi / 2}},
		}
		c.Sim.Duration = 150
	}),
}

func preset(name string, edit func(*Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	edit(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
