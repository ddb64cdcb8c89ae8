package nav

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/navsim/internal/control"
)

const (
	DefaultThetaStartThresh = 0.05
	DefaultPlanThresh       = 0.3
	DefaultNearThresh       = 0.1
	DefaultAtThreshTheta    = 0.02
	DefaultPlanResolution   = 0.1
	DefaultPlanHorizon      = 10.0
	DefaultVMax             = 0.2
	DefaultSmoothStep       = 0.1
)

// Config holds the navigator thresholds and controller gains.
type Config struct {
	ThetaStartThresh float64 `yaml:"theta_start_thresh"` // heading error that ends ALIGN
	PlanThresh       float64 `yaml:"plan_thresh"`        // drift that forces a replan
	NearThresh       float64 `yaml:"near_thresh"`        // distance that switches to PARK
	AtThreshTheta    float64 `yaml:"at_thresh_theta"`    // heading error that ends PARK
	PlanResolution   float64 `yaml:"plan_resolution"`
	PlanHorizon      float64 `yaml:"plan_horizon"`
	VMax             float64 `yaml:"v_max"`
	SmoothStep       float64 `yaml:"smooth_step"` // sampling step of the published smoothed path

	Gains control.Gains `yaml:"gains"`
}

func DefaultConfig() Config {
	return Config{
		ThetaStartThresh: DefaultThetaStartThresh,
		PlanThresh:       DefaultPlanThresh,
		NearThresh:       DefaultNearThresh,
		AtThreshTheta:    DefaultAtThreshTheta,
		PlanResolution:   DefaultPlanResolution,
		PlanHorizon:      DefaultPlanHorizon,
		VMax:             DefaultVMax,
		SmoothStep:       DefaultSmoothStep,
		Gains:            control.DefaultGains(),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var err error
	positive := []struct {
		name  string
		value float64
	}{
		{"theta_start_thresh", c.ThetaStartThresh},
		{"plan_thresh", c.PlanThresh},
		{"near_thresh", c.NearThresh},
		{"at_thresh_theta", c.AtThreshTheta},
		{"plan_resolution", c.PlanResolution},
		{"plan_horizon", c.PlanHorizon},
		{"v_max", c.VMax},
		{"smooth_step", c.SmoothStep},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			err = multierr.Append(err, errors.Errorf("%s must be positive, got %g", p.name, p.value))
		}
	}
	return multierr.Append(err, errors.Wrap(c.Gains.Validate(), "gains"))
}
