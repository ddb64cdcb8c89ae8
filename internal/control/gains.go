package control

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	DefaultKp   = 2.0
	DefaultKpx  = 2.0
	DefaultKdx  = 2.0
	DefaultKpy  = 2.0
	DefaultKdy  = 2.0
	DefaultVMin = 1e-4
)

// Gains holds the controller tuning.
type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"` // heading

	Kpx float64 `yaml:"kpx" json:"kpx"`
	Kdx float64 `yaml:"kdx" json:"kdx"`
	Kpy float64 `yaml:"kpy" json:"kpy"`
	Kdy float64 `yaml:"kdy" json:"kdy"`

	// VMin floors the previous speed inside the decoupling transform.
	VMin float64 `yaml:"v_min" json:"v_min"`
}

func DefaultGains() Gains {
	return Gains{
		Kp:   DefaultKp,
		Kpx:  DefaultKpx,
		Kdx:  DefaultKdx,
		Kpy:  DefaultKpy,
		Kdy:  DefaultKdy,
		VMin: DefaultVMin,
	}
}

// Validate reports every out-of-range gain.
func (g Gains) Validate() error {
	var err error
	if g.Kp < 0 {
		err = multierr.Append(err, errors.Errorf("kp must be non-negative, got %g", g.Kp))
	}
	for name, v := range map[string]float64{"kpx": g.Kpx, "kdx": g.Kdx, "kpy": g.Kpy, "kdy": g.Kdy} {
		if v < 0 {
			err = multierr.Append(err, errors.Errorf("%s must be non-negative, got %g", name, v))
		}
	}
	if !(g.VMin > 0) {
		err = multierr.Append(err, errors.Errorf("v_min must be positive, got %g", g.VMin))
	}
	return err
}

// GetParams returns tunable parameters by name.
func (g Gains) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":    g.Kp,
		"kpx":   g.Kpx,
		"kdx":   g.Kdx,
		"kpy":   g.Kpy,
		"kdy":   g.Kdy,
		"v_min": g.VMin,
	}
}

// SetParam adjusts a parameter by the name used in GetParams.
func (g *Gains) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		g.Kp = value
	case "kpx":
		g.Kpx = value
	case "kdx":
		g.Kdx = value
	case "kpy":
		g.Kpy = value
	case "kdy":
		g.Kdy = value
	case "v_min":
		g.VMin = value
	default:
		return errors.Errorf("unknown gain %q", name)
	}
	return nil
}
