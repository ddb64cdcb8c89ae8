package metrics

import (
	"strings"

	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/sim"
)

// ModeTime is the simulated time spent in one navigation mode.
type ModeTime struct {
	mode  nav.Mode
	dt    float64
	total float64
}

func NewModeTime(mode nav.Mode, dt float64) *ModeTime {
	return &ModeTime{mode: mode, dt: dt}
}

func (m *ModeTime) Name() string { return "time_" + strings.ToLower(m.mode.String()) }

func (m *ModeTime) Observe(s sim.Sample) {
	if s.Mode == m.mode {
		m.total += m.dt
	}
}

func (m *ModeTime) Value() float64 { return m.total }
func (m *ModeTime) Reset()         { m.total = 0 }
