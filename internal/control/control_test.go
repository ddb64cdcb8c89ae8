package control

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.uber.org/multierr"

	"github.com/san-kum/navsim/internal/robot"
)

func TestHeadingZeroAtTarget(t *testing.T) {
	h := NewHeading(DefaultKp)
	for _, theta := range []float64{0, 1, -2.5, math.Pi} {
		cmd := h.Compute(theta, theta)
		if cmd.Omega != 0 || cmd.V != 0 {
			t.Errorf("theta=%f: expected zero command, got %v", theta, cmd)
		}
	}
}

func TestHeadingTurnsShortestWay(t *testing.T) {
	h := NewHeading(1.0)
	tests := []struct {
		name            string
		current, target float64 // degrees
		want            float64 // degrees
	}{
		{"small left", 0, 10, 10},
		{"small right", 10, 0, -10},
		{"across +180", 179, -179, 2},
		{"across -180", -179, 179, -2},
		{"large left", -90, 80, 170},
		{"large right wraps", -90, 100, -170},
		{"wound up", 720, 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := h.Compute(robot.DegToRad(tt.current), robot.DegToRad(tt.target))
			got := robot.RadToDeg(cmd.Omega)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f deg/s, got %f", tt.want, got)
			}
			if math.Signbit(cmd.Omega) != math.Signbit(tt.want) {
				t.Errorf("wrong turn direction: %f", got)
			}
			if cmd.V != 0 {
				t.Errorf("heading controller must not command speed, got %f", cmd.V)
			}
		})
	}
}

type stationary struct{ p r2.Point }

func (s stationary) Sample(float64) (r2.Point, r2.Point, r2.Point) {
	return s.p, r2.Point{}, r2.Point{}
}

type line struct{ v float64 }

func (l line) Sample(t float64) (r2.Point, r2.Point, r2.Point) {
	return r2.Point{X: l.v * t}, r2.Point{X: l.v}, r2.Point{}
}

func TestTrackerSteadyState(t *testing.T) {
	g := DefaultGains()
	tr := NewTracker(g)
	ref := stationary{p: r2.Point{X: 1, Y: 2}}
	pose := robot.Pose{X: 1, Y: 2}

	tr.state.V = g.VMin
	cmd := tr.Compute(pose, ref, 0.1)

	st := tr.State()
	if math.Abs(st.Accel) > 1e-3 {
		t.Errorf("expected near-zero acceleration, got %f", st.Accel)
	}
	if math.Abs(cmd.Omega) > 1e-9 {
		t.Errorf("expected zero angular rate, got %f", cmd.Omega)
	}
	if math.Abs(cmd.V-g.VMin) > 1e-9 {
		t.Errorf("speed should stay at the floor on the first call, got %f", cmd.V)
	}
}

func TestTrackerFirstCallIsPureFeedback(t *testing.T) {
	tr := NewTracker(DefaultGains())
	ref := line{v: 0.5}

	cmd := tr.Compute(robot.Pose{}, ref, 0)
	if math.IsNaN(cmd.V) || math.IsNaN(cmd.Omega) || math.IsInf(cmd.Omega, 0) {
		t.Fatalf("first call produced %v", cmd)
	}
	if cmd.V != DefaultVMin {
		t.Errorf("first call must not integrate, got V=%f", cmd.V)
	}

	tr.Reset()
	cmd = tr.Compute(robot.Pose{}, ref, 3)
	if cmd.V != DefaultVMin {
		t.Errorf("first call after reset at t=3 must not integrate, got V=%f", cmd.V)
	}
}

func TestTrackerIntegratesAcceleration(t *testing.T) {
	g := DefaultGains()
	tr := NewTracker(g)
	ref := line{v: 0.5}

	tr.Compute(robot.Pose{}, ref, 0)
	first := tr.State()

	cmd := tr.Compute(robot.Pose{}, ref, 0.1)
	st := tr.State()

	want := math.Max(first.V, g.VMin) + st.Accel*0.1
	if math.Abs(cmd.V-want) > 1e-12 {
		t.Errorf("expected V=%f, got %f", want, cmd.V)
	}
	if cmd.V <= first.V {
		t.Errorf("robot behind a moving reference should speed up: %f -> %f", first.V, cmd.V)
	}
	if st.T != 0.1 {
		t.Errorf("expected stored time 0.1, got %f", st.T)
	}
}

func TestTrackerTurnsTowardLateralError(t *testing.T) {
	tr := NewTracker(DefaultGains())
	tr.Compute(robot.Pose{}, stationary{p: r2.Point{X: 0, Y: 1}}, 0)
	if tr.State().Omega <= 0 {
		t.Errorf("target to the left should give positive omega, got %f", tr.State().Omega)
	}
}

func TestTrackerDeterministic(t *testing.T) {
	run := func() []robot.Command {
		tr := NewTracker(DefaultGains())
		ref := line{v: 0.3}
		pose := robot.Pose{X: -0.1, Y: 0.05, Theta: 0.2}
		out := make([]robot.Command, 0, 20)
		for i := 0; i < 20; i++ {
			out = append(out, tr.Compute(pose, ref, float64(i)*0.05))
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(DefaultGains())
	tr.Compute(robot.Pose{}, line{v: 1}, 0)
	tr.Compute(robot.Pose{}, line{v: 1}, 0.5)

	tr.Reset()
	if tr.State() != (TrackingState{}) {
		t.Errorf("expected zero state after reset, got %+v", tr.State())
	}
}

func TestGainsValidate(t *testing.T) {
	if err := DefaultGains().Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}

	g := DefaultGains()
	g.Kpx = -1
	g.VMin = 0
	err := g.Validate()
	if len(multierr.Errors(err)) != 2 {
		t.Errorf("expected 2 errors, got %v", err)
	}
}

func TestGainsSetParam(t *testing.T) {
	g := DefaultGains()
	for name := range g.GetParams() {
		if err := g.SetParam(name, 7); err != nil {
			t.Errorf("SetParam(%s): %v", name, err)
		}
	}
	for name, v := range g.GetParams() {
		if v != 7 {
			t.Errorf("%s = %f, want 7", name, v)
		}
	}
	if err := g.SetParam("ki", 1); err == nil {
		t.Error("expected error for unknown gain")
	}
}
