package nav

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/navsim/internal/robot"
)

// blockedMap is free everywhere except within 0.05 of a blocked point.
type blockedMap struct {
	blocked []r2.Point
}

func (m *blockedMap) IsFree(p r2.Point) bool {
	for _, b := range m.blocked {
		if robot.Distance(p, b) < 0.05 {
			return false
		}
	}
	return true
}

// scriptedSearcher returns its paths in order, repeating the last one.
type scriptedSearcher struct {
	paths [][]r2.Point
	err   error
	calls []r2.Point // start of each call
}

func (s *scriptedSearcher) Search(start, goal r2.Point, occ Occupancy, resolution float64, bounds r2.Rect) ([]r2.Point, error) {
	s.calls = append(s.calls, start)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.paths) == 0 {
		return nil, errors.New("no scripted path")
	}
	i := len(s.calls) - 1
	if i >= len(s.paths) {
		i = len(s.paths) - 1
	}
	return s.paths[i], nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	commands  []robot.Command
	successes []bool
	planned   [][]r2.Point
	smoothed  [][]r2.Point
}

func (p *recordingPublisher) PublishCommand(cmd robot.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, cmd)
}

func (p *recordingPublisher) PublishNavSuccess(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes = append(p.successes, ok)
}

func (p *recordingPublisher) PublishPlannedPath(path []r2.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.planned = append(p.planned, path)
}

func (p *recordingPublisher) PublishSmoothedPath(path []r2.Point) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.smoothed = append(p.smoothed, path)
}

func (p *recordingPublisher) Commands() []robot.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]robot.Command(nil), p.commands...)
}

func straightPath(from, to r2.Point, n int) []r2.Point {
	pts := make([]r2.Point, n)
	for i := range pts {
		f := float64(i) / float64(n-1)
		pts[i] = from.Add(to.Sub(from).Mul(f))
	}
	return pts
}

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

// Wheel limits of a TurtleBot3 Burger. The tracker's first command after ALIGN divides
// by VMin, so an unlimited plant would spin in place.
const (
	harnessMaxV     = 0.22
	harnessMaxOmega = 2.84
)

func saturate(v, limit float64) float64 {
	return math.Max(-limit, math.Min(v, limit))
}

// harness closes the loop between a navigator and a speed-limited unicycle on a mock
// clock.
type harness struct {
	nav   *Navigator
	clk   *clock.Mock
	pub   *recordingPublisher
	pose  robot.Pose
	cmd   robot.Command
	dt    time.Duration
	modes []Mode
}

func newHarness(cfg Config, searcher PathSearcher, pose robot.Pose) (*harness, *observer.ObservedLogs) {
	logger, logs := observedLogger()
	h := &harness{
		clk:  clock.NewMock(),
		pub:  &recordingPublisher{},
		pose: pose,
		dt:   100 * time.Millisecond,
	}
	h.nav = New(cfg, searcher, h.pub, h.clk, logger)
	h.nav.SetPose(pose)
	h.modes = []Mode{h.nav.Mode()}
	return h, logs
}

func (h *harness) record() {
	if m := h.nav.Mode(); m != h.modes[len(h.modes)-1] {
		h.modes = append(h.modes, m)
	}
}

// applyPublished makes the last command published outside a tick (the stop before
// planning) take effect.
func (h *harness) applyPublished() {
	h.pub.mu.Lock()
	defer h.pub.mu.Unlock()
	if len(h.pub.commands) > 0 {
		h.cmd = h.pub.commands[len(h.pub.commands)-1]
		h.pub.commands = nil
	}
}

// step ticks once and integrates the resulting command over dt.
func (h *harness) step() {
	h.applyPublished()
	cmd, ok := h.nav.Tick(h.pose)
	h.applyPublished()
	if ok {
		h.cmd = cmd
	}
	h.record()

	dt := h.dt.Seconds()
	v := saturate(h.cmd.V, harnessMaxV)
	omega := saturate(h.cmd.Omega, harnessMaxOmega)
	sin, cos := math.Sincos(h.pose.Theta)
	h.pose.X += v * cos * dt
	h.pose.Y += v * sin * dt
	h.pose.Theta = robot.WrapAngle(h.pose.Theta + omega*dt)
	h.nav.SetPose(h.pose)
	h.clk.Add(h.dt)
}

func (h *harness) goal(g robot.Pose) {
	h.nav.HandleGoal(g)
	h.record()
}

func (h *harness) runUntil(done func() bool, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if done() {
			return i
		}
		h.step()
	}
	return maxSteps
}
