package nav

import (
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/control"
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/trajectory"
)

// stateHandler is the per-mode behavior of the navigator. next evaluates the exit
// conditions of the mode and returns the mode to run in this tick; command computes the
// output of that mode.
type stateHandler struct {
	next    func(n *Navigator) Mode
	command func(n *Navigator) robot.Command
}

var handlers = map[Mode]stateHandler{
	ModeIdle:  {next: (*Navigator).nextIdle, command: (*Navigator).commandIdle},
	ModeAlign: {next: (*Navigator).nextAlign, command: (*Navigator).commandAlign},
	ModeTrack: {next: (*Navigator).nextTrack, command: (*Navigator).commandTrack},
	ModePark:  {next: (*Navigator).nextPark, command: (*Navigator).commandPark},
}

// Navigator is the switching navigation controller.
type Navigator struct {
	cfg      Config
	searcher PathSearcher
	pub      Publisher
	clk      clock.Clock
	logger   *zap.SugaredLogger

	heading control.Heading

	mu          sync.Mutex
	mode        Mode
	planned     bool
	plan        *trajectory.Plan
	planStart   time.Time
	goal        *robot.Pose
	pendingGoal *robot.Pose // goal received before the first map
	occupancy   Occupancy
	pose        robot.Pose
	tracker     *control.Tracker
	lastErr     error
}

var _ Controller = (*Navigator)(nil)

// New builds a navigator in IDLE. A nil publisher discards outputs, a nil clock uses
// the wall clock and a nil logger discards logs.
func New(cfg Config, searcher PathSearcher, pub Publisher, clk clock.Clock, logger *zap.SugaredLogger) *Navigator {
	if pub == nil {
		pub = nopPublisher{}
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Navigator{
		cfg:       cfg,
		searcher:  searcher,
		pub:       pub,
		clk:       clk,
		logger:    logger,
		heading:   control.NewHeading(cfg.Gains.Kp),
		tracker:   control.NewTracker(cfg.Gains),
		planStart: clk.Now(),
	}
}

// Mode returns the active mode.
func (n *Navigator) Mode() Mode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// CanComputeControl reports whether planning succeeded for the active goal.
func (n *Navigator) CanComputeControl() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.planned
}

// Plan returns the active plan, or nil.
func (n *Navigator) Plan() *trajectory.Plan {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.plan
}

// Goal returns the active goal.
func (n *Navigator) Goal() (robot.Pose, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.goal == nil {
		return robot.Pose{}, false
	}
	return *n.goal, true
}

// LastError returns the most recent planning error, or nil after a successful plan.
func (n *Navigator) LastError() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastErr
}

// TrackingTime is the time in seconds since the plan started tracking, or zero outside
// TRACK.
func (n *Navigator) TrackingTime() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.trackingTime()
}

// TrackingState returns the tracker's running state.
func (n *Navigator) TrackingState() control.TrackingState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tracker.State()
}

// TrackingReference is the plan's desired pose at the current tracking time. It is
// only available in TRACK.
func (n *Navigator) TrackingReference() (robot.Pose, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.mode != ModeTrack || n.plan == nil || !n.planned {
		return robot.Pose{}, false
	}
	return n.plan.DesiredState(n.trackingTime()), true
}

// SetPose records the robot pose without running a control step. Planning in HandleGoal
// and HandleMap starts from the last recorded pose.
func (n *Navigator) SetPose(pose robot.Pose) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pose = pose
}

// Tick runs one control period. The boolean is false when no plan is available, in
// which case no command must be sent. A tick that ends the plan (parked, or a failed
// replan) publishes a stop instead of returning a command.
func (n *Navigator) Tick(pose robot.Pose) (robot.Command, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pose = pose
	if !n.planned {
		return robot.Stop, false
	}

	n.switchMode(handlers[n.mode].next(n))
	if !n.planned {
		n.pub.PublishCommand(robot.Stop)
		return robot.Stop, false
	}
	return handlers[n.mode].command(n), true
}

// HandleGoal replans toward goal.
func (n *Navigator) HandleGoal(goal robot.Pose) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.occupancy == nil {
		n.lastErr = ErrNoOccupancy
		n.pendingGoal = &goal
		n.logger.Warnw("unable to replan: occupancy map not yet available", "goal", goal)
		return
	}
	n.replan(goal, ReasonGoal)
}

// HandleMap installs a new occupancy snapshot. A goal held back for lack of a map is
// planned now; otherwise an active plan crossing a cell that is no longer free is
// replaced.
func (n *Navigator) HandleMap(occ Occupancy) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.occupancy = occ
	if occ == nil {
		return
	}

	if n.pendingGoal != nil {
		goal := *n.pendingGoal
		n.pendingGoal = nil
		n.logger.Infow("map received, planning held goal", "goal", goal)
		n.replan(goal, ReasonGoal)
		return
	}

	if !n.planned || n.plan == nil || (n.mode != ModeAlign && n.mode != ModeTrack) {
		return
	}
	if PlanBlocked(n.plan, occ, n.trackingTime()) {
		n.invalidate(ReasonMapChange)
	}
}

func (n *Navigator) trackingTime() float64 {
	if n.mode != ModeTrack {
		return 0
	}
	return n.clk.Since(n.planStart).Seconds()
}

// switchMode changes mode, logging each actual change once.
func (n *Navigator) switchMode(m Mode) {
	if n.mode == m {
		return
	}
	n.logger.Infow("switching mode", "from", n.mode, "to", m)
	n.mode = m
}

// startTracking resets the tracker and starts the plan clock.
func (n *Navigator) startTracking() {
	n.tracker.Reset()
	n.planStart = n.clk.Now()
}

// invalidate drops the active plan and replans toward the same goal. If that fails the
// navigator falls back to IDLE.
func (n *Navigator) invalidate(reason ReplanReason) {
	n.logger.Infow("replanning", "reason", reason)
	n.planned = false
	if n.goal == nil {
		n.lastErr = ErrNoGoal
		n.switchMode(ModeIdle)
		return
	}
	n.replan(*n.goal, reason)
	if !n.planned {
		n.switchMode(ModeIdle)
	}
}

// replan plans toward goal. On failure the mode is left unchanged, planned is cleared
// and a navigation failure is published.
func (n *Navigator) replan(goal robot.Pose, reason ReplanReason) {
	if n.occupancy == nil {
		n.lastErr = ErrNoOccupancy
		n.logger.Warnw("unable to replan: occupancy map not yet available", "goal", goal)
		return
	}

	n.goal = &goal
	if NearGoal(n.pose, goal, n.cfg.NearThresh) {
		n.planned = true
		n.lastErr = nil
		n.switchMode(ModePark)
		return
	}

	// path search may take long; the robot must not keep moving blind
	n.pub.PublishCommand(robot.Stop)

	plan, err := n.computePlan(goal)
	if err != nil {
		n.planned = false
		n.lastErr = err
		n.logger.Warnw("replanning failed", "reason", reason, "error", err)
		n.pub.PublishNavSuccess(false)
		return
	}

	n.planned = true
	n.plan = plan
	n.lastErr = nil
	n.tracker.Reset()
	n.logger.Infow("replanned", "goal", goal, "reason", reason, "duration", plan.Duration())

	n.pub.PublishPlannedPath(plan.Waypoints())
	n.pub.PublishSmoothedPath(slices.Collect(plan.SampledPath(n.cfg.SmoothStep)))

	if Aligned(n.pose.Theta, plan.DesiredState(0).Theta, n.cfg.ThetaStartThresh) {
		n.planStart = n.clk.Now()
		n.switchMode(ModeTrack)
	} else {
		n.switchMode(ModeAlign)
	}
}

func (n *Navigator) computePlan(goal robot.Pose) (*trajectory.Plan, error) {
	if n.searcher == nil {
		return nil, errors.Wrap(ErrNoPath, "no path searcher")
	}

	start := n.pose.Position()
	h := n.cfg.PlanHorizon
	bounds := r2.RectFromCenterSize(start, r2.Point{X: 2 * h, Y: 2 * h})

	path, err := n.searcher.Search(start, goal.Position(), n.occupancy, n.cfg.PlanResolution, bounds)
	if err != nil {
		return nil, errors.Wrapf(ErrNoPath, "search: %v", err)
	}
	if len(path) < trajectory.MinWaypoints {
		return nil, errors.Wrapf(ErrNoPath, "search returned %d waypoints", len(path))
	}

	plan, err := trajectory.New(path, n.cfg.VMax)
	if err != nil {
		return nil, errors.Wrapf(ErrNoPath, "fitting: %v", err)
	}
	return plan, nil
}

func (n *Navigator) nextIdle() Mode {
	return ModeIdle
}

func (n *Navigator) nextAlign() Mode {
	if Aligned(n.pose.Theta, n.plan.DesiredState(0).Theta, n.cfg.ThetaStartThresh) {
		n.startTracking()
		return ModeTrack
	}
	return ModeAlign
}

func (n *Navigator) nextTrack() Mode {
	if NearGoal(n.pose, *n.goal, n.cfg.NearThresh) {
		n.pub.PublishNavSuccess(true)
		return ModePark
	}

	t := n.trackingTime()
	switch {
	case TimedOut(t, n.plan):
		n.invalidate(ReasonTimeout)
	case !CloseToPlan(n.pose, n.plan, t, n.cfg.PlanThresh):
		n.invalidate(ReasonDrift)
	}
	return n.mode
}

func (n *Navigator) nextPark() Mode {
	if Aligned(n.pose.Theta, n.goal.Theta, n.cfg.AtThreshTheta) {
		n.planned = false
		return ModeIdle
	}
	return ModePark
}

func (n *Navigator) commandIdle() robot.Command {
	return robot.Stop
}

func (n *Navigator) commandAlign() robot.Command {
	return n.heading.Compute(n.pose.Theta, n.plan.DesiredState(0).Theta)
}

func (n *Navigator) commandTrack() robot.Command {
	return n.tracker.Compute(n.pose, n.plan, n.trackingTime())
}

func (n *Navigator) commandPark() robot.Command {
	return n.heading.Compute(n.pose.Theta, n.goal.Theta)
}
