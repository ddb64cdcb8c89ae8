package nav

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/san-kum/navsim/internal/robot"
)

const eventQueueSize = 10

// Loop drives a Controller at a fixed rate and delivers goal and map events between
// ticks. All calls into the controller happen on the goroutine running Run.
type Loop struct {
	ctrl   Controller
	src    PoseSource
	sink   CommandSink
	clk    clock.Clock
	period time.Duration
	logger *zap.SugaredLogger

	goals chan robot.Pose
	maps  chan Occupancy
}

// NewLoop builds a loop ticking at hz.
func NewLoop(ctrl Controller, src PoseSource, sink CommandSink, clk clock.Clock, hz float64, logger *zap.SugaredLogger) (*Loop, error) {
	if !(hz > 0) {
		return nil, errors.Errorf("nav: loop rate must be positive, got %g", hz)
	}
	if ctrl == nil || src == nil || sink == nil {
		return nil, errors.New("nav: loop needs a controller, a pose source and a command sink")
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loop{
		ctrl:   ctrl,
		src:    src,
		sink:   sink,
		clk:    clk,
		period: time.Duration(float64(time.Second) / hz),
		logger: logger,
		goals:  make(chan robot.Pose, eventQueueSize),
		maps:   make(chan Occupancy, eventQueueSize),
	}, nil
}

// Period is the tick interval.
func (l *Loop) Period() time.Duration { return l.period }

// SubmitGoal queues a goal request. It reports false when the queue is full.
func (l *Loop) SubmitGoal(goal robot.Pose) bool {
	select {
	case l.goals <- goal:
		return true
	default:
		l.logger.Warnw("goal queue full, dropping goal", "goal", goal)
		return false
	}
}

// SubmitMap queues a map update. It reports false when the queue is full.
func (l *Loop) SubmitMap(occ Occupancy) bool {
	select {
	case l.maps <- occ:
		return true
	default:
		l.logger.Warn("map queue full, dropping update")
		return false
	}
}

// Run ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clk.Ticker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case goal := <-l.goals:
			l.ctrl.SetPose(l.src.Pose())
			l.ctrl.HandleGoal(goal)
		case occ := <-l.maps:
			l.ctrl.SetPose(l.src.Pose())
			l.ctrl.HandleMap(occ)
		case <-ticker.C:
			if cmd, ok := l.ctrl.Tick(l.src.Pose()); ok {
				l.sink.PublishCommand(cmd)
			}
		}
	}
}
