package nav

import (
	"github.com/golang/geo/r2"

	"github.com/san-kum/navsim/internal/robot"
)

// Controller is the capability the control loop drives. Drivers call SetPose with the
// latest pose before HandleGoal and HandleMap, since both plan from it.
type Controller interface {
	Mode() Mode
	CanComputeControl() bool
	SetPose(pose robot.Pose)
	Tick(pose robot.Pose) (robot.Command, bool)
	HandleGoal(goal robot.Pose)
	HandleMap(occ Occupancy)
}

// Occupancy answers collision queries against the current map.
type Occupancy interface {
	IsFree(p r2.Point) bool
}

// PathSearcher finds a collision-free waypoint sequence from start to goal inside
// bounds. It runs to completion; there is no cancellation.
type PathSearcher interface {
	Search(start, goal r2.Point, occ Occupancy, resolution float64, bounds r2.Rect) ([]r2.Point, error)
}

// CommandSink receives velocity commands.
type CommandSink interface {
	PublishCommand(cmd robot.Command)
}

// Publisher receives the navigator's fire-and-forget outputs.
type Publisher interface {
	CommandSink
	PublishNavSuccess(ok bool)
	PublishPlannedPath(path []r2.Point)
	PublishSmoothedPath(path []r2.Point)
}

// PoseSource reports the latest robot pose.
type PoseSource interface {
	Pose() robot.Pose
}

type nopPublisher struct{}

func (nopPublisher) PublishCommand(robot.Command)   {}
func (nopPublisher) PublishNavSuccess(bool)         {}
func (nopPublisher) PublishPlannedPath([]r2.Point)  {}
func (nopPublisher) PublishSmoothedPath([]r2.Point) {}
