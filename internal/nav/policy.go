package nav

import (
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/trajectory"
)

// ReplanReason records why a plan was recomputed.
type ReplanReason int

const (
	ReasonGoal      ReplanReason = iota // new goal request
	ReasonMapChange                     // map update blocks the plan
	ReasonTimeout                       // plan duration exceeded while tracking
	ReasonDrift                         // too far from the reference
)

func (r ReplanReason) String() string {
	switch r {
	case ReasonGoal:
		return "goal"
	case ReasonMapChange:
		return "map change"
	case ReasonTimeout:
		return "out of time or stuck"
	case ReasonDrift:
		return "far from planned trajectory"
	default:
		return "unknown"
	}
}

// NearGoal reports whether pose is within thresh of goal in linear distance.
func NearGoal(pose, goal robot.Pose, thresh float64) bool {
	return robot.DistanceLinear(pose, goal) < thresh
}

// Aligned reports whether theta is within thresh of target in wrapped angular distance.
func Aligned(theta, target, thresh float64) bool {
	return robot.DistanceAngular(robot.Pose{Theta: theta}, robot.Pose{Theta: target}) < thresh
}

// CloseToPlan reports whether pose is within thresh of the plan's reference at t.
func CloseToPlan(pose robot.Pose, plan *trajectory.Plan, t, thresh float64) bool {
	return robot.DistanceLinear(pose, plan.DesiredState(t)) < thresh
}

// TimedOut reports whether elapsed tracking time exceeds the plan duration.
func TimedOut(elapsed float64, plan *trajectory.Plan) bool {
	return elapsed > plan.Duration()
}

// PlanBlocked reports whether any waypoint still ahead at time t is no longer free.
func PlanBlocked(plan *trajectory.Plan, occ Occupancy, t float64) bool {
	for _, p := range plan.UpcomingWaypoints(t) {
		if !occ.IsFree(p) {
			return true
		}
	}
	return false
}
