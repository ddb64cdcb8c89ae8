// Package nav implements the switching navigator.
//
// A [Navigator] owns the goal, the occupancy snapshot, the active
// [trajectory.Plan] and the tracking controller state. It reacts to three inputs:
//
//   - [Navigator.HandleGoal]: a new target pose, which triggers planning
//   - [Navigator.HandleMap]: a new occupancy snapshot, which may invalidate the plan
//   - [Navigator.Tick]: one control period, which evaluates mode transitions and returns
//     the command for the active mode
//
// Modes advance IDLE → ALIGN → TRACK → PARK → IDLE. ALIGN and PARK rotate in place with
// the heading controller, TRACK follows the plan with the feedback-linearization tracker.
//
// # Thread Safety
//
// All three entry points serialize on one mutex, so a replan triggered by a goal or map
// event never interleaves with a tick. Path search runs synchronously inside the handler
// after the robot has been commanded to stop. [Loop] drives a navigator from a single
// goroutine at a fixed rate.
package nav
