// Package control provides the low-level controllers used by the navigator.
//
// Controllers turn the robot pose plus a target into a [robot.Command]:
//
//   - [Heading]: proportional heading controller, rotates in place
//   - [Tracker]: feedback-linearization trajectory tracker for a unicycle base
//
// # Usage
//
//	tr := control.NewTracker(control.DefaultGains())
//	tr.Reset()                       // on every new plan
//	cmd := tr.Compute(pose, plan, t) // t in seconds since the plan started
//
// [Tracker] carries speed and time across calls and is not safe for concurrent use.
package control
