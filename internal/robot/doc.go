// Package robot provides the planar primitives shared by the navigation stack.
//
// The package defines the small value types exchanged between components:
//
//   - [Pose]: planar position and heading of the robot
//   - [Command]: linear speed and angular rate sent to the base
//
// Headings are always compared through [WrapAngle] / [DistanceAngular], never by raw
// subtraction, so that 179° and -179° are two degrees apart.
package robot
