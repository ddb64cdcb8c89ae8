// Package viz draws a running navigation scenario in the terminal.
//
// [Model] is a Bubble Tea program that steps the simulator in real time and renders the
// map, the smoothed plan, the driven trail and the robot on a braille [Canvas]. A side
// panel shows the navigator's mode, pose, command and a tracking error sparkline.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	+/-   - Double/halve the number of steps per frame
//	N     - Single step while paused
//	S     - Save an SVG snapshot to the working directory
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
