package nav

import "github.com/pkg/errors"

var (
	// ErrNoPath indicates the path search found no usable route.
	ErrNoPath = errors.New("nav: no usable path")

	// ErrNoOccupancy indicates a goal arrived before any occupancy map.
	ErrNoOccupancy = errors.New("nav: occupancy map not yet available")

	// ErrNoGoal indicates a replan was requested without a goal.
	ErrNoGoal = errors.New("nav: no goal")
)
