package astar

import "github.com/pkg/errors"

var (
	ErrBadResolution = errors.New("astar: resolution must be positive")
	ErrOutOfBounds   = errors.New("astar: start or goal outside the search bounds")
	ErrStartBlocked  = errors.New("astar: start is not free")
	ErrGoalBlocked   = errors.New("astar: goal is not free")
	ErrUnreachable   = errors.New("astar: goal unreachable")
)
