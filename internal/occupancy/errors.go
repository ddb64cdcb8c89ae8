package occupancy

import "github.com/pkg/errors"

var (
	ErrBadResolution = errors.New("occupancy: resolution must be positive")
	ErrBadSize       = errors.New("occupancy: grid size must be positive")
	ErrBadWindow     = errors.New("occupancy: window size must be a positive odd number")
	ErrProbsLength   = errors.New("occupancy: probability array does not match grid size")
)
