package sim

import "github.com/pkg/errors"

var (
	ErrNoController = errors.New("sim: no controller attached")
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
	ErrDimension    = errors.New("sim: initial state does not match the plant")
)
