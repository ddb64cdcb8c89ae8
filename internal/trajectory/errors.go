package trajectory

import "github.com/pkg/errors"

// MinWaypoints is the shortest path a plan can be fitted to.
const MinWaypoints = 4

var (
	// ErrTooFewWaypoints indicates a path shorter than MinWaypoints distinct points.
	ErrTooFewWaypoints = errors.New("trajectory: too few waypoints")

	// ErrZeroLength indicates a path whose waypoints all coincide.
	ErrZeroLength = errors.New("trajectory: path has zero length")

	// ErrInvalidSpeed indicates a non-positive nominal speed.
	ErrInvalidSpeed = errors.New("trajectory: nominal speed must be positive")

	// ErrKnotOrder indicates spline abscissae that are not strictly increasing.
	ErrKnotOrder = errors.New("trajectory: knots must be strictly increasing")
)
