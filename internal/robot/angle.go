package robot

import (
	"math"

	"github.com/golang/geo/r2"
)

// WrapAngle maps a onto (-pi, pi].
func WrapAngle(a float64) float64 {
	w := math.Remainder(a, 2*math.Pi)
	if w <= -math.Pi {
		w += 2 * math.Pi
	}
	return w
}

// DistanceLinear is the euclidean distance between two poses.
func DistanceLinear(a, b Pose) float64 {
	return Distance(a.Position(), b.Position())
}

// DistanceAngular is the absolute wrapped heading difference between two poses.
func DistanceAngular(a, b Pose) float64 {
	return math.Abs(WrapAngle(a.Theta - b.Theta))
}

// Distance is the euclidean distance between two points.
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
