package trajectory

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Spline is a not-a-knot cubic interpolant through (xs[i], ys[i]).
//
// The curve is twice continuously differentiable and its third derivative is also
// continuous across the second and the second-to-last knot, which makes it identical to
// the s=0 cubic B-spline interpolant.
type Spline struct {
	xs []float64
	ys []float64
	m  []float64 // second derivative at each knot
}

// NewSpline fits a spline through at least MinWaypoints points.
func NewSpline(xs, ys []float64) (*Spline, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, errors.Errorf("trajectory: %d knots but %d values", n, len(ys))
	}
	if n < MinWaypoints {
		return nil, errors.Wrapf(ErrTooFewWaypoints, "got %d", n)
	}
	for i := 1; i < n; i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, errors.Wrapf(ErrKnotOrder, "knot %d (%g) after %g", i, xs[i], xs[i-1])
		}
	}

	h := make([]float64, n-1)
	for i := range h {
		h[i] = xs[i+1] - xs[i]
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	// not-a-knot at xs[1]: third derivative continuous
	a.Set(0, 0, h[1])
	a.Set(0, 1, -(h[0] + h[1]))
	a.Set(0, 2, h[0])

	for i := 1; i < n-1; i++ {
		a.Set(i, i-1, h[i-1])
		a.Set(i, i, 2*(h[i-1]+h[i]))
		a.Set(i, i+1, h[i])
		b.SetVec(i, 6*((ys[i+1]-ys[i])/h[i]-(ys[i]-ys[i-1])/h[i-1]))
	}

	// not-a-knot at xs[n-2]
	a.Set(n-1, n-3, h[n-2])
	a.Set(n-1, n-2, -(h[n-3] + h[n-2]))
	a.Set(n-1, n-1, h[n-3])

	var m mat.VecDense
	if err := m.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(err, "trajectory: solving spline system")
	}

	s := &Spline{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		m:  make([]float64, n),
	}
	for i := range s.m {
		s.m[i] = m.AtVec(i)
	}
	return s, nil
}

// Domain returns the first and last knot.
func (s *Spline) Domain() (lo, hi float64) {
	return s.xs[0], s.xs[len(s.xs)-1]
}

// segment returns the interval index k with xs[k] <= x <= xs[k+1]. Values outside the
// domain select the first or last interval.
func (s *Spline) segment(x float64) int {
	k := sort.SearchFloat64s(s.xs, x) - 1
	if k < 0 {
		return 0
	}
	if k > len(s.xs)-2 {
		return len(s.xs) - 2
	}
	return k
}

func (s *Spline) coeffs(x float64) (k int, h, a, b float64) {
	k = s.segment(x)
	h = s.xs[k+1] - s.xs[k]
	a = s.xs[k+1] - x
	b = x - s.xs[k]
	return k, h, a, b
}

// Eval returns the spline value at x.
func (s *Spline) Eval(x float64) float64 {
	k, h, a, b := s.coeffs(x)
	mk, mk1 := s.m[k], s.m[k+1]
	return mk*a*a*a/(6*h) + mk1*b*b*b/(6*h) +
		(s.ys[k]/h-mk*h/6)*a + (s.ys[k+1]/h-mk1*h/6)*b
}

// Derivative returns the first derivative at x.
func (s *Spline) Derivative(x float64) float64 {
	k, h, a, b := s.coeffs(x)
	mk, mk1 := s.m[k], s.m[k+1]
	return -mk*a*a/(2*h) + mk1*b*b/(2*h) -
		(s.ys[k]/h - mk*h/6) + (s.ys[k+1]/h - mk1*h/6)
}

// SecondDerivative returns the second derivative at x.
func (s *Spline) SecondDerivative(x float64) float64 {
	k, h, a, b := s.coeffs(x)
	return (s.m[k]*a + s.m[k+1]*b) / h
}
