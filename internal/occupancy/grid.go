package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

const (
	DefaultWindowSize = 9
	DefaultThresh     = 0.5

	Unknown int8 = -1
)

// Cell classifies a single grid cell.
type Cell int

const (
	CellFree Cell = iota
	CellOccupied
	CellUnknown
)

func (c Cell) String() string {
	switch c {
	case CellFree:
		return "free"
	case CellOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// StochGrid is an immutable probabilistic occupancy grid. Probabilities are stored row
// major, row 0 at the origin.
type StochGrid struct {
	resolution float64
	width      int
	height     int
	origin     r2.Point
	window     int
	thresh     float64
	probs      []int8
}

// New wraps probs as a grid. The slice is copied.
func New(resolution float64, width, height int, origin r2.Point, windowSize int, probs []int8) (*StochGrid, error) {
	if !(resolution > 0) {
		return nil, ErrBadResolution
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrBadSize, "%dx%d", width, height)
	}
	if windowSize <= 0 || windowSize%2 == 0 {
		return nil, errors.Wrapf(ErrBadWindow, "got %d", windowSize)
	}
	if len(probs) != width*height {
		return nil, errors.Wrapf(ErrProbsLength, "expected %d, got %d", width*height, len(probs))
	}
	return &StochGrid{
		resolution: resolution,
		width:      width,
		height:     height,
		origin:     origin,
		window:     windowSize,
		thresh:     DefaultThresh,
		probs:      append([]int8(nil), probs...),
	}, nil
}

// WithThresh returns a copy of the grid using a different free-space threshold.
func (g *StochGrid) WithThresh(thresh float64) *StochGrid {
	c := *g
	c.thresh = thresh
	return &c
}

func (g *StochGrid) Resolution() float64 { return g.resolution }
func (g *StochGrid) Size() (int, int)    { return g.width, g.height }
func (g *StochGrid) Origin() r2.Point    { return g.origin }
func (g *StochGrid) WindowSize() int     { return g.window }
func (g *StochGrid) Thresh() float64     { return g.thresh }

// Bounds is the metric extent covered by the cells.
func (g *StochGrid) Bounds() r2.Rect {
	return r2.RectFromPoints(g.origin, g.origin.Add(r2.Point{
		X: float64(g.width) * g.resolution,
		Y: float64(g.height) * g.resolution,
	}))
}

// CellAt returns the indices of the cell containing p. The indices may be outside the
// grid.
func (g *StochGrid) CellAt(p r2.Point) (ix, iy int) {
	ix = int(math.Floor((p.X - g.origin.X) / g.resolution))
	iy = int(math.Floor((p.Y - g.origin.Y) / g.resolution))
	return ix, iy
}

// CellCenter is the metric centre of cell (ix, iy).
func (g *StochGrid) CellCenter(ix, iy int) r2.Point {
	return r2.Point{
		X: g.origin.X + (float64(ix)+0.5)*g.resolution,
		Y: g.origin.Y + (float64(iy)+0.5)*g.resolution,
	}
}

func (g *StochGrid) inside(ix, iy int) bool {
	return ix >= 0 && iy >= 0 && ix < g.width && iy < g.height
}

// Prob returns the raw value of cell (ix, iy), Unknown outside the grid.
func (g *StochGrid) Prob(ix, iy int) int8 {
	if !g.inside(ix, iy) {
		return Unknown
	}
	return g.probs[iy*g.width+ix]
}

// IsFree reports whether the probability that any cell in the window around p is
// occupied, 1 - Π(1 - p_i), is below the threshold. Unknown cells and cells outside the
// grid contribute nothing.
func (g *StochGrid) IsFree(p r2.Point) bool {
	cx, cy := g.CellAt(p)
	half := (g.window - 1) / 2

	pFree := 1.0
	for iy := max(cy-half, 0); iy <= min(cy+half, g.height-1); iy++ {
		for ix := max(cx-half, 0); ix <= min(cx+half, g.width-1); ix++ {
			v := g.probs[iy*g.width+ix]
			if v <= 0 {
				continue
			}
			pFree *= 1 - float64(v)/100
		}
	}
	return 1-pFree < g.thresh
}

// Occupied reports whether the single cell containing p is at or above the threshold.
func (g *StochGrid) Occupied(p r2.Point) bool {
	return g.Query(p) == CellOccupied
}

// Query classifies the cell containing p.
func (g *StochGrid) Query(p r2.Point) Cell {
	v := g.Prob(g.CellAt(p))
	switch {
	case v < 0:
		return CellUnknown
	case float64(v)/100 >= g.thresh:
		return CellOccupied
	default:
		return CellFree
	}
}
