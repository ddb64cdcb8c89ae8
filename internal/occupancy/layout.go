package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Obstacle is an axis-aligned rectangle in world coordinates.
type Obstacle struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Box builds an obstacle from two opposite corners.
func Box(a, b r2.Point) Obstacle {
	r := r2.RectFromPoints(a, b)
	return Obstacle{MinX: r.X.Lo, MinY: r.Y.Lo, MaxX: r.X.Hi, MaxY: r.Y.Hi}
}

func (o Obstacle) Rect() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: o.MinX, Y: o.MinY}, r2.Point{X: o.MaxX, Y: o.MaxY})
}

// Layout describes a synthetic map: its extent, resolution and rectangular obstacles.
// Cells not covered by an obstacle are free unless Unknown lists them.
type Layout struct {
	Resolution float64    `yaml:"resolution"`
	Origin     r2.Point   `yaml:"origin"`
	Width      float64    `yaml:"width"`  // metres
	Height     float64    `yaml:"height"` // metres
	WindowSize int        `yaml:"window_size"`
	Obstacles  []Obstacle `yaml:"obstacles"`
	Unknown    []Obstacle `yaml:"unknown"`
}

func (l Layout) Validate() error {
	var err error
	if !(l.Resolution > 0) {
		err = multierr.Append(err, ErrBadResolution)
	}
	if !(l.Width > 0) || !(l.Height > 0) {
		err = multierr.Append(err, errors.Wrapf(ErrBadSize, "%gx%g m", l.Width, l.Height))
	}
	if l.WindowSize <= 0 || l.WindowSize%2 == 0 {
		err = multierr.Append(err, errors.Wrapf(ErrBadWindow, "got %d", l.WindowSize))
	}
	return err
}

// Rasterize builds a grid from the layout. Obstacle cells are fully occupied.
func Rasterize(l Layout) (*StochGrid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	w := int(math.Ceil(l.Width/l.Resolution - 1e-9))
	h := int(math.Ceil(l.Height/l.Resolution - 1e-9))

	g, err := New(l.Resolution, w, h, l.Origin, l.WindowSize, make([]int8, w*h))
	if err != nil {
		return nil, err
	}
	g.fill(l.Unknown, Unknown)
	g.fill(l.Obstacles, 100)
	return g, nil
}

// WithObstacles returns a copy of the grid with extra occupied rectangles.
func (g *StochGrid) WithObstacles(obstacles ...Obstacle) *StochGrid {
	c := *g
	c.probs = append([]int8(nil), g.probs...)
	c.fill(obstacles, 100)
	return &c
}

// fill sets every cell whose centre lies inside one of rects.
func (g *StochGrid) fill(rects []Obstacle, v int8) {
	for _, o := range rects {
		r := o.Rect()
		x0, y0 := g.CellAt(r.Lo())
		x1, y1 := g.CellAt(r.Hi())
		for iy := max(y0, 0); iy <= min(y1, g.height-1); iy++ {
			for ix := max(x0, 0); ix <= min(x1, g.width-1); ix++ {
				if r.ContainsPoint(g.CellCenter(ix, iy)) {
					g.probs[iy*g.width+ix] = v
				}
			}
		}
	}
}
