package export

import (
	"image/color"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/occupancy"
	"github.com/san-kum/navsim/internal/robot"
)

const (
	DefaultSize = 6 * vg.Inch
	// headingLength is the length of the heading tick drawn at start and goal poses.
	headingLength = 0.3
)

var (
	obstacleColor = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	unknownColor  = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	addedColor    = color.RGBA{R: 0xaa, G: 0x33, B: 0x33, A: 0xff}
	plannedColor  = color.RGBA{R: 0x88, G: 0x88, B: 0xff, A: 0xff}
	smoothedColor = color.RGBA{R: 0x00, G: 0x66, B: 0xcc, A: 0xff}
	traceColor    = color.RGBA{R: 0x00, G: 0xaa, B: 0x44, A: 0xff}
	startColor    = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	goalColor     = color.RGBA{R: 0xdd, G: 0x88, B: 0x00, A: 0xff}
)

// Scene is a top-down view of a run.
type Scene struct {
	Title      string
	Bounds     r2.Rect
	Obstacles  []r2.Rect
	Unknown    []r2.Rect
	Added      []r2.Rect // obstacles that appear during the run
	Planned    []r2.Point
	Smoothed   []r2.Point
	Trajectory []r2.Point
	Start      robot.Pose
	Goals      []robot.Pose
}

// NewScene collects the static parts of a scenario. Paths and the trajectory are added
// by the caller.
func NewScene(cfg *config.Config) *Scene {
	s := &Scene{
		Title:  cfg.Name,
		Bounds: r2.RectFromPoints(cfg.Map.Origin, cfg.Map.Origin.Add(r2.Point{X: cfg.Map.Width, Y: cfg.Map.Height})),
		Start:  cfg.Start,
	}
	s.Obstacles = rects(cfg.Map.Obstacles)
	s.Unknown = rects(cfg.Map.Unknown)
	for _, c := range cfg.MapChanges {
		s.Added = append(s.Added, rects(c.Add)...)
	}
	for _, g := range cfg.Goals {
		s.Goals = append(s.Goals, g.Pose)
	}
	return s
}

func rects(obstacles []occupancy.Obstacle) []r2.Rect {
	out := make([]r2.Rect, len(obstacles))
	for i, o := range obstacles {
		out[i] = o.Rect()
	}
	return out
}

// WithTrajectory sets the driven path from poses.
func (s *Scene) WithTrajectory(poses []robot.Pose) *Scene {
	s.Trajectory = make([]r2.Point, len(poses))
	for i, p := range poses {
		s.Trajectory[i] = p.Position()
	}
	return s
}

func (s *Scene) WithPaths(planned, smoothed []r2.Point) *Scene {
	s.Planned = planned
	s.Smoothed = smoothed
	return s
}

// View is the square region drawn: the scene bounds grown to hold every path, padded
// by five percent.
func (s *Scene) View() r2.Rect {
	view := s.Bounds
	for _, pts := range [][]r2.Point{s.Planned, s.Smoothed, s.Trajectory} {
		for _, p := range pts {
			view = view.AddPoint(p)
		}
	}
	view = view.AddPoint(s.Start.Position())
	for _, g := range s.Goals {
		view = view.AddPoint(g.Position())
	}

	size := view.Size()
	side := math.Max(math.Max(size.X, size.Y), 1) * 1.1
	return r2.RectFromCenterSize(view.Center(), r2.Point{X: side, Y: side})
}

// Plot builds the scene as a gonum plot.
func (s *Scene) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = "y [m]"
	view := s.View()
	p.X.Min, p.X.Max = view.X.Lo, view.X.Hi
	p.Y.Min, p.Y.Max = view.Y.Lo, view.Y.Hi
	p.Add(plotter.NewGrid())

	for _, layer := range []struct {
		rects []r2.Rect
		fill  color.Color
	}{
		{s.Unknown, unknownColor},
		{s.Obstacles, obstacleColor},
		{s.Added, addedColor},
	} {
		for _, r := range layer.rects {
			poly, err := plotter.NewPolygon(rectXYs(r))
			if err != nil {
				return nil, errors.Wrap(err, "obstacle")
			}
			poly.Color = layer.fill
			poly.LineStyle.Width = 0
			p.Add(poly)
		}
	}

	for _, series := range []struct {
		name   string
		pts    []r2.Point
		color  color.Color
		dashes []vg.Length
	}{
		{"planned", s.Planned, plannedColor, []vg.Length{vg.Points(3), vg.Points(3)}},
		{"smoothed", s.Smoothed, smoothedColor, nil},
		{"driven", s.Trajectory, traceColor, nil},
	} {
		if len(series.pts) < 2 {
			continue
		}
		line, err := plotter.NewLine(pointXYs(series.pts))
		if err != nil {
			return nil, errors.Wrap(err, series.name)
		}
		line.Color = series.color
		line.Dashes = series.dashes
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	if err := addPoses(p, "start", []robot.Pose{s.Start}, startColor, draw.CircleGlyph{}); err != nil {
		return nil, err
	}
	if len(s.Goals) > 0 {
		if err := addPoses(p, "goal", s.Goals, goalColor, draw.TriangleGlyph{}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// addPoses draws a marker and a heading tick per pose.
func addPoses(p *plot.Plot, name string, poses []robot.Pose, c color.Color, shape draw.GlyphDrawer) error {
	xys := make(plotter.XYs, len(poses))
	for i, pose := range poses {
		xys[i] = plotter.XY{X: pose.X, Y: pose.Y}

		sin, cos := math.Sincos(pose.Theta)
		tick, err := plotter.NewLine(plotter.XYs{
			{X: pose.X, Y: pose.Y},
			{X: pose.X + headingLength*cos, Y: pose.Y + headingLength*sin},
		})
		if err != nil {
			return errors.Wrapf(err, "%s heading", name)
		}
		tick.Color = c
		tick.Width = vg.Points(2)
		p.Add(tick)
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, name)
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Shape = shape
	sc.GlyphStyle.Radius = vg.Points(4)
	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}

func rectXYs(r r2.Rect) plotter.XYs {
	return plotter.XYs{
		{X: r.X.Lo, Y: r.Y.Lo},
		{X: r.X.Hi, Y: r.Y.Lo},
		{X: r.X.Hi, Y: r.Y.Hi},
		{X: r.X.Lo, Y: r.Y.Hi},
	}
}

func pointXYs(pts []r2.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}

// WriteSVG renders the scene as a square SVG of the given side.
func (s *Scene) WriteSVG(w io.Writer, side vg.Length) error {
	p, err := s.Plot()
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(side, side, "svg")
	if err != nil {
		return errors.Wrap(err, "rendering svg")
	}
	_, err = wt.WriteTo(w)
	return err
}

func (s *Scene) SaveSVG(path string, side vg.Length) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteSVG(f, side)
}
