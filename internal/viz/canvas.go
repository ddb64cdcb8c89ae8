package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Layer tags the dots of a cell. A cell is coloured by the highest layer drawn into it.
type Layer uint8

const (
	LayerNone Layer = iota
	LayerMap
	LayerPath
	LayerTrail
	LayerGoal
	LayerRobot
)

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	layers        [][]Layer
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		layers: make([][]Layer, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.layers[i] = make([]Layer, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). The canvas is Width*2 by Height*4 dots.
func (c *Canvas) Set(x, y int, l Layer) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if l > c.layers[row][col] {
		c.layers[row][col] = l
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.layers[i][j] = LayerNone
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, l Layer) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, l)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with one style per layer, styling runs of equal layers
// together.
func (c *Canvas) Render(style func(Layer) lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.layers[i][j] == c.layers[i][start] {
				continue
			}
			b.WriteString(style(c.layers[i][start]).Render(string(row[start:j])))
			start = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps a world rectangle onto the dots of a canvas with a uniform scale, y up.
type Viewport struct {
	world      r2.Rect
	w, h       int
	scale      float64
	offX, offY float64
}

func NewViewport(world r2.Rect, c *Canvas) Viewport {
	w, h := c.Width*2, c.Height*4
	size := world.Size()
	scale := math.Min(float64(w)/math.Max(size.X, 1e-9), float64(h)/math.Max(size.Y, 1e-9))
	return Viewport{
		world: world,
		w:     w,
		h:     h,
		scale: scale,
		offX:  (float64(w) - size.X*scale) / 2,
		offY:  (float64(h) - size.Y*scale) / 2,
	}
}

// ToCanvas returns the dot holding p.
func (v Viewport) ToCanvas(p r2.Point) (int, int) {
	x := v.offX + (p.X-v.world.X.Lo)*v.scale
	y := v.offY + (p.Y-v.world.Y.Lo)*v.scale
	return int(math.Floor(x)), v.h - 1 - int(math.Floor(y))
}

// ToWorld returns the centre of dot (x, y).
func (v Viewport) ToWorld(x, y int) r2.Point {
	fy := float64(v.h-1-y) + 0.5
	return r2.Point{
		X: v.world.X.Lo + (float64(x)+0.5-v.offX)/v.scale,
		Y: v.world.Y.Lo + (fy-v.offY)/v.scale,
	}
}

// Dots is the canvas size in dots.
func (v Viewport) Dots() (int, int) { return v.w, v.h }

// Scale is dots per metre.
func (v Viewport) Scale() float64 { return v.scale }

// Polyline draws pts as connected segments.
func (v Viewport) Polyline(c *Canvas, pts []r2.Point, l Layer) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := v.ToCanvas(pts[i-1])
		x1, y1 := v.ToCanvas(pts[i])
		c.DrawLine(x0, y0, x1, y1, l)
	}
}
