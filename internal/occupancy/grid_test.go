package occupancy

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

func mustGrid(t *testing.T, w, h, window int, probs []int8) *StochGrid {
	t.Helper()
	g, err := New(1.0, w, h, r2.Point{}, window, probs)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name   string
		res    float64
		w, h   int
		window int
		n      int
		want   error
	}{
		{"zero resolution", 0, 2, 2, 1, 4, ErrBadResolution},
		{"empty", 1, 0, 2, 1, 0, ErrBadSize},
		{"even window", 1, 2, 2, 2, 4, ErrBadWindow},
		{"short probs", 1, 2, 2, 1, 3, ErrProbsLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.res, tt.w, tt.h, r2.Point{}, tt.window, make([]int8, tt.n))
			if errors.Cause(err) != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIsFreeCombinesWindow(t *testing.T) {
	probs := make([]int8, 25)
	g := mustGrid(t, 5, 5, 3, probs)
	if !g.IsFree(r2.Point{X: 2.5, Y: 2.5}) {
		t.Error("empty grid should be free")
	}

	// one 40% cell next to the query: 0.4 < 0.5
	probs[2*5+3] = 40
	g = mustGrid(t, 5, 5, 3, probs)
	if !g.IsFree(r2.Point{X: 2.5, Y: 2.5}) {
		t.Error("single 40% neighbour should stay free")
	}

	// a second 30% neighbour: 1 - 0.6*0.7 = 0.58
	probs[1*5+2] = 30
	g = mustGrid(t, 5, 5, 3, probs)
	if g.IsFree(r2.Point{X: 2.5, Y: 2.5}) {
		t.Error("combined window should be occupied")
	}

	// outside the window the cells do not matter
	if !g.IsFree(r2.Point{X: 0.5, Y: 4.5}) {
		t.Error("far corner should be free")
	}
}

func TestIsFreeIgnoresUnknown(t *testing.T) {
	probs := make([]int8, 9)
	for i := range probs {
		probs[i] = Unknown
	}
	g := mustGrid(t, 3, 3, 3, probs)
	if !g.IsFree(r2.Point{X: 1.5, Y: 1.5}) {
		t.Error("unknown cells count as free")
	}
	if g.Query(r2.Point{X: 1.5, Y: 1.5}) != CellUnknown {
		t.Error("expected unknown cell")
	}
}

func TestQuery(t *testing.T) {
	probs := []int8{0, 50, 49, Unknown}
	g := mustGrid(t, 2, 2, 1, probs)

	tests := []struct {
		p    r2.Point
		want Cell
	}{
		{r2.Point{X: 0.5, Y: 0.5}, CellFree},
		{r2.Point{X: 1.5, Y: 0.5}, CellOccupied},
		{r2.Point{X: 0.5, Y: 1.5}, CellFree},
		{r2.Point{X: 1.5, Y: 1.5}, CellUnknown},
		{r2.Point{X: -3, Y: 0}, CellUnknown},
	}
	for _, tt := range tests {
		if got := g.Query(tt.p); got != tt.want {
			t.Errorf("Query(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if !g.Occupied(r2.Point{X: 1.5, Y: 0.5}) {
		t.Error("50% cell should be occupied at the default threshold")
	}
	if g.WithThresh(0.6).Occupied(r2.Point{X: 1.5, Y: 0.5}) {
		t.Error("50% cell should be free at 0.6")
	}
}

func TestNewCopiesProbs(t *testing.T) {
	probs := make([]int8, 4)
	g := mustGrid(t, 2, 2, 1, probs)
	probs[0] = 100
	if g.Prob(0, 0) != 0 {
		t.Error("grid must not alias the caller's slice")
	}
	if g.Prob(5, 5) != Unknown {
		t.Error("outside cells are unknown")
	}
}

func TestBounds(t *testing.T) {
	g, err := New(0.5, 4, 2, r2.Point{X: -1, Y: -1}, 1, make([]int8, 8))
	if err != nil {
		t.Fatal(err)
	}
	b := g.Bounds()
	if b.Lo() != (r2.Point{X: -1, Y: -1}) || b.Hi() != (r2.Point{X: 1, Y: 0}) {
		t.Errorf("unexpected bounds %v", b)
	}
}
