package astar

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/san-kum/navsim/internal/nav"
)

var neighbors = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// lattice is the implicit 8-connected graph of grid points k*resolution inside bounds.
// Nodes are created lazily as the search expands them; free-space queries are cached.
type lattice struct {
	occ        nav.Occupancy
	resolution float64
	loX, loY   int
	nx, ny     int
	free       map[int64]bool
}

func newLattice(occ nav.Occupancy, resolution float64, bounds r2.Rect) *lattice {
	loX := int(math.Ceil(bounds.X.Lo/resolution - 1e-9))
	loY := int(math.Ceil(bounds.Y.Lo/resolution - 1e-9))
	hiX := int(math.Floor(bounds.X.Hi/resolution + 1e-9))
	hiY := int(math.Floor(bounds.Y.Hi/resolution + 1e-9))
	return &lattice{
		occ:        occ,
		resolution: resolution,
		loX:        loX,
		loY:        loY,
		nx:         max(hiX-loX+1, 0),
		ny:         max(hiY-loY+1, 0),
		free:       make(map[int64]bool),
	}
}

// snap returns the lattice indices of the grid point nearest p.
func (l *lattice) snap(p r2.Point) (kx, ky int) {
	return int(math.Round(p.X / l.resolution)), int(math.Round(p.Y / l.resolution))
}

func (l *lattice) contains(kx, ky int) bool {
	return kx >= l.loX && ky >= l.loY && kx < l.loX+l.nx && ky < l.loY+l.ny
}

func (l *lattice) id(kx, ky int) int64 {
	return int64(ky-l.loY)*int64(l.nx) + int64(kx-l.loX)
}

func (l *lattice) indices(id int64) (kx, ky int) {
	return int(id%int64(l.nx)) + l.loX, int(id/int64(l.nx)) + l.loY
}

func (l *lattice) point(id int64) r2.Point {
	kx, ky := l.indices(id)
	return r2.Point{X: float64(kx) * l.resolution, Y: float64(ky) * l.resolution}
}

func (l *lattice) isFree(id int64) bool {
	if free, ok := l.free[id]; ok {
		return free
	}
	free := l.occ.IsFree(l.point(id))
	l.free[id] = free
	return free
}

func (l *lattice) adjacent(uid, vid int64) bool {
	ux, uy := l.indices(uid)
	vx, vy := l.indices(vid)
	dx, dy := vx-ux, vy-uy
	return uid != vid && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// From returns the free neighbours of id.
func (l *lattice) From(id int64) graph.Nodes {
	kx, ky := l.indices(id)
	nodes := make([]graph.Node, 0, len(neighbors))
	for _, d := range neighbors {
		nx, ny := kx+d[0], ky+d[1]
		if !l.contains(nx, ny) {
			continue
		}
		nid := l.id(nx, ny)
		if l.isFree(nid) {
			nodes = append(nodes, simple.Node(nid))
		}
	}
	return iterator.NewOrderedNodes(nodes)
}

// Edge returns the edge from uid to vid when both are free neighbours.
func (l *lattice) Edge(uid, vid int64) graph.Edge {
	if !l.adjacent(uid, vid) || !l.isFree(uid) || !l.isFree(vid) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

// Weight is the Euclidean length of the edge.
func (l *lattice) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	if !l.adjacent(xid, yid) {
		return math.Inf(1), false
	}
	return l.point(xid).Sub(l.point(yid)).Norm(), true
}

func (l *lattice) heuristic(x, y graph.Node) float64 {
	return l.point(x.ID()).Sub(l.point(y.ID())).Norm()
}
