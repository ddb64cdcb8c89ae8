// Package astar finds collision-free waypoint paths on a uniform lattice.
package astar

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/san-kum/navsim/internal/nav"
)

// Planner runs A* over the 8-connected lattice of points spaced by the search
// resolution. Start and goal are snapped to the nearest lattice point, edges cost their
// Euclidean length and the heuristic is the straight-line distance to the goal.
type Planner struct {
	logger *zap.SugaredLogger
}

var _ nav.PathSearcher = (*Planner)(nil)

func NewPlanner(logger *zap.SugaredLogger) *Planner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Planner{logger: logger}
}

// Search returns the lattice path from the snapped start to the snapped goal, both
// included.
func (p *Planner) Search(start, goal r2.Point, occ nav.Occupancy, resolution float64, bounds r2.Rect) ([]r2.Point, error) {
	if !(resolution > 0) {
		return nil, ErrBadResolution
	}

	l := newLattice(occ, resolution, bounds)
	sx, sy := l.snap(start)
	gx, gy := l.snap(goal)
	if !l.contains(sx, sy) || !l.contains(gx, gy) {
		return nil, errors.Wrapf(ErrOutOfBounds, "start %v goal %v bounds %v", start, goal, bounds)
	}

	sid, gid := l.id(sx, sy), l.id(gx, gy)
	if !l.isFree(sid) {
		return nil, errors.Wrapf(ErrStartBlocked, "%v", l.point(sid))
	}
	if !l.isFree(gid) {
		return nil, errors.Wrapf(ErrGoalBlocked, "%v", l.point(gid))
	}

	shortest, expanded := path.AStar(simple.Node(sid), simple.Node(gid), l, l.heuristic)
	nodes, cost := shortest.To(gid)
	if len(nodes) == 0 {
		p.logger.Debugw("search exhausted", "expanded", expanded)
		return nil, errors.Wrapf(ErrUnreachable, "from %v to %v", l.point(sid), l.point(gid))
	}

	waypoints := make([]r2.Point, len(nodes))
	for i, n := range nodes {
		waypoints[i] = l.point(n.ID())
	}
	p.logger.Debugw("path found", "waypoints", len(waypoints), "cost", cost, "expanded", expanded)
	return waypoints, nil
}
