package region

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/xtding233/tile-merge/internal/board"
)

// Region is an ephemeral set of grid coordinates produced by one
// resolution pass.
type Region struct {
	set mapset.Set[board.Point]
}

func newRegion() Region {
	return Region{set: mapset.New[board.Point]()}
}

// Of builds a region from explicit points.
func Of(points ...board.Point) Region {
	r := newRegion()
	for _, p := range points {
		r.set.Put(p)
	}
	return r
}

// The zero Region is empty; reads on it are safe.
func (r Region) Len() int { return r.set.Size() }

func (r Region) Has(p board.Point) bool { return r.set.Has(p) }

// Points returns the members in row-major order.
func (r Region) Points() []board.Point {
	out := make([]board.Point, 0, r.Len())
	r.set.Each(func(p board.Point) {
		out = append(out, p)
	})
	slices.SortFunc(out, func(a, b board.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// Equal reports whether both regions hold the same coordinates.
func (r Region) Equal(o Region) bool {
	if r.Len() != o.Len() {
		return false
	}
	for _, p := range r.Points() {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

// Bounds returns the inclusive bounding box. ok is false for an empty region.
func (r Region) Bounds() (minP, maxP board.Point, ok bool) {
	pts := r.Points()
	if len(pts) == 0 {
		return board.Point{}, board.Point{}, false
	}
	minP, maxP = pts[0], pts[0]
	for _, p := range pts[1:] {
		minP.X = min(minP.X, p.X)
		minP.Y = min(minP.Y, p.Y)
		maxP.X = max(maxP.X, p.X)
		maxP.Y = max(maxP.Y, p.Y)
	}
	return minP, maxP, true
}
