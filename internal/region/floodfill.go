package region

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/tile"
)

// Order picks which of n pending frontier entries to expand next. The
// returned index must be in [0, n). The visited set does not depend on it.
type Order func(n int) int

var (
	// DepthFirst pops the most recently pushed cell.
	DepthFirst Order = func(n int) int { return n - 1 }
	// BreadthFirst pops the oldest cell.
	BreadthFirst Order = func(int) int { return 0 }
)

// FloodFill returns the maximal 4-connected region of cells whose kind
// equals kind under mode, grown from anchor. The region is empty when
// anchor is empty, out of bounds, or does not match.
func FloodFill(g *board.Grid, anchor board.Point, kind tile.Kind, mode tile.Mode) Region {
	return FloodFillOrder(g, anchor, kind, mode, DepthFirst)
}

// FloodFillOrder is FloodFill with an explicit frontier policy.
func FloodFillOrder(g *board.Grid, anchor board.Point, kind tile.Kind, mode tile.Mode, next Order) Region {
	out := newRegion()
	if !admits(g, anchor, kind, mode) {
		return out
	}
	if next == nil {
		next = DepthFirst
	}
	seen := mapset.New[board.Point]()
	seen.Put(anchor)
	frontier := []board.Point{anchor}
	for len(frontier) > 0 {
		i := next(len(frontier))
		cur := frontier[i]
		frontier = append(frontier[:i], frontier[i+1:]...)
		out.set.Put(cur)
		for _, n := range cur.Neighbors4() {
			if seen.Has(n) || !admits(g, n, kind, mode) {
				continue
			}
			seen.Put(n)
			frontier = append(frontier, n)
		}
	}
	return out
}

func admits(g *board.Grid, p board.Point, kind tile.Kind, mode tile.Mode) bool {
	if !g.InBounds(p) {
		return false
	}
	t, ok, _ := g.Get(p)
	return ok && mode.Match(t.Kind, kind)
}
