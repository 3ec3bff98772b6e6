package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/region"
	"github.com/xtding233/tile-merge/internal/tile"
)

// Counters are the per-session score and progress values the engine
// updates while resolving.
type Counters struct {
	Score        int `json:"score"`
	Moves        int `json:"moves"`
	MaxLevelSeen int `json:"max_level_seen"`
}

func (c *Counters) observeLevel(l int) {
	if l > c.MaxLevelSeen {
		c.MaxLevelSeen = l
	}
}

// Outcome summarizes one Resolve call including all cascade passes.
type Outcome struct {
	Anchor   board.Point `json:"anchor"`
	Resolved bool        `json:"resolved"` // false means no-op
	Core     bool        `json:"core"`

	Cleared      []board.Point `json:"cleared,omitempty"`
	Mutated      []board.Point `json:"mutated,omitempty"`
	PendingClear []board.Point `json:"pending_clear,omitempty"`

	Final      *tile.Tile `json:"final,omitempty"` // nil when the anchor ends empty
	ScoreDelta int        `json:"score_delta"`
	Steps      int        `json:"steps"` // merge passes, cascades included
	CapHit     bool       `json:"cap_hit,omitempty"`
}

func (o Outcome) NoOp() bool { return !o.Resolved }

// Engine applies Rules to a grid. It keeps no board state of its own and is
// safe to share between sessions.
type Engine struct {
	rules Rules
	log   *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func New(rules Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("engine rules: %w", err)
	}
	e := &Engine{rules: rules, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Rules() Rules { return e.rules }

// Resolve runs the resolution pipeline at anchor: flood fill, size gate,
// classification, then area clear or collapse-and-upgrade, repeated while
// the upgraded anchor keeps qualifying. c receives score and level updates.
func (e *Engine) Resolve(g *board.Grid, anchor board.Point, c *Counters) (Outcome, error) {
	out := Outcome{Anchor: anchor}
	if c == nil {
		c = &Counters{}
	}
	for {
		t, ok, err := g.Get(anchor)
		if err != nil {
			return out, err
		}
		if !ok {
			break
		}
		reg := region.FloodFill(g, anchor, t.Kind, e.rules.Mode)
		if reg.Len() < e.rules.MinGroup {
			if e.rules.Mode.HasLevel() {
				c.observeLevel(t.Level())
			}
			break
		}
		if out.Steps >= e.rules.MaxCascade {
			out.CapHit = true
			e.log.Warn("cascade cap reached",
				zap.Stringer("anchor", anchor),
				zap.Int("steps", out.Steps),
				zap.Stringer("tile", t),
				zap.Int("region", reg.Len()),
			)
			break
		}
		out.Resolved = true
		out.Steps++

		shape := region.Plain
		if e.rules.CorePatterns {
			shape = region.Classify(reg, e.rules.Core)
		}
		before := out.ScoreDelta
		if shape == region.Core {
			e.applyCore(g, anchor, t, reg, c, &out)
		}
		upgraded := shape == region.Plain && e.collapse(g, anchor, t, reg, c, &out)
		e.log.Debug("resolve pass",
			zap.Stringer("anchor", anchor),
			zap.Int("step", out.Steps),
			zap.Stringer("tile", t),
			zap.Int("region", reg.Len()),
			zap.Stringer("shape", shape),
			zap.Int("score_delta", out.ScoreDelta-before),
		)
		if !upgraded {
			break
		}
	}
	if t, ok, _ := g.Get(anchor); ok {
		out.Final = &t
	}
	return out, nil
}

// applyCore clears the neighbourhood of anchor, or defers it.
func (e *Engine) applyCore(g *board.Grid, anchor board.Point, t tile.Tile, reg region.Region, c *Counters, out *Outcome) {
	out.Core = true
	if e.rules.Scoring && e.rules.CoreScore {
		d := e.score(t, reg.Len())
		c.Score += d
		out.ScoreDelta += d
	}
	cells := e.ComputeCoreEffect(g, anchor)
	if e.rules.DeferCoreClear {
		out.PendingClear = append(out.PendingClear, cells...)
		return
	}
	// cells are in bounds by construction
	_ = e.ApplyClear(g, cells)
	out.Cleared = append(out.Cleared, cells...)
}

// collapse clears the region except the anchor and upgrades the anchor.
// Without levels the anchor vanishes too. Reports whether an upgraded
// tile was left at anchor.
func (e *Engine) collapse(g *board.Grid, anchor board.Point, t tile.Tile, reg region.Region, c *Counters, out *Outcome) bool {
	n := reg.Len()
	for _, p := range reg.Points() {
		if p == anchor {
			continue
		}
		// region cells are in bounds by construction
		_ = g.Clear(p)
		out.Cleared = append(out.Cleared, p)
	}
	if e.rules.Scoring {
		d := e.score(t, n)
		c.Score += d
		out.ScoreDelta += d
	}
	if !e.rules.Mode.HasLevel() {
		// anchor was read from the grid by Resolve
		_ = g.Clear(anchor)
		out.Cleared = append(out.Cleared, anchor)
		return false
	}
	inc := 1
	if n >= e.rules.ComboThreshold {
		inc = 2
	}
	up := t.Upgraded(inc)
	// anchor was read from the grid by Resolve
	_ = g.Set(anchor, up)
	if !slices.Contains(out.Mutated, anchor) {
		out.Mutated = append(out.Mutated, anchor)
	}
	c.observeLevel(up.Level())
	return true
}

func (e *Engine) score(t tile.Tile, n int) int {
	s := 0
	if e.rules.Mode.HasLevel() {
		s += t.Level() * n * 10
	}
	if n >= e.rules.ComboThreshold {
		s += (n - e.rules.ComboThreshold + 1) * 20
	}
	return s
}

// ComputeCoreEffect lists the occupied cells of the 3×3 neighbourhood
// centred on anchor, clipped to the grid, in row-major order. Pure.
func (e *Engine) ComputeCoreEffect(g *board.Grid, anchor board.Point) []board.Point {
	var cells []board.Point
	for y := anchor.Y - 1; y <= anchor.Y+1; y++ {
		for x := anchor.X - 1; x <= anchor.X+1; x++ {
			p := board.Point{X: x, Y: y}
			if !g.InBounds(p) {
				continue
			}
			if _, ok, _ := g.Get(p); ok {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// ApplyClear empties every cell in cells. All coordinates are checked
// before anything is cleared.
func (e *Engine) ApplyClear(g *board.Grid, cells []board.Point) error {
	for _, p := range cells {
		if !g.InBounds(p) {
			return fmt.Errorf("apply clear: %w: %v", board.ErrOutOfBounds, p)
		}
	}
	for _, p := range cells {
		_ = g.Clear(p)
	}
	return nil
}
