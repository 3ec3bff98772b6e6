package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/region"
	"github.com/xtding233/tile-merge/internal/tile"
)

func pt(x, y int) board.Point { return board.Point{X: x, Y: y} }

func lvl(n int) tile.Tile { return tile.New(tile.Kind{Level: n}) }

func elem(e tile.Element) tile.Tile { return tile.New(tile.Kind{Element: e}) }

func mustEngine(t *testing.T, r Rules, opts ...Option) *Engine {
	t.Helper()
	e, err := New(r, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func put(t *testing.T, g *board.Grid, tl tile.Tile, pts ...board.Point) {
	t.Helper()
	for _, p := range pts {
		if err := g.Set(p, tl); err != nil {
			t.Fatal(err)
		}
	}
}

func plusGrid(t *testing.T) *board.Grid {
	g := board.New(5)
	put(t, g, lvl(1), pt(2, 2), pt(1, 2), pt(3, 2), pt(2, 1), pt(2, 3))
	return g
}

func TestPlusScenarioCollapse(t *testing.T) {
	r := DefaultRules()
	r.ComboThreshold = 10
	e := mustEngine(t, r)
	g := plusGrid(t)
	anchor := pt(1, 1)
	put(t, g, lvl(1), anchor)

	var c Counters
	out, err := e.Resolve(g, anchor, &c)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Resolved || out.Core {
		t.Fatalf("expected plain resolution, got %+v", out)
	}
	if len(out.Cleared) != 5 || g.Count() != 1 {
		t.Fatalf("cleared=%v count=%d, want 5 cleared and 1 left", out.Cleared, g.Count())
	}
	got, ok, _ := g.Get(anchor)
	if !ok || got.Level() != 2 {
		t.Fatalf("anchor = %v,%v want level 2", got, ok)
	}
	if want := 1 * 6 * 10; out.ScoreDelta != want || c.Score != want {
		t.Fatalf("score delta=%d total=%d want %d", out.ScoreDelta, c.Score, want)
	}
	if c.MaxLevelSeen != 2 {
		t.Fatalf("max level = %d, want 2", c.MaxLevelSeen)
	}
	if out.Final == nil || out.Final.Level() != 2 || len(out.Mutated) != 1 || out.Mutated[0] != anchor {
		t.Fatalf("final=%v mutated=%v", out.Final, out.Mutated)
	}
}

func TestComboBonus(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := plusGrid(t)
	put(t, g, lvl(1), pt(1, 1))

	var c Counters
	out, err := e.Resolve(g, pt(1, 1), &c)
	if err != nil {
		t.Fatal(err)
	}
	// 6 >= 5: +2 levels, 60 base + (6-5+1)*20 bonus
	if out.Final == nil || out.Final.Level() != 3 {
		t.Fatalf("final = %v, want level 3", out.Final)
	}
	if out.ScoreDelta != 100 {
		t.Fatalf("score delta = %d, want 100", out.ScoreDelta)
	}
}

func TestSmallRegionIsNoOp(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := board.New(5)
	put(t, g, lvl(4), pt(0, 0))
	put(t, g, lvl(4), pt(1, 0))
	put(t, g, lvl(4), pt(3, 3))
	before := g.Clone()

	c := Counters{MaxLevelSeen: 1}
	out, err := e.Resolve(g, pt(1, 0), &c)
	if err != nil {
		t.Fatal(err)
	}
	if !out.NoOp() || out.Steps != 0 || out.ScoreDelta != 0 {
		t.Fatalf("expected no-op, got %+v", out)
	}
	if !g.Equal(before) {
		t.Fatalf("region of 2 mutated the grid")
	}
	if c.MaxLevelSeen != 4 {
		t.Fatalf("max level = %d, want 4 from placed tile", c.MaxLevelSeen)
	}
}

func TestEmptyAnchorIsNoOp(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := board.New(3)
	out, err := e.Resolve(g, pt(1, 1), nil)
	if err != nil || !out.NoOp() || out.Final != nil {
		t.Fatalf("out=%+v err=%v", out, err)
	}
	if _, err := e.Resolve(g, pt(3, 0), nil); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("out-of-bounds anchor err = %v", err)
	}
}

func cascadeGrid(t *testing.T) *board.Grid {
	g := board.New(5)
	put(t, g, lvl(1), pt(1, 2), pt(3, 2), pt(2, 2))
	put(t, g, lvl(2), pt(2, 1), pt(2, 3))
	return g
}

func TestCascade(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := cascadeGrid(t)
	var c Counters
	out, err := e.Resolve(g, pt(2, 2), &c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Steps != 2 {
		t.Fatalf("steps = %d, want 2", out.Steps)
	}
	if out.Final == nil || out.Final.Level() != 3 || g.Count() != 1 {
		t.Fatalf("final=%v count=%d", out.Final, g.Count())
	}
	if want := 1*3*10 + 2*3*10; out.ScoreDelta != want {
		t.Fatalf("score = %d, want %d", out.ScoreDelta, want)
	}
	if len(out.Cleared) != 4 || len(out.Mutated) != 1 {
		t.Fatalf("cleared=%v mutated=%v", out.Cleared, out.Mutated)
	}
	if c.MaxLevelSeen != 3 {
		t.Fatalf("max level = %d", c.MaxLevelSeen)
	}
}

func TestCascadeCap(t *testing.T) {
	r := DefaultRules()
	r.MaxCascade = 1
	core, logs := observer.New(zapcore.WarnLevel)
	e := mustEngine(t, r, WithLogger(zap.New(core)))
	g := cascadeGrid(t)

	out, err := e.Resolve(g, pt(2, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.CapHit || out.Steps != 1 {
		t.Fatalf("expected cap hit after 1 step, got %+v", out)
	}
	if out.Final == nil || out.Final.Level() != 2 {
		t.Fatalf("final = %v, want level 2 left in place", out.Final)
	}
	if logs.FilterMessage("cascade cap reached").Len() != 1 {
		t.Fatalf("cap hit was not logged: %v", logs.All())
	}
}

func elementCoreRules() Rules {
	r := DefaultRules()
	r.Mode = tile.ByElement
	r.CorePatterns = true
	return r
}

func TestCoreLineClearsNeighbourhood(t *testing.T) {
	e := mustEngine(t, elementCoreRules())
	g := board.New(5)
	put(t, g, elem(tile.Fire), pt(0, 1), pt(1, 1), pt(2, 1))
	put(t, g, elem(tile.Stone), pt(3, 0))
	put(t, g, elem(tile.Water), pt(4, 0), pt(4, 2))
	anchor := pt(3, 1)
	put(t, g, elem(tile.Fire), anchor)

	reg := region.FloodFill(g, anchor, tile.Kind{Element: tile.Fire}, tile.ByElement)
	if region.Classify(reg, region.DefaultCoreRule()) != region.Core {
		t.Fatalf("row of 4 must classify as core")
	}

	var c Counters
	out, err := e.Resolve(g, anchor, &c)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Core || !out.Resolved {
		t.Fatalf("expected core outcome, got %+v", out)
	}
	for _, p := range []board.Point{pt(3, 0), pt(4, 0), pt(2, 1), pt(3, 1), pt(4, 2)} {
		if empty, _ := g.IsEmpty(p); !empty {
			t.Fatalf("%v should be cleared by the area effect", p)
		}
	}
	for _, p := range []board.Point{pt(0, 1), pt(1, 1)} {
		if empty, _ := g.IsEmpty(p); empty {
			t.Fatalf("%v is outside the 3x3 and must survive", p)
		}
	}
	if len(out.Cleared) != 5 || out.Final != nil {
		t.Fatalf("cleared=%v final=%v", out.Cleared, out.Final)
	}
	if c.Score != 0 || out.ScoreDelta != 0 {
		t.Fatalf("core branch scored %d without core scoring", c.Score)
	}
}

func TestElementPlainVanishes(t *testing.T) {
	e := mustEngine(t, elementCoreRules())
	g := board.New(5)
	put(t, g, elem(tile.Life), pt(2, 1), pt(1, 2), pt(3, 2), pt(2, 3))
	put(t, g, elem(tile.Life), pt(2, 2))

	var c Counters
	out, err := e.Resolve(g, pt(2, 2), &c)
	if err != nil {
		t.Fatal(err)
	}
	if out.Core || g.Count() != 0 || len(out.Cleared) != 5 {
		t.Fatalf("plus of 5 must vanish entirely: %+v count=%d", out, g.Count())
	}
	if out.ScoreDelta != 20 {
		t.Fatalf("combo-only score = %d, want 20", out.ScoreDelta)
	}
	if len(out.Mutated) != 0 || out.Final != nil {
		t.Fatalf("element mode must not upgrade: %+v", out)
	}
}

func TestDeferredCoreClear(t *testing.T) {
	r := elementCoreRules()
	r.DeferCoreClear = true
	e := mustEngine(t, r)
	g := board.New(4)
	put(t, g, elem(tile.Air), pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1))
	put(t, g, elem(tile.Stone), pt(2, 2))
	before := g.Clone()

	out, err := e.Resolve(g, pt(1, 1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Core || len(out.Cleared) != 0 {
		t.Fatalf("deferred core must not clear inline: %+v", out)
	}
	if !g.Equal(before) {
		t.Fatalf("deferred core mutated the grid")
	}
	want := e.ComputeCoreEffect(g, pt(1, 1))
	if len(out.PendingClear) != len(want) || len(want) != 5 {
		t.Fatalf("pending=%v want %v", out.PendingClear, want)
	}
	if err := e.ApplyClear(g, out.PendingClear); err != nil {
		t.Fatal(err)
	}
	if g.Count() != 0 {
		t.Fatalf("ApplyClear left %d tiles", g.Count())
	}
}

func TestCoreScoringFlag(t *testing.T) {
	r := DefaultRules()
	r.Mode = tile.ByElementAndLevel
	r.CorePatterns = true
	r.CoreScore = true
	e := mustEngine(t, r)
	g := board.New(5)
	fire1 := tile.New(tile.Kind{Element: tile.Fire, Level: 1})
	put(t, g, fire1, pt(2, 2), pt(3, 2), pt(2, 3), pt(3, 3))

	var c Counters
	out, err := e.Resolve(g, pt(2, 2), &c)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Core || out.ScoreDelta != 40 || c.Score != 40 {
		t.Fatalf("core with scoring: %+v score=%d", out, c.Score)
	}
}

func TestScoringDisabled(t *testing.T) {
	r := DefaultRules()
	r.Scoring = false
	e := mustEngine(t, r)
	g := plusGrid(t)
	var c Counters
	out, _ := e.Resolve(g, pt(2, 2), &c)
	if !out.Resolved || c.Score != 0 || c.MaxLevelSeen != 3 {
		t.Fatalf("out=%+v counters=%+v", out, c)
	}
}

func TestComputeCoreEffectClipsAndIsPure(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := board.New(3)
	for _, p := range g.EmptyCells() {
		put(t, g, lvl(1), p)
	}
	before := g.Clone()
	cells := e.ComputeCoreEffect(g, pt(0, 0))
	want := []board.Point{pt(0, 0), pt(1, 0), pt(0, 1), pt(1, 1)}
	if len(cells) != len(want) {
		t.Fatalf("cells = %v, want %v", cells, want)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Fatalf("cells = %v, want %v", cells, want)
		}
	}
	if !g.Equal(before) {
		t.Fatalf("ComputeCoreEffect mutated the grid")
	}
}

func TestApplyClearRejectsOutOfBounds(t *testing.T) {
	e := mustEngine(t, DefaultRules())
	g := board.New(3)
	put(t, g, lvl(1), pt(0, 0))
	err := e.ApplyClear(g, []board.Point{pt(0, 0), pt(5, 5)})
	if !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("err = %v", err)
	}
	if g.Count() != 1 {
		t.Fatalf("rejected clear must not mutate")
	}
}

func TestRulesValidate(t *testing.T) {
	bad := []func(*Rules){
		func(r *Rules) { r.MinGroup = 0 },
		func(r *Rules) { r.ComboThreshold = 0 },
		func(r *Rules) { r.MaxCascade = 0 },
		func(r *Rules) { r.CorePatterns = true; r.Core = region.CoreRule{} },
		func(r *Rules) { r.CorePatterns = true; r.Core.MinRun = 1 },
		func(r *Rules) { r.CorePatterns = true; r.Core.MaxRun = 3 },
	}
	for i, mut := range bad {
		r := DefaultRules()
		mut(&r)
		if _, err := New(r); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
