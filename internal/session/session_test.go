package session

import (
	"errors"
	"testing"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/region"
	"github.com/xtding233/tile-merge/internal/spawn"
	"github.com/xtding233/tile-merge/internal/tile"
)

func pt(x, y int) board.Point { return board.Point{X: x, Y: y} }

func mustStart(t *testing.T, cfg Config, seed uint64) *Session {
	t.Helper()
	s, err := Start(cfg, WithRNG(spawn.NewSeededRNG(seed)), WithID("test"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSpawnInitial(t *testing.T) {
	s := mustStart(t, DefaultConfig(), 1)
	placed := s.SpawnInitial()
	if len(placed) != 4 {
		t.Fatalf("placed %d initial tiles, want 4", len(placed))
	}
	b := s.Board()
	if b.Count() != 4 {
		t.Fatalf("board holds %d tiles", b.Count())
	}
	for _, p := range placed {
		tl, ok, _ := b.Get(p)
		if !ok || tl.Level() != 1 {
			t.Fatalf("initial tile at %v = %v,%v", p, tl, ok)
		}
	}
	if st := s.Stats(); st.Moves != 0 || st.Score != 0 || st.MaxLevelSeen != 1 {
		t.Fatalf("stats after initial spawn = %+v", st)
	}
}

func TestSpawnInitialStopsOnFullBoard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 2
	cfg.InitialTiles = 4
	s := mustStart(t, cfg, 2)
	if got := len(s.SpawnInitial()); got != 4 {
		t.Fatalf("placed %d", got)
	}
	if got := len(s.SpawnInitial()); got != 0 {
		t.Fatalf("second spawn on full board placed %d", got)
	}
}

func TestPeekNextDoesNotMutate(t *testing.T) {
	s := mustStart(t, DefaultConfig(), 3)
	s.SpawnInitial()
	before := s.Board()
	k1, k2 := s.PeekNext(), s.PeekNext()
	if k1 != k2 || !s.Board().Equal(before) {
		t.Fatalf("PeekNext changed state")
	}
}

func TestPlaceUsesPreview(t *testing.T) {
	s := mustStart(t, DefaultConfig(), 4)
	want := s.PeekNext()
	p := pt(0, 0)
	if _, err := s.Place(p); err != nil {
		t.Fatal(err)
	}
	tl, ok, _ := s.Board().Get(p)
	if !ok || tl.Kind != want {
		t.Fatalf("placed %v,%v want %v", tl, ok, want)
	}
	if s.Stats().Moves != 1 {
		t.Fatalf("moves = %d", s.Stats().Moves)
	}
}

func TestPlaceRejections(t *testing.T) {
	s := mustStart(t, DefaultConfig(), 5)
	if _, err := s.Place(pt(1, 1)); err != nil {
		t.Fatal(err)
	}
	before := s.Board()
	next := s.PeekNext()
	stats := s.Stats()

	if _, err := s.Place(pt(1, 1)); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("occupied err = %v", err)
	}
	if _, err := s.Place(pt(5, 0)); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("out of bounds err = %v", err)
	}
	if _, err := s.Place(pt(0, -1)); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("out of bounds err = %v", err)
	}
	if !s.Board().Equal(before) || s.PeekNext() != next || s.Stats() != stats {
		t.Fatalf("rejected placement had side effects")
	}
}

func TestPlacePlusScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ComboThreshold = 10
	s := mustStart(t, cfg, 6)
	for _, p := range []board.Point{pt(2, 2), pt(1, 2), pt(3, 2), pt(2, 1), pt(2, 3)} {
		_ = s.grid.Set(p, tile.New(tile.Kind{Level: 1}))
	}
	s.next = tile.Kind{Level: 1}

	out, err := s.Place(pt(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Resolved || len(out.Cleared) != 5 || out.Final == nil || out.Final.Level() != 2 {
		t.Fatalf("outcome = %+v", out)
	}
	if st := s.Stats(); st.Score != 60 || st.Moves != 1 || st.MaxLevelSeen != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestDeferredClearThroughSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = tile.ByElement
	cfg.CorePatterns = true
	cfg.DeferCoreClear = true
	s := mustStart(t, cfg, 7)
	fire := tile.New(tile.Kind{Element: tile.Fire})
	for _, p := range []board.Point{pt(0, 0), pt(1, 0), pt(0, 1)} {
		_ = s.grid.Set(p, fire)
	}
	s.next = tile.Kind{Element: tile.Fire}

	preview, err := s.CoreEffect(pt(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Place(pt(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Core || len(out.PendingClear) != 4 || s.Board().Count() != 4 {
		t.Fatalf("outcome=%+v count=%d", out, s.Board().Count())
	}
	if len(preview) != 3 {
		t.Fatalf("preview before placement = %v", preview)
	}
	if err := s.ApplyClear(out.PendingClear); err != nil {
		t.Fatal(err)
	}
	if s.Board().Count() != 0 {
		t.Fatalf("board not cleared")
	}
	if _, err := s.CoreEffect(pt(9, 9)); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("CoreEffect out of bounds err = %v", err)
	}
}

// randomPlay places tiles on random empty cells until the board is full or
// moves run out, calling check after every placement.
func randomPlay(t *testing.T, cfg Config, seed uint64, moves int, check func(before *board.Grid, p board.Point, placed tile.Kind, s *Session, prevScore int)) {
	t.Helper()
	s := mustStart(t, cfg, seed)
	s.SpawnInitial()
	pick := spawn.NewSeededRNG(seed + 1000)
	for i := 0; i < moves; i++ {
		empty := s.Board().EmptyCells()
		if len(empty) == 0 {
			return
		}
		p := empty[pick.IntN(len(empty))]
		before := s.Board()
		placed := s.PeekNext()
		prev := s.Stats().Score
		if _, err := s.Place(p); err != nil {
			t.Fatalf("seed %d move %d: %v", seed, i, err)
		}
		check(before, p, placed, s, prev)
	}
}

func variantConfigs() map[string]Config {
	level := DefaultConfig()

	elem := DefaultConfig()
	elem.Mode = tile.ByElement
	elem.CorePatterns = true

	both := DefaultConfig()
	both.Mode = tile.ByElementAndLevel
	both.Elements = []tile.Element{tile.Fire, tile.Water}
	both.CorePatterns = true
	both.CoreScore = true

	return map[string]Config{"level": level, "element": elem, "element_level": both}
}

func TestScoreMonotonic(t *testing.T) {
	for name, cfg := range variantConfigs() {
		t.Run(name, func(t *testing.T) {
			for seed := uint64(1); seed <= 50; seed++ {
				randomPlay(t, cfg, seed, 200, func(_ *board.Grid, _ board.Point, _ tile.Kind, s *Session, prev int) {
					if s.Stats().Score < prev {
						t.Fatalf("seed %d: score decreased %d -> %d", seed, prev, s.Stats().Score)
					}
				})
			}
		})
	}
}

func TestSmallRegionOnlyAddsPlacement(t *testing.T) {
	for name, cfg := range variantConfigs() {
		t.Run(name, func(t *testing.T) {
			gated := 0
			for seed := uint64(1); seed <= 30; seed++ {
				randomPlay(t, cfg, seed, 100, func(before *board.Grid, p board.Point, placed tile.Kind, s *Session, _ int) {
					expect := before.Clone()
					_ = expect.Set(p, tile.New(placed))
					if region.FloodFill(expect, p, placed, cfg.Mode).Len() >= 3 {
						return
					}
					gated++
					if !expect.Equal(s.Board()) {
						t.Fatalf("seed %d: region < 3 at %v mutated more than the placed cell", seed, p)
					}
				})
			}
			if gated == 0 {
				t.Fatalf("no small-region placements exercised")
			}
		})
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Size = 0 },
		func(c *Config) { c.Size = board.MaxSize + 1 },
		func(c *Config) { c.Size = 2_000_000_000 },
		func(c *Config) { c.InitialTiles = 26 },
		func(c *Config) { c.ComboThreshold = 0 },
		func(c *Config) { c.LevelWeights = nil },
		func(c *Config) { c.Mode = tile.ByElement; c.Elements = nil },
	}
	for i, mut := range bad {
		cfg := DefaultConfig()
		mut(&cfg)
		if _, err := Start(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: err = %v", i, err)
		}
	}
}
