package sim

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xtding233/tile-merge/internal/session"
	"github.com/xtding233/tile-merge/internal/spawn"
	"github.com/xtding233/tile-merge/internal/tile"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{4, 1, 3, 2})
	if s.Mean != 2.5 || s.Min != 1 || s.Max != 4 {
		t.Fatalf("stats = %+v", s)
	}
	if math.Abs(s.Var-1.25) > 1e-9 || math.Abs(s.P50-2.5) > 1e-9 {
		t.Fatalf("var=%f p50=%f", s.Var, s.P50)
	}
	if one := calcStats([]int{7}); one.P99 != 7 || one.StdDev != 0 {
		t.Fatalf("single sample = %+v", one)
	}
	if empty := calcStats(nil); empty.Mean != 0 {
		t.Fatalf("empty = %+v", empty)
	}
}

func TestPercentile(t *testing.T) {
	xs := []int{10, 20, 30, 40, 50}
	cases := []struct {
		p    float64
		want float64
	}{
		{-1, 10}, {0, 10}, {0.1, 14}, {0.5, 30}, {0.9, 46}, {1, 50}, {2, 50},
	}
	for _, c := range cases {
		if got := percentile(xs, c.p); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("percentile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	if got := percentile([]int{3}, 0.99); got != 3 {
		t.Fatalf("single sample percentile = %v", got)
	}
}

// Levels 1..10 on a 5x5 board: every placement must terminate well inside
// the cascade bound.
func TestCascadeTerminates(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.LevelWeights = nil
	for l := 1; l <= 10; l++ {
		cfg.LevelWeights = append(cfg.LevelWeights, spawn.LevelWeight{Level: l, Weight: 1})
	}
	for _, mode := range []tile.Mode{tile.ByLevel, tile.ByElement, tile.ByElementAndLevel} {
		cfg.Mode = mode
		cfg.CorePatterns = mode != tile.ByLevel
		res, err := Run(Params{Config: cfg, Trials: 300, Moves: 200, Seed: 11})
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}
		if res.CapHits != 0 {
			t.Fatalf("%v: %d placements hit the cascade cap", mode, res.CapHits)
		}
		if res.Cascade.Max >= cfg.MaxCascade || res.Cascade.Max > cfg.Size*cfg.Size {
			t.Fatalf("%v: cascade depth %d", mode, res.Cascade.Max)
		}
		if res.Score.Min < 0 {
			t.Fatalf("%v: negative score", mode)
		}
	}
}

func TestRunReproducible(t *testing.T) {
	p := Params{Config: session.DefaultConfig(), Trials: 50, Moves: 60, Seed: 99}
	a, err := Run(p)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Run(p)
	if a.Score.Mean != b.Score.Mean || a.Cascade.Max != b.Cascade.Max || a.Placements.Mean != b.Placements.Mean {
		t.Fatalf("same seed, different results: %+v vs %+v", a.Score, b.Score)
	}
}

func TestRunReportsCapHits(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := session.DefaultConfig()
	cfg.MaxCascade = 1
	res, err := Run(Params{Config: cfg, Trials: 200, Moves: 100, Seed: 5, Logger: zap.New(core)})
	if err != nil {
		t.Fatal(err)
	}
	if res.CapHits == 0 {
		t.Fatalf("expected cascades to hit a cap of 1")
	}
	if res.Cascade.Max != 1 {
		t.Fatalf("cascade depth %d exceeds cap", res.Cascade.Max)
	}
	if n := logs.FilterMessage("cascade cap reached").Len(); n != res.CapHits {
		t.Fatalf("logged %d cap warnings, counted %d", n, res.CapHits)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Size = 0
	if _, err := Run(Params{Config: cfg, Trials: 1}); err == nil {
		t.Fatal("expected error")
	}
	if res, err := Run(Params{Config: cfg}); err != nil || res.Trials != 0 {
		t.Fatalf("zero trials = %+v, %v", res, err)
	}
}
