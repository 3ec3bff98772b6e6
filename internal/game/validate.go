package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/tile"
)

// ErrInvalidProfile wraps every profile validation failure.
var ErrInvalidProfile = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// board
	size := 0
	if cfg.Board.Size != nil {
		size = *cfg.Board.Size
		if size < 1 {
			errs = append(errs, "board.size must be >= 1")
		} else if size > board.MaxSize {
			errs = append(errs, fmt.Sprintf("board.size must be <= %d", board.MaxSize))
		}
	}
	if cfg.Board.InitialTiles != nil {
		n := *cfg.Board.InitialTiles
		if n < 0 {
			errs = append(errs, "board.initial_tiles must be >= 0")
		} else if size >= 1 && size <= board.MaxSize && n > size*size {
			errs = append(errs, fmt.Sprintf("board.initial_tiles must be <= %d for a %dx%d board", size*size, size, size))
		}
	}
	if cfg.Board.InitialLevel != nil && *cfg.Board.InitialLevel < 1 {
		errs = append(errs, "board.initial_level must be >= 1")
	}

	// match
	mode := tile.ByLevel
	if cfg.Match.Mode != "" {
		m, err := tile.ParseMode(cfg.Match.Mode)
		if err != nil {
			errs = append(errs, "match.mode must be one of: level, element, element_level")
		} else {
			mode = m
		}
	}
	for i, e := range cfg.Match.Elements {
		if _, err := tile.ParseElement(e); err != nil {
			errs = append(errs, fmt.Sprintf("match.elements[%d]: %v", i, err))
		}
	}

	// spawn
	if mode.HasLevel() {
		positive := false
		for i, lw := range cfg.Spawn.Levels {
			if lw.Level < 1 {
				errs = append(errs, fmt.Sprintf("spawn.levels[%d].level must be >= 1", i))
			}
			if lw.Weight < 0 || math.IsNaN(lw.Weight) || math.IsInf(lw.Weight, 0) {
				errs = append(errs, fmt.Sprintf("spawn.levels[%d].weight must be finite and >= 0", i))
			} else if lw.Weight > 0 {
				positive = true
			}
		}
		if len(cfg.Spawn.Levels) > 0 && !positive {
			errs = append(errs, "spawn.levels needs at least one positive weight")
		}
	}

	// core
	if c := cfg.Core; c != nil {
		if c.MinRun != nil && *c.MinRun < 2 {
			errs = append(errs, "core.min_run must be >= 2")
		}
		if c.MaxRun != nil {
			if *c.MaxRun < 0 {
				errs = append(errs, "core.max_run must be >= 0 (0 means unbounded)")
			} else if c.MinRun != nil && *c.MaxRun > 0 && *c.MaxRun < *c.MinRun {
				errs = append(errs, "core.max_run must be 0 or >= core.min_run")
			}
		}
		if isTrue(c.Enabled) && isFalse(c.Lines) && isFalse(c.Squares) {
			errs = append(errs, "core.enabled needs lines or squares")
		}
	}

	// scoring
	if cfg.Scoring.ComboThreshold != nil && *cfg.Scoring.ComboThreshold < 1 {
		errs = append(errs, "scoring.combo_threshold must be >= 1")
	}

	// cascade
	if cfg.Cascade.MaxSteps != nil && *cfg.Cascade.MaxSteps < 1 {
		errs = append(errs, "cascade.max_steps must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(errs, "; "))
	}
	return nil
}

func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }
