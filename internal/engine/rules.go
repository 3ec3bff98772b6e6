package engine

import (
	"fmt"

	"github.com/xtding233/tile-merge/internal/region"
	"github.com/xtding233/tile-merge/internal/tile"
)

// Rules is one point in the variant space: match mode, core-pattern
// toggle, scoring toggles and the cascade bound.
type Rules struct {
	Mode tile.Mode

	// MinGroup is the smallest region that resolves; the game uses 3.
	MinGroup int
	// ComboThreshold raises the level bonus to +2 and adds combo score
	// for regions at least this large.
	ComboThreshold int

	CorePatterns bool
	Core         region.CoreRule
	// CoreScore awards plain-formula score on the core branch.
	CoreScore bool
	// DeferCoreClear leaves the board untouched on a core hit and reports
	// the cells in Outcome.PendingClear for the caller to apply later.
	DeferCoreClear bool

	Scoring bool

	// MaxCascade bounds the merge passes per placement.
	MaxCascade int
}

// DefaultRules reproduces the level-matching game without core patterns.
func DefaultRules() Rules {
	return Rules{
		Mode:           tile.ByLevel,
		MinGroup:       3,
		ComboThreshold: 5,
		Core:           region.DefaultCoreRule(),
		Scoring:        true,
		MaxCascade:     64,
	}
}

func (r Rules) Validate() error {
	if r.MinGroup < 1 {
		return fmt.Errorf("min group %d must be >= 1", r.MinGroup)
	}
	if r.ComboThreshold < 1 {
		return fmt.Errorf("combo threshold %d must be >= 1", r.ComboThreshold)
	}
	if r.MaxCascade < 1 {
		return fmt.Errorf("max cascade %d must be >= 1", r.MaxCascade)
	}
	if r.CorePatterns {
		if !r.Core.Lines && !r.Core.Squares {
			return fmt.Errorf("core patterns enabled with neither lines nor squares")
		}
		if r.Core.Lines {
			if r.Core.MinRun < 2 {
				return fmt.Errorf("core min run %d must be >= 2", r.Core.MinRun)
			}
			if r.Core.MaxRun > 0 && r.Core.MaxRun < r.Core.MinRun {
				return fmt.Errorf("core max run %d below min run %d", r.Core.MaxRun, r.Core.MinRun)
			}
		}
	}
	return nil
}
