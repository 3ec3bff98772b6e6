// resolve.go
package game

import (
	"fmt"

	"github.com/xtding233/tile-merge/internal/session"
	"github.com/xtding233/tile-merge/internal/spawn"
	"github.com/xtding233/tile-merge/internal/tile"
)

// Overrides carries per-request tweaks applied on top of the merged profile.
type Overrides struct {
	Size           *int
	InitialTiles   *int
	Mode           *string
	CorePatterns   *bool
	DeferCoreClear *bool
	ComboThreshold *int
	MaxCascade     *int
}

type Resolver interface {
	// Returns merged RawConfig and the session config derived from it.
	Resolve(profile string, o Overrides) (RawConfig, session.Config, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → profile → overrides into a session config.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, session.Config, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, session.Config{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, session.Config{}, err
	}
	cfg, err := ToSessionConfig(raw)
	if err != nil {
		return raw, session.Config{}, err
	}
	return raw, cfg, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	patch := RawConfig{
		Board: BoardConfig{Size: o.Size, InitialTiles: o.InitialTiles},
		Scoring: ScoringConfig{
			ComboThreshold: o.ComboThreshold,
		},
		Cascade: CascadeConfig{MaxSteps: o.MaxCascade},
	}
	if o.Mode != nil {
		patch.Match.Mode = *o.Mode
	}
	if o.CorePatterns != nil || o.DeferCoreClear != nil {
		patch.Core = &CoreConfig{Enabled: o.CorePatterns, DeferClear: o.DeferCoreClear}
	}
	return mergeRaw(raw, patch)
}

// ToSessionConfig fills unset fields from session.DefaultConfig and
// converts the YAML names into typed values.
func ToSessionConfig(raw RawConfig) (session.Config, error) {
	cfg := session.DefaultConfig()
	cfg.Version = raw.Version

	if raw.Board.Size != nil {
		cfg.Size = *raw.Board.Size
	}
	if raw.Board.InitialTiles != nil {
		cfg.InitialTiles = *raw.Board.InitialTiles
	}
	if raw.Board.InitialLevel != nil {
		cfg.InitialLevel = *raw.Board.InitialLevel
	}

	if raw.Match.Mode != "" {
		m, err := tile.ParseMode(raw.Match.Mode)
		if err != nil {
			return session.Config{}, err
		}
		cfg.Mode = m
	}
	if len(raw.Match.Elements) > 0 {
		cfg.Elements = nil
		for _, s := range raw.Match.Elements {
			e, err := tile.ParseElement(s)
			if err != nil {
				return session.Config{}, err
			}
			cfg.Elements = append(cfg.Elements, e)
		}
	}
	if len(raw.Spawn.Levels) > 0 {
		cfg.LevelWeights = append([]spawn.LevelWeight(nil), raw.Spawn.Levels...)
	}

	if c := raw.Core; c != nil {
		if c.Enabled != nil {
			cfg.CorePatterns = *c.Enabled
		}
		if c.Lines != nil {
			cfg.Core.Lines = *c.Lines
		}
		if c.MinRun != nil {
			cfg.Core.MinRun = *c.MinRun
		}
		if c.MaxRun != nil {
			cfg.Core.MaxRun = *c.MaxRun
		}
		if c.Squares != nil {
			cfg.Core.Squares = *c.Squares
		}
		if c.DeferClear != nil {
			cfg.DeferCoreClear = *c.DeferClear
		}
		if c.Score != nil {
			cfg.CoreScore = *c.Score
		}
	}

	if raw.Scoring.Enabled != nil {
		cfg.Scoring = *raw.Scoring.Enabled
	}
	if raw.Scoring.ComboThreshold != nil {
		cfg.ComboThreshold = *raw.Scoring.ComboThreshold
	}
	if raw.Cascade.MaxSteps != nil {
		cfg.MaxCascade = *raw.Cascade.MaxSteps
	}

	if err := cfg.Validate(); err != nil {
		return session.Config{}, fmt.Errorf("profile %q: %w", raw.Version, err)
	}
	return cfg, nil
}
