// types.go
package game

import "github.com/xtding233/tile-merge/internal/spawn"

// Raw profile loaded from YAML. Pointers distinguish "unset" from zero so
// layers can be merged.
type RawConfig struct {
	Version string        `yaml:"version"`
	Board   BoardConfig   `yaml:"board"`
	Match   MatchConfig   `yaml:"match"`
	Spawn   SpawnConfig   `yaml:"spawn"`
	Core    *CoreConfig   `yaml:"core,omitempty"`
	Scoring ScoringConfig `yaml:"scoring"`
	Cascade CascadeConfig `yaml:"cascade"`
	Notes   string        `yaml:"notes,omitempty"`
}

type BoardConfig struct {
	Size         *int `yaml:"size"`
	InitialTiles *int `yaml:"initial_tiles"`
	InitialLevel *int `yaml:"initial_level"`
}
type MatchConfig struct {
	Mode     string   `yaml:"mode"` // "level" | "element" | "element_level"
	Elements []string `yaml:"elements,omitempty"`
}
type SpawnConfig struct {
	Levels []spawn.LevelWeight `yaml:"levels,omitempty"`
}
type CoreConfig struct {
	Enabled    *bool `yaml:"enabled"`
	Lines      *bool `yaml:"lines,omitempty"`
	MinRun     *int  `yaml:"min_run,omitempty"`
	MaxRun     *int  `yaml:"max_run,omitempty"` // 0 = unbounded
	Squares    *bool `yaml:"squares,omitempty"`
	DeferClear *bool `yaml:"defer_clear,omitempty"`
	Score      *bool `yaml:"score,omitempty"`
}
type ScoringConfig struct {
	Enabled        *bool `yaml:"enabled"`
	ComboThreshold *int  `yaml:"combo_threshold"`
}
type CascadeConfig struct {
	MaxSteps *int `yaml:"max_steps"`
}
