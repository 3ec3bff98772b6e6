package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/tile-merge/internal/spawn"
)

// DefaultProfile is the base layer every profile is merged onto.
const DefaultProfile = "default"

// Paths helper for profile files.
type Paths struct {
	BaseDir string // base directory, e.g., ./configs
}

func (p Paths) ProfileDir() string {
	return filepath.Join(p.BaseDir, "profiles")
}
func (p Paths) DefaultPath() string {
	return p.ProfilePath(DefaultProfile)
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.ProfileDir(), profile+".yaml")
}

// Loader reads YAML profiles and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name
}

// NewLoader creates a profile loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → profile. An empty profile name
// means the default alone. The default file must exist; a missing profile
// file is an error unless it is the default itself.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	if filepath.Base(profile) != profile {
		return RawConfig{}, fmt.Errorf("%w: profile name %q", ErrInvalidProfile, profile)
	}
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, found, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if !found {
		return RawConfig{}, fmt.Errorf("read default: %w", os.ErrNotExist)
	}
	merged := defCfg
	if profile != DefaultProfile {
		profCfg, found, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		if !found {
			return RawConfig{}, fmt.Errorf("profile %s: %w", profile, os.ErrNotExist)
		}
		merged = mergeRaw(merged, profCfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.cache[DefaultProfile] = defCfg
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. found is false for a missing file.
func readYAML(path string) (cfg RawConfig, found bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, true, err
	}
	return cfg, true, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where set.
// Slices (elements, spawn levels) are replaced wholesale.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// board
	out.Board.Size = pick(out.Board.Size, b.Board.Size)
	out.Board.InitialTiles = pick(out.Board.InitialTiles, b.Board.InitialTiles)
	out.Board.InitialLevel = pick(out.Board.InitialLevel, b.Board.InitialLevel)

	// match
	if b.Match.Mode != "" {
		out.Match.Mode = b.Match.Mode
	}
	if len(b.Match.Elements) > 0 {
		out.Match.Elements = append([]string(nil), b.Match.Elements...)
	}

	// spawn
	if len(b.Spawn.Levels) > 0 {
		out.Spawn.Levels = append([]spawn.LevelWeight(nil), b.Spawn.Levels...)
	}

	// core
	switch {
	case out.Core == nil && b.Core != nil:
		c := *b.Core
		out.Core = &c
	case out.Core != nil && b.Core != nil:
		c := *out.Core
		c.Enabled = pick(c.Enabled, b.Core.Enabled)
		c.Lines = pick(c.Lines, b.Core.Lines)
		c.MinRun = pick(c.MinRun, b.Core.MinRun)
		c.MaxRun = pick(c.MaxRun, b.Core.MaxRun)
		c.Squares = pick(c.Squares, b.Core.Squares)
		c.DeferClear = pick(c.DeferClear, b.Core.DeferClear)
		c.Score = pick(c.Score, b.Core.Score)
		out.Core = &c
	}

	// scoring
	out.Scoring.Enabled = pick(out.Scoring.Enabled, b.Scoring.Enabled)
	out.Scoring.ComboThreshold = pick(out.Scoring.ComboThreshold, b.Scoring.ComboThreshold)

	// cascade
	out.Cascade.MaxSteps = pick(out.Cascade.MaxSteps, b.Cascade.MaxSteps)

	return out
}

func pick[T any](a, b *T) *T {
	if b != nil {
		return b
	}
	return a
}
