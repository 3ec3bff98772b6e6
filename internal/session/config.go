package session

import (
	"errors"
	"fmt"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/engine"
	"github.com/xtding233/tile-merge/internal/region"
	"github.com/xtding233/tile-merge/internal/spawn"
	"github.com/xtding233/tile-merge/internal/tile"
)

var ErrInvalidConfig = errors.New("invalid session config")

// Config enumerates everything a session is started with.
type Config struct {
	Size         int
	InitialTiles int
	InitialLevel int

	Mode         tile.Mode
	Elements     []tile.Element
	LevelWeights []spawn.LevelWeight

	CorePatterns   bool
	Core           region.CoreRule
	CoreScore      bool
	DeferCoreClear bool

	Scoring        bool
	ComboThreshold int
	MaxCascade     int

	Version string // effective profile version for tracing
}

// DefaultConfig is the classic 5×5 level-merge game.
func DefaultConfig() Config {
	return Config{
		Size:           5,
		InitialTiles:   4,
		InitialLevel:   1,
		Mode:           tile.ByLevel,
		Elements:       tile.Elements(),
		LevelWeights:   spawn.DefaultLevelWeights(),
		Core:           region.DefaultCoreRule(),
		Scoring:        true,
		ComboThreshold: 5,
		MaxCascade:     64,
	}
}

// Rules derives the engine rules from c.
func (c Config) Rules() engine.Rules {
	return engine.Rules{
		Mode:           c.Mode,
		MinGroup:       3,
		ComboThreshold: c.ComboThreshold,
		CorePatterns:   c.CorePatterns,
		Core:           c.Core,
		CoreScore:      c.CoreScore,
		DeferCoreClear: c.DeferCoreClear,
		Scoring:        c.Scoring,
		MaxCascade:     c.MaxCascade,
	}
}

func (c Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("%w: size %d must be >= 1", ErrInvalidConfig, c.Size)
	}
	if c.Size > board.MaxSize {
		return fmt.Errorf("%w: size %d exceeds %d", ErrInvalidConfig, c.Size, board.MaxSize)
	}
	if c.InitialTiles < 0 || c.InitialTiles > c.Size*c.Size {
		return fmt.Errorf("%w: initial tiles %d outside [0,%d]", ErrInvalidConfig, c.InitialTiles, c.Size*c.Size)
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
