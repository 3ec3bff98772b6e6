package spawn

import (
	"fmt"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/tile"
)

// LevelWeight is one entry of the next-tile level distribution.
type LevelWeight struct {
	Level  int     `json:"level" yaml:"level"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// DefaultLevelWeights biases early play toward low levels: 70% L1, 20% L2, 10% L3.
func DefaultLevelWeights() []LevelWeight {
	return []LevelWeight{{1, 0.7}, {2, 0.2}, {3, 0.1}}
}

// Spawner produces tile kinds and drops tiles onto empty cells. It only
// looks at the board to find empty cells.
type Spawner struct {
	mode         tile.Mode
	elements     []tile.Element
	levels       []int
	weights      []float64
	initialLevel int
	RNG          RandomSource
}

// NewSpawner validates the distribution for mode. elements is required for
// element-carrying modes, levels for level-carrying ones.
func NewSpawner(mode tile.Mode, elements []tile.Element, levels []LevelWeight, initialLevel int, rng RandomSource) (*Spawner, error) {
	if rng == nil {
		rng = DefaultRNG()
	}
	s := &Spawner{mode: mode, initialLevel: initialLevel, RNG: rng}
	if mode.HasElement() {
		if len(elements) == 0 {
			return nil, fmt.Errorf("spawner: mode %v needs at least one element", mode)
		}
		s.elements = append([]tile.Element(nil), elements...)
	}
	if mode.HasLevel() {
		for _, lw := range levels {
			if lw.Level < 1 {
				return nil, fmt.Errorf("spawner: level %d must be >= 1", lw.Level)
			}
			s.levels = append(s.levels, lw.Level)
			s.weights = append(s.weights, lw.Weight)
		}
		if err := validateWeights(s.weights); err != nil {
			return nil, fmt.Errorf("spawner: level distribution: %w", err)
		}
		if initialLevel < 1 {
			return nil, fmt.Errorf("spawner: initial level %d must be >= 1", initialLevel)
		}
	}
	return s, nil
}

// Next draws the kind of the upcoming tile.
func (s *Spawner) Next() tile.Kind {
	var k tile.Kind
	if s.mode.HasLevel() {
		// weights were validated in NewSpawner
		i, _ := Pick(s.weights, s.RNG)
		k.Level = s.levels[i]
	}
	if s.mode.HasElement() {
		k.Element = s.elements[s.RNG.IntN(len(s.elements))]
	}
	return k
}

// Initial draws the kind of a pre-game tile: levels start at the initial
// level, elements are uniform.
func (s *Spawner) Initial() tile.Kind {
	var k tile.Kind
	if s.mode.HasLevel() {
		k.Level = s.initialLevel
	}
	if s.mode.HasElement() {
		k.Element = s.elements[s.RNG.IntN(len(s.elements))]
	}
	return k
}

// SpawnOnto places a tile of kind k on a uniformly chosen empty cell.
// A full board is not an error: ok is false and nothing changes.
func (s *Spawner) SpawnOnto(g *board.Grid, k tile.Kind) (board.Point, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return board.Point{}, false
	}
	p := empty[s.RNG.IntN(len(empty))]
	// p comes from EmptyCells so it is in bounds
	_ = g.Set(p, tile.New(k))
	return p, true
}
