package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/engine"
	"github.com/xtding233/tile-merge/internal/spawn"
	"github.com/xtding233/tile-merge/internal/tile"
)

var ErrCellOccupied = errors.New("cell occupied")

// Stats is a read-only snapshot of the session counters.
type Stats struct {
	Score        int `json:"score"`
	Moves        int `json:"moves"`
	MaxLevelSeen int `json:"max_level_seen"`
}

// Session owns one board, its spawner and counters. It is not safe for
// concurrent use; independent sessions share nothing.
type Session struct {
	id       string
	cfg      Config
	grid     *board.Grid
	spawner  *spawn.Spawner
	engine   *engine.Engine
	counters engine.Counters
	next     tile.Kind
	log      *zap.Logger
}

type options struct {
	id     string
	rng    spawn.RandomSource
	logger *zap.Logger
}

type Option func(*options)

// WithRNG makes spawning reproducible.
func WithRNG(rng spawn.RandomSource) Option { return func(o *options) { o.rng = rng } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

func WithID(id string) Option { return func(o *options) { o.id = id } }

// Start validates cfg and allocates an empty board. The first next tile is
// drawn immediately; call SpawnInitial to seed the board.
func Start(cfg Config, opts ...Option) (*Session, error) {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sp, err := spawn.NewSpawner(cfg.Mode, cfg.Elements, cfg.LevelWeights, cfg.InitialLevel, o.rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	log := o.logger
	if o.id != "" {
		log = log.With(zap.String("session", o.id))
	}
	eng, err := engine.New(cfg.Rules(), engine.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s := &Session{
		id:      o.id,
		cfg:     cfg,
		grid:    board.New(cfg.Size),
		spawner: sp,
		engine:  eng,
		log:     log,
	}
	if cfg.Mode.HasLevel() {
		s.counters.MaxLevelSeen = cfg.InitialLevel
	}
	s.next = sp.Next()
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Config() Config { return s.cfg }

// SpawnInitial drops InitialTiles pre-game tiles. Initial tiles never
// trigger resolution. It stops early when the board fills up.
func (s *Session) SpawnInitial() []board.Point {
	placed := make([]board.Point, 0, s.cfg.InitialTiles)
	for i := 0; i < s.cfg.InitialTiles; i++ {
		p, ok := s.spawner.SpawnOnto(s.grid, s.spawner.Initial())
		if !ok {
			s.log.Debug("initial spawn stopped: board full", zap.Int("placed", len(placed)))
			break
		}
		placed = append(placed, p)
	}
	return placed
}

// PeekNext returns the upcoming tile without touching the board.
func (s *Session) PeekNext() tile.Kind { return s.next }

// Place drops the next tile at p and resolves it. Rejected placements
// (out of bounds, occupied) leave the session unchanged.
func (s *Session) Place(p board.Point) (engine.Outcome, error) {
	empty, err := s.grid.IsEmpty(p)
	if err != nil {
		return engine.Outcome{}, err
	}
	if !empty {
		return engine.Outcome{}, fmt.Errorf("%w: %v", ErrCellOccupied, p)
	}
	if err := s.grid.Set(p, tile.New(s.next)); err != nil {
		return engine.Outcome{}, err
	}
	s.counters.Moves++
	out, err := s.engine.Resolve(s.grid, p, &s.counters)
	if err != nil {
		return out, err
	}
	placed := s.next
	s.next = s.spawner.Next()
	s.log.Debug("placed",
		zap.Stringer("at", p),
		zap.Stringer("kind", placed),
		zap.Bool("resolved", out.Resolved),
		zap.Bool("core", out.Core),
		zap.Int("score_delta", out.ScoreDelta),
		zap.Stringer("next", s.next),
	)
	return out, nil
}

// CoreEffect previews the area a core hit at anchor would clear.
func (s *Session) CoreEffect(anchor board.Point) ([]board.Point, error) {
	if !s.grid.InBounds(anchor) {
		return nil, fmt.Errorf("%w: %v", board.ErrOutOfBounds, anchor)
	}
	return s.engine.ComputeCoreEffect(s.grid, anchor), nil
}

// ApplyClear empties cells, typically the PendingClear of a deferred core
// outcome once the caller's transition has finished.
func (s *Session) ApplyClear(cells []board.Point) error {
	return s.engine.ApplyClear(s.grid, cells)
}

func (s *Session) Stats() Stats {
	return Stats{
		Score:        s.counters.Score,
		Moves:        s.counters.Moves,
		MaxLevelSeen: s.counters.MaxLevelSeen,
	}
}

// Board returns a copy of the grid.
func (s *Session) Board() *board.Grid { return s.grid.Clone() }
