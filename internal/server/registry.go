package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/game"
	"github.com/xtding233/tile-merge/internal/session"
	"github.com/xtding233/tile-merge/internal/spawn"
)

var ErrUnknownSession = errors.New("unknown session")

// StartRequest selects a profile, optional overrides and an optional seed.
type StartRequest struct {
	Profile   string
	Overrides game.Overrides
	Seed      *uint64
}

// Registry holds live sessions keyed by id. Each session has its own lock;
// the registry lock only guards the map.
type Registry struct {
	resolver game.Resolver
	log      *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	s       *session.Session
	profile string
	// pending accumulates deferred core clears not yet applied.
	pending []board.Point
}

func NewRegistry(resolver game.Resolver, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		resolver: resolver,
		log:      log,
		sessions: make(map[string]*entry),
	}
}

// Start resolves the profile, starts a session and spawns its initial tiles.
func (r *Registry) Start(req StartRequest) (StartView, error) {
	raw, cfg, err := r.resolver.Resolve(req.Profile, req.Overrides)
	if err != nil {
		return StartView{}, err
	}
	id := uuid.NewString()
	opts := []session.Option{session.WithID(id), session.WithLogger(r.log)}
	if req.Seed != nil {
		opts = append(opts, session.WithRNG(spawn.NewSeededRNG(*req.Seed)))
	}
	s, err := session.Start(cfg, opts...)
	if err != nil {
		return StartView{}, err
	}
	placed := s.SpawnInitial()

	profile := req.Profile
	if profile == "" {
		profile = game.DefaultProfile
	}
	r.mu.Lock()
	r.sessions[id] = &entry{s: s, profile: profile}
	r.mu.Unlock()

	r.log.Info("session started",
		zap.String("session", id),
		zap.String("profile", profile),
		zap.String("version", raw.Version),
		zap.Stringer("mode", cfg.Mode),
		zap.Int("size", cfg.Size),
	)
	return newStartView(s, profile, placed), nil
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	return e, nil
}

// with runs fn while holding the session lock.
func (r *Registry) with(id string, fn func(e *entry) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

func (r *Registry) Next(id string) (NextView, error) {
	var v NextView
	err := r.with(id, func(e *entry) error {
		v = NextView{ID: id, Next: e.s.PeekNext()}
		return nil
	})
	return v, err
}

// Place drops the next tile at p. Deferred core clears add to the pending
// cells so a later Clear without cells applies all of them.
func (r *Registry) Place(id string, p board.Point) (PlaceView, error) {
	var v PlaceView
	err := r.with(id, func(e *entry) error {
		out, err := e.s.Place(p)
		if err != nil {
			return err
		}
		e.pending = append(e.pending, out.PendingClear...)
		v = newPlaceView(id, e.s, out)
		return nil
	})
	return v, err
}

// Clear applies cells, or the pending deferred clear when cells is empty.
func (r *Registry) Clear(id string, cells []board.Point) (BoardView, error) {
	var v BoardView
	err := r.with(id, func(e *entry) error {
		if len(cells) == 0 {
			cells = e.pending
		}
		if err := e.s.ApplyClear(cells); err != nil {
			return err
		}
		e.pending = nil
		v = newBoardView(id, e.s)
		return nil
	})
	return v, err
}

// Preview reports the cells a core hit at p would clear.
func (r *Registry) Preview(id string, p board.Point) (PreviewView, error) {
	var v PreviewView
	err := r.with(id, func(e *entry) error {
		cells, err := e.s.CoreEffect(p)
		if err != nil {
			return err
		}
		v = PreviewView{ID: id, Anchor: p, Cells: cells}
		return nil
	})
	return v, err
}

func (r *Registry) Stats(id string) (StatsView, error) {
	var v StatsView
	err := r.with(id, func(e *entry) error {
		v = StatsView{ID: id, Stats: e.s.Stats()}
		return nil
	})
	return v, err
}

func (r *Registry) Board(id string) (BoardView, error) {
	var v BoardView
	err := r.with(id, func(e *entry) error {
		v = newBoardView(id, e.s)
		return nil
	})
	return v, err
}

// End drops the session and returns its final stats.
func (r *Registry) End(id string) (StatsView, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return StatsView{}, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.s.Stats()
	r.log.Info("session ended",
		zap.String("session", id),
		zap.String("profile", e.profile),
		zap.Int("score", st.Score),
		zap.Int("moves", st.Moves),
	)
	return StatsView{ID: id, Stats: st}, nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
