package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/session"
	"github.com/xtding233/tile-merge/internal/spawn"
)

// Params describes one simulation run. Trial i is seeded with Seed+i so a
// run is reproducible end to end.
type Params struct {
	Config session.Config
	Trials int
	// Moves caps placements per trial; a trial also ends when the board fills.
	Moves int
	Seed  uint64
	// Logger is handed to every session; nil discards.
	Logger *zap.Logger
}

// Result aggregates per-trial metrics.
type Result struct {
	Trials int `json:"trials"`
	// Score is the final score of each trial.
	Score Stats `json:"score"`
	// Cascade is the deepest cascade (resolution passes) seen in each trial.
	Cascade Stats `json:"cascade"`
	// Placements is the number of moves each trial managed before stopping.
	Placements Stats `json:"placements"`
	// CapHits counts placements that stopped at the cascade bound.
	CapHits int `json:"cap_hits"`
}

type trial struct {
	score, maxSteps, moves, capHits int
}

// Run plays Trials random games and returns summary stats.
func Run(p Params) (Result, error) {
	if p.Trials <= 0 {
		return Result{}, nil
	}
	if err := p.Config.Validate(); err != nil {
		return Result{}, err
	}
	if p.Moves <= 0 {
		p.Moves = p.Config.Size * p.Config.Size * 4
	}
	scores := make([]int, p.Trials)
	depths := make([]int, p.Trials)
	moves := make([]int, p.Trials)
	res := Result{Trials: p.Trials}
	for i := 0; i < p.Trials; i++ {
		t, err := playOne(p, p.Seed+uint64(i))
		if err != nil {
			return Result{}, fmt.Errorf("trial %d: %w", i, err)
		}
		scores[i], depths[i], moves[i] = t.score, t.maxSteps, t.moves
		res.CapHits += t.capHits
	}
	res.Score = calcStats(scores)
	res.Cascade = calcStats(depths)
	res.Placements = calcStats(moves)
	return res, nil
}

// playOne drops tiles on uniformly random empty cells. Deferred core clears
// are applied right away.
func playOne(p Params, seed uint64) (trial, error) {
	s, err := session.Start(p.Config,
		session.WithRNG(spawn.NewSeededRNG(seed)),
		session.WithLogger(p.Logger),
		session.WithID(fmt.Sprintf("sim-%d", seed)),
	)
	if err != nil {
		return trial{}, err
	}
	s.SpawnInitial()
	pick := spawn.NewSeededRNG(^seed)

	var t trial
	for t.moves < p.Moves {
		empty := s.Board().EmptyCells()
		if len(empty) == 0 {
			break
		}
		out, err := s.Place(empty[pick.IntN(len(empty))])
		if err != nil {
			return trial{}, err
		}
		t.moves++
		t.maxSteps = max(t.maxSteps, out.Steps)
		if out.CapHit {
			t.capHits++
		}
		if len(out.PendingClear) > 0 {
			if err := s.ApplyClear(out.PendingClear); err != nil {
				return trial{}, err
			}
		}
	}
	t.score = s.Stats().Score
	return t, nil
}
