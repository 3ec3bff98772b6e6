package server

import (
	"github.com/xtding233/tile-merge/internal/board"
	"github.com/xtding233/tile-merge/internal/engine"
	"github.com/xtding233/tile-merge/internal/session"
	"github.com/xtding233/tile-merge/internal/tile"
)

// Wire views shared by the HTTP and gRPC adapters.

type StartView struct {
	ID      string         `json:"id"`
	Profile string         `json:"profile"`
	Version string         `json:"version,omitempty"`
	Mode    string         `json:"mode"`
	Size    int            `json:"size"`
	Placed  []board.Point  `json:"placed"`
	Next    tile.Kind      `json:"next"`
	Stats   session.Stats  `json:"stats"`
	Board   [][]*tile.Tile `json:"board"`
}

type NextView struct {
	ID   string    `json:"id"`
	Next tile.Kind `json:"next"`
}

type PlaceView struct {
	ID      string         `json:"id"`
	Outcome engine.Outcome `json:"outcome"`
	Next    tile.Kind      `json:"next"`
	Stats   session.Stats  `json:"stats"`
}

type StatsView struct {
	ID    string        `json:"id"`
	Stats session.Stats `json:"stats"`
}

type BoardView struct {
	ID    string         `json:"id"`
	Size  int            `json:"size"`
	Board [][]*tile.Tile `json:"board"`
}

type PreviewView struct {
	ID     string        `json:"id"`
	Anchor board.Point   `json:"anchor"`
	Cells  []board.Point `json:"cells"`
}

func newStartView(s *session.Session, profile string, placed []board.Point) StartView {
	cfg := s.Config()
	return StartView{
		ID:      s.ID(),
		Profile: profile,
		Version: cfg.Version,
		Mode:    cfg.Mode.String(),
		Size:    cfg.Size,
		Placed:  placed,
		Next:    s.PeekNext(),
		Stats:   s.Stats(),
		Board:   s.Board().Rows(),
	}
}

func newPlaceView(id string, s *session.Session, out engine.Outcome) PlaceView {
	return PlaceView{ID: id, Outcome: out, Next: s.PeekNext(), Stats: s.Stats()}
}

func newBoardView(id string, s *session.Session) BoardView {
	b := s.Board()
	return BoardView{ID: id, Size: b.Size(), Board: b.Rows()}
}
