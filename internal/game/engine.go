// internal/game/engine.go
//
// Game session wrapper around a Board.
// Responsibilities:
//   - Give each board a stable ID and bookkeeping (reveal count, timestamps).
//   - Apply player moves and report the coarse state (playing/won/lost).
//   - Disclose mines as soon as the outcome is decided.
//   - Serialize access to the board through a per-session mutex.
//
// Board stays permissive about moves after the end of a game; Game is the
// application layer and rejects them with ErrGameFinished.

package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Game is one player's session on one board.
type Game struct {
	ID         string     // Unique game identifier (uuid).
	Board      *Board     // Owned exclusively by this session.
	Reveals    int        // Accepted moves, including the one that ended the game.
	StartedAt  time.Time  // Creation time (UTC).
	FinishedAt *time.Time // Set when the board terminates.

	mu sync.Mutex
}

// New builds a session for the given layout.
func New(layout [][]bool) (*Game, error) {
	b, err := NewBoard(layout)
	if err != nil {
		return nil, err
	}
	return &Game{
		ID:        uuid.NewString(),
		Board:     b,
		StartedAt: time.Now().UTC(),
	}, nil
}

// Lock acquires exclusive access to the session.
func (g *Game) Lock() { g.mu.Lock() }

// Unlock releases the session.
func (g *Game) Unlock() { g.mu.Unlock() }

// Reveal applies a move at (row, col) and returns the resulting state.
//
// Validation rules:
//   - Game must not be finished.
//   - Coordinates must be on the board.
//
// When the move decides the game, mines are disclosed and FinishedAt is set.
func (g *Game) Reveal(row, col int) (State, error) {
	if g.Board.IsTerminated() {
		return g.State(), ErrGameFinished
	}
	if err := g.Board.UncoverCellAt(row, col); err != nil {
		return g.State(), err
	}
	g.Reveals++

	if g.Board.IsTerminated() {
		g.Board.RevealMines()
		now := time.Now().UTC()
		g.FinishedAt = &now
	}
	return g.State(), nil
}

// State reports the coarse state of the game.
func (g *Game) State() State {
	switch {
	case g.Board.MineTriggered():
		return StateLost
	case g.Board.IsWon():
		return StateWon
	default:
		return StatePlaying
	}
}

// Elapsed is the time from start to finish, or to now while still playing.
func (g *Game) Elapsed() time.Duration {
	if g.FinishedAt != nil {
		return g.FinishedAt.Sub(g.StartedAt)
	}
	return time.Since(g.StartedAt)
}
