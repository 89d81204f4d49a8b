// internal/game/types.go
//
// Shared definitions for the game package.
// Defines:
//   - Error sentinels returned by board construction and moves.
//   - State: coarse outcome of a session (playing/won/lost).
//   - Coord: a (row, col) board position.

package game

import "errors"

var (
	// ErrInvalidLayout is returned when a layout is empty or ragged.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrOutOfBounds is returned for coordinates outside the board.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrGameFinished is returned by Game.Reveal once the outcome is decided.
	// Board itself never returns it.
	ErrGameFinished = errors.New("game finished")
)

// State is the coarse outcome of a game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Coord identifies a cell on the board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
