// internal/game/cell.go
//
// Cell is a single board position.
// It knows whether it hides a mine, whether it has been uncovered, and the
// adjacent-mine count recorded when it was uncovered. It has no knowledge of
// the board around it; Board decides when and how a cell is uncovered.

package game

// Cell holds the state of one board position.
type Cell struct {
	mine      bool // fixed at construction
	uncovered bool // flips once, never back
	adjacent  int  // only meaningful when uncovered && !mine
}

// NewCell builds a covered cell.
func NewCell(mine bool) Cell {
	return Cell{mine: mine}
}

// IsMine reports whether the cell hides a mine.
func (c Cell) IsMine() bool { return c.mine }

// IsUncovered reports whether the cell is visible.
func (c Cell) IsUncovered() bool { return c.uncovered }

// AdjacentMines returns the count stored by Uncover.
// The second result is false while the count is unset (covered cells and
// mines disclosed through Reveal).
func (c Cell) AdjacentMines() (int, bool) {
	if !c.uncovered || c.mine {
		return 0, false
	}
	return c.adjacent, true
}

// Uncover makes the cell visible and records its adjacent-mine count.
// A second call is a no-op; the first count sticks.
func (c *Cell) Uncover(adjacentMines int) {
	if c.uncovered {
		return
	}
	c.uncovered = true
	c.adjacent = adjacentMines
}

// Reveal forces the cell visible without touching the count.
// Used for end-of-game mine disclosure.
func (c *Cell) Reveal() {
	c.uncovered = true
}
