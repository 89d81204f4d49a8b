// internal/game/board.go
//
// Board is the rule engine of a single minesweeper grid.
// Responsibilities:
//   - Build a fixed-size grid of Cells from a rectangular mine layout.
//   - Uncover cells, cascading through zero-count regions (flood fill).
//   - Decide win/loss and disclose mines once the game is decided.
//
// Notes:
//   - Cells are stored flat, indexed by row*cols + col.
//   - The flood fill uses an explicit stack, so board size does not bound
//     recursion depth. The uncovered flag doubles as the visited set.
//   - Board is not safe for concurrent use. Callers serialize access
//     (see Game.Lock).
//   - Moves after the game is decided are accepted and change nothing about
//     the outcome.
package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Board owns the cells of one game.
type Board struct {
	rows, cols    int
	cells         []Cell
	mineTriggered bool
}

// NewBoard builds a board from a layout where true marks a mine.
// The layout must have at least one row, at least one column, and rows of
// equal length.
func NewBoard(layout [][]bool) (*Board, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidLayout)
	}
	rows, cols := len(layout), len(layout[0])
	cells := make([]Cell, 0, rows*cols)
	for r, line := range layout {
		if len(line) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidLayout, r, len(line), cols)
		}
		for _, mine := range line {
			cells = append(cells, NewCell(mine))
		}
	}
	return &Board{rows: rows, cols: cols, cells: cells}, nil
}

// RowsLength returns the number of rows.
func (b *Board) RowsLength() int { return b.rows }

// ColumnsLength returns the number of columns.
func (b *Board) ColumnsLength() int { return b.cols }

// CellAt returns a copy of the cell at (row, col).
func (b *Board) CellAt(row, col int) (Cell, error) {
	if !b.inBounds(row, col) {
		return Cell{}, outOfBounds(row, col)
	}
	return b.cells[b.index(row, col)], nil
}

// NumberOfMines counts mine cells.
func (b *Board) NumberOfMines() int {
	n := 0
	for _, c := range b.cells {
		if c.IsMine() {
			n++
		}
	}
	return n
}

// MineTriggered reports whether a reveal has ever hit a mine.
func (b *Board) MineTriggered() bool { return b.mineTriggered }

// UncoverCellAt is the player's move.
// Hitting a mine only flags the loss; no cell changes. Anything else runs
// the flood fill from (row, col).
func (b *Board) UncoverCellAt(row, col int) error {
	if !b.inBounds(row, col) {
		return outOfBounds(row, col)
	}
	if b.cells[b.index(row, col)].IsMine() {
		b.mineTriggered = true
		return nil
	}
	b.floodFill(row, col)
	return nil
}

// IsWon is true when no mine was triggered and every safe cell is uncovered.
func (b *Board) IsWon() bool {
	if b.mineTriggered {
		return false
	}
	for _, c := range b.cells {
		if !c.IsMine() && !c.IsUncovered() {
			return false
		}
	}
	return true
}

// IsTerminated is true once the game is won or lost.
func (b *Board) IsTerminated() bool {
	return b.mineTriggered || b.IsWon()
}

// RevealMines uncovers every mine for end-of-game display.
// Does nothing while the game is still running.
func (b *Board) RevealMines() {
	if !b.IsTerminated() {
		return
	}
	for i := range b.cells {
		if b.cells[i].IsMine() {
			b.cells[i].Reveal()
		}
	}
}

// Neighbors returns the in-bounds Moore neighbors of (row, col).
func (b *Board) Neighbors(row, col int) []Coord {
	out := make([]Coord, 0, 8)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if r, c := row+i, col+j; b.inBounds(r, c) {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// String renders the board one row per line:
// '-' covered, '*' visible mine, '.' zero, digits for counts.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			cell := b.cells[b.index(r, c)]
			switch {
			case !cell.IsUncovered():
				sb.WriteByte('-')
			case cell.IsMine():
				sb.WriteByte('*')
			case cell.adjacent == 0:
				sb.WriteByte('.')
			default:
				sb.WriteString(strconv.Itoa(cell.adjacent))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// floodFill uncovers (row, col) and, while counts stay at zero, the
// connected region around it plus its numbered border.
func (b *Board) floodFill(row, col int) {
	stack := []Coord{{Row: row, Col: col}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !b.inBounds(p.Row, p.Col) {
			continue
		}
		cell := &b.cells[b.index(p.Row, p.Col)]
		if cell.IsUncovered() {
			continue
		}

		neighbors := b.Neighbors(p.Row, p.Col)
		count := b.countMines(neighbors)
		cell.Uncover(count)

		if count == 0 {
			stack = append(stack, neighbors...)
		}
	}
}

// countMines counts mines among the given positions.
func (b *Board) countMines(ps []Coord) int {
	n := 0
	for _, p := range ps {
		if b.cells[b.index(p.Row, p.Col)].IsMine() {
			n++
		}
	}
	return n
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

func (b *Board) index(row, col int) int { return row*b.cols + col }

func outOfBounds(row, col int) error {
	return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, row, col)
}
