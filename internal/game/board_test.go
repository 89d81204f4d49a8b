package game

import (
	"errors"
	"testing"
)

// grid turns rows like "..*" into a layout; '*' is a mine.
func grid(rows ...string) [][]bool {
	out := make([][]bool, len(rows))
	for i, r := range rows {
		out[i] = make([]bool, len(r))
		for j, ch := range r {
			out[i][j] = ch == '*'
		}
	}
	return out
}

func mustBoard(t *testing.T, rows ...string) *Board {
	t.Helper()
	b, err := NewBoard(grid(rows...))
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return b
}

func uncover(t *testing.T, b *Board, row, col int) {
	t.Helper()
	if err := b.UncoverCellAt(row, col); err != nil {
		t.Fatalf("UncoverCellAt(%d,%d): %v", row, col, err)
	}
}

func TestNewBoardRejectsInvalidLayouts(t *testing.T) {
	cases := []struct {
		name   string
		layout [][]bool
	}{
		{"nil", nil},
		{"no rows", [][]bool{}},
		{"empty row", [][]bool{{}}},
		{"ragged", [][]bool{{false, false}, {true}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBoard(tc.layout)
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("err = %v, want ErrInvalidLayout", err)
			}
			if b != nil {
				t.Fatalf("board should be nil on error")
			}
		})
	}
}

func TestDimensionsAndCellOrder(t *testing.T) {
	b := mustBoard(t,
		"*...",
		"..*.",
	)
	if b.RowsLength() != 2 || b.ColumnsLength() != 4 {
		t.Fatalf("dims = %dx%d, want 2x4", b.RowsLength(), b.ColumnsLength())
	}
	for _, p := range []Coord{{0, 0}, {1, 2}} {
		c, err := b.CellAt(p.Row, p.Col)
		if err != nil || !c.IsMine() {
			t.Fatalf("CellAt(%v) = %+v, %v; want mine", p, c, err)
		}
	}
	if c, _ := b.CellAt(0, 2); c.IsMine() {
		t.Fatalf("(0,2) should be safe")
	}
}

func TestCellAtOutOfBounds(t *testing.T) {
	b := mustBoard(t, "..", "..")
	for _, p := range []Coord{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if _, err := b.CellAt(p.Row, p.Col); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("CellAt(%v) err = %v, want ErrOutOfBounds", p, err)
		}
	}
}

func TestUncoverOutOfBoundsHasNoEffect(t *testing.T) {
	b := mustBoard(t, "...", ".*.", "...")
	before := b.String()
	if err := b.UncoverCellAt(3, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err = %v, want ErrOutOfBounds", err)
	}
	if b.String() != before || b.MineTriggered() {
		t.Fatalf("board changed after out-of-bounds move")
	}
}

func TestCenterMineCornerRevealStopsAtNumber(t *testing.T) {
	b := mustBoard(t, "...", ".*.", "...")
	uncover(t, b, 0, 0)

	// Every safe cell touches the center mine, so nothing cascades.
	want := "1--\n" +
		"---\n" +
		"---\n"
	if got := b.String(); got != want {
		t.Fatalf("board =\n%swant\n%s", got, want)
	}
	if b.IsWon() || b.IsTerminated() {
		t.Fatalf("game should still be running")
	}
}

func TestCenterMineWinByClearingEverySafeCell(t *testing.T) {
	b := mustBoard(t, "...", ".*.", "...")
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if r == 1 && c == 1 {
				continue
			}
			if b.IsWon() {
				t.Fatalf("won before the last safe cell")
			}
			uncover(t, b, r, c)
			cell, _ := b.CellAt(r, c)
			if n, ok := cell.AdjacentMines(); !ok || n != 1 {
				t.Fatalf("(%d,%d) count = %d,%v; want 1", r, c, n, ok)
			}
		}
	}
	if !b.IsWon() || !b.IsTerminated() {
		t.Fatalf("clearing every safe cell should win")
	}
	if mine, _ := b.CellAt(1, 1); mine.IsUncovered() {
		t.Fatalf("a win must not require the mine to be uncovered")
	}
}

func TestCenterMineDirectHitLoses(t *testing.T) {
	b := mustBoard(t, "...", ".*.", "...")
	uncover(t, b, 1, 1)

	if !b.MineTriggered() || !b.IsTerminated() || b.IsWon() {
		t.Fatalf("hit mine: triggered=%v terminated=%v won=%v", b.MineTriggered(), b.IsTerminated(), b.IsWon())
	}
	if got := b.String(); got != "---\n---\n---\n" {
		t.Fatalf("no cell should change on a mine hit, got\n%s", got)
	}
}

func TestFloodFillCascade(t *testing.T) {
	b := mustBoard(t,
		".....",
		".....",
		".....",
		".....",
		"....*",
	)
	uncover(t, b, 0, 0)

	want := ".....\n" +
		".....\n" +
		".....\n" +
		"...11\n" +
		"...1-\n"
	if got := b.String(); got != want {
		t.Fatalf("board =\n%swant\n%s", got, want)
	}
	if !b.IsWon() {
		t.Fatalf("cascade reached every safe cell; game should be won")
	}
}

func TestFloodFillStopsAtNumberedBorder(t *testing.T) {
	b := mustBoard(t,
		"..*..",
		"..*..",
		"..*..",
	)
	uncover(t, b, 1, 0)

	want := ".2---\n" +
		".3---\n" +
		".2---\n"
	if got := b.String(); got != want {
		t.Fatalf("board =\n%swant\n%s", got, want)
	}
	if b.IsWon() {
		t.Fatalf("right side still covered")
	}
}

func TestFloodFillIdempotent(t *testing.T) {
	layout := []string{
		"......",
		"..*...",
		"......",
		".....*",
	}
	once := mustBoard(t, layout...)
	twice := mustBoard(t, layout...)

	uncover(t, once, 0, 5)
	uncover(t, twice, 0, 5)
	uncover(t, twice, 0, 5)

	if once.String() != twice.String() {
		t.Fatalf("second reveal changed the board:\n%s\nvs\n%s", once.String(), twice.String())
	}
}

func TestMineCountInvariant(t *testing.T) {
	b := mustBoard(t,
		"*..*",
		"....",
		".*..",
	)
	if n := b.NumberOfMines(); n != 3 {
		t.Fatalf("NumberOfMines = %d, want 3", n)
	}
	uncover(t, b, 1, 2)
	uncover(t, b, 0, 0)
	b.RevealMines()
	if n := b.NumberOfMines(); n != 3 {
		t.Fatalf("NumberOfMines after moves = %d, want 3", n)
	}
}

func TestLossIsPermanent(t *testing.T) {
	b := mustBoard(t, "*.")
	uncover(t, b, 0, 0)
	uncover(t, b, 0, 1)

	if b.IsWon() || !b.IsTerminated() {
		t.Fatalf("loss must stick: won=%v terminated=%v", b.IsWon(), b.IsTerminated())
	}
}

func TestRevealMinesNoopWhileRunning(t *testing.T) {
	b := mustBoard(t, "*..", "...")
	uncover(t, b, 1, 2)
	before := b.String()

	b.RevealMines()
	if b.String() != before {
		t.Fatalf("RevealMines changed a running game:\n%s", b.String())
	}
}

func TestRevealMinesAfterLoss(t *testing.T) {
	b := mustBoard(t, "*..", "..*")
	uncover(t, b, 1, 2)
	b.RevealMines()

	want := "*--\n" +
		"--*\n"
	if got := b.String(); got != want {
		t.Fatalf("board =\n%swant\n%s", got, want)
	}
	for _, p := range []Coord{{0, 0}, {1, 2}} {
		c, _ := b.CellAt(p.Row, p.Col)
		if _, ok := c.AdjacentMines(); ok {
			t.Fatalf("revealed mine %v must not carry a count", p)
		}
	}
}

func TestRevealMinesAfterWin(t *testing.T) {
	b := mustBoard(t, "*..", "...")
	uncover(t, b, 1, 2)
	if b.IsWon() {
		t.Fatalf("(1,0) is still covered")
	}
	uncover(t, b, 1, 0)
	if !b.IsWon() {
		t.Fatalf("every safe cell is uncovered; game should be won")
	}

	before := b.String()
	if before != "-1.\n11.\n" {
		t.Fatalf("board before disclosure =\n%s", before)
	}
	b.RevealMines()
	if got := b.String(); got != "*1.\n11.\n" {
		t.Fatalf("board after disclosure =\n%s", got)
	}
	if !b.IsWon() || b.MineTriggered() {
		t.Fatalf("disclosure must not turn a win into a loss")
	}
	for _, p := range []Coord{{0, 1}, {1, 0}, {1, 1}} {
		c, _ := b.CellAt(p.Row, p.Col)
		if n, ok := c.AdjacentMines(); !ok || n != 1 {
			t.Fatalf("%v count = %d,%v; want 1 after disclosure", p, n, ok)
		}
	}
}

func TestSingleCellBoards(t *testing.T) {
	t.Run("mine", func(t *testing.T) {
		b := mustBoard(t, "*")
		if b.NumberOfMines() != 1 {
			t.Fatalf("NumberOfMines = %d, want 1", b.NumberOfMines())
		}
		uncover(t, b, 0, 0)
		if b.IsWon() || !b.IsTerminated() {
			t.Fatalf("won=%v terminated=%v, want loss", b.IsWon(), b.IsTerminated())
		}
	})
	t.Run("safe", func(t *testing.T) {
		b := mustBoard(t, ".")
		uncover(t, b, 0, 0)
		c, _ := b.CellAt(0, 0)
		if n, ok := c.AdjacentMines(); !ok || n != 0 {
			t.Fatalf("count = %d,%v; want 0", n, ok)
		}
		if !b.IsWon() {
			t.Fatalf("single safe cell should win immediately")
		}
	})
}

func TestNeighborsClipToBoard(t *testing.T) {
	b := mustBoard(t, "...", "...", "...")
	cases := []struct {
		p    Coord
		want int
	}{
		{Coord{0, 0}, 3},
		{Coord{0, 1}, 5},
		{Coord{1, 1}, 8},
		{Coord{2, 2}, 3},
	}
	for _, tc := range cases {
		if got := len(b.Neighbors(tc.p.Row, tc.p.Col)); got != tc.want {
			t.Fatalf("Neighbors(%v) = %d, want %d", tc.p, got, tc.want)
		}
	}
}

func TestLargeOpenBoardDoesNotRecurse(t *testing.T) {
	const n = 400
	layout := make([][]bool, n)
	for i := range layout {
		layout[i] = make([]bool, n)
	}
	b, err := NewBoard(layout)
	if err != nil {
		t.Fatal(err)
	}
	uncover(t, b, n/2, n/2)
	if !b.IsWon() {
		t.Fatalf("open board should be cleared in one move")
	}
}
