// internal/game/view.go
//
// Renderer-facing snapshot of a game. Mines stay hidden until the board
// discloses them, so a View is safe to send to the player.

package game

// CellState is what a renderer may show for one cell.
type CellState string

const (
	CellCovered   CellState = "covered"
	CellUncovered CellState = "uncovered"
	CellMine      CellState = "mine"
)

// CellView is one cell as seen by the player.
type CellView struct {
	State CellState `json:"state"`
	Count int       `json:"count,omitempty"` // adjacent mines, uncovered safe cells only
}

// View is a full board snapshot.
type View struct {
	GameID  string       `json:"gameId"`
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	Mines   int          `json:"mines"`
	State   State        `json:"state"`
	Reveals int          `json:"reveals"`
	Cells   [][]CellView `json:"cells"`
}

// View snapshots the game. Callers hold the session lock.
func (g *Game) View() View {
	b := g.Board
	cells := make([][]CellView, b.rows)
	for r := 0; r < b.rows; r++ {
		cells[r] = make([]CellView, b.cols)
		for c := 0; c < b.cols; c++ {
			cells[r][c] = viewOf(b.cells[b.index(r, c)])
		}
	}
	return View{
		GameID:  g.ID,
		Rows:    b.rows,
		Cols:    b.cols,
		Mines:   b.NumberOfMines(),
		State:   g.State(),
		Reveals: g.Reveals,
		Cells:   cells,
	}
}

func viewOf(c Cell) CellView {
	if !c.IsUncovered() {
		return CellView{State: CellCovered}
	}
	if c.IsMine() {
		return CellView{State: CellMine}
	}
	n, _ := c.AdjacentMines()
	return CellView{State: CellUncovered, Count: n}
}
