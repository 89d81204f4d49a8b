// internal/layouts/generate.go
//
// Seeded random layouts and the classic difficulty table.

package layouts

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/zenikatas/minesweeper/apps/go-server/internal/game"
)

// Dimensions describe a generated board.
type Dimensions struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

// Largest board accepted from any source. Checked before any allocation
// proportional to the board size.
const (
	MaxRows = 100
	MaxCols = 100
)

var difficulties = map[string]Dimensions{
	"beginner":     {Rows: 9, Cols: 9, Mines: 10},
	"intermediate": {Rows: 16, Cols: 16, Mines: 40},
	"expert":       {Rows: 16, Cols: 30, Mines: 99},
}

// Difficulty returns the dimensions for a named difficulty.
func Difficulty(name string) (Dimensions, bool) {
	d, ok := difficulties[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Generate places exactly mines mines on a rows x cols grid.
// The same seed always yields the same layout.
//
// Placement shuffles every position with Fisher-Yates and mines the first
// `mines` of them.
func Generate(rows, cols, mines int, seed int64) ([][]bool, error) {
	if err := checkSize(rows, cols); err != nil {
		return nil, err
	}
	if mines < 0 || mines > rows*cols {
		return nil, fmt.Errorf("%w: %d mines on %d cells", game.ErrInvalidLayout, mines, rows*cols)
	}

	positions := make([]int, rows*cols)
	for i := range positions {
		positions[i] = i
	}
	r := rand.New(rand.NewSource(seed))
	for i := len(positions) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		positions[i], positions[j] = positions[j], positions[i]
	}

	layout := make([][]bool, rows)
	for i := range layout {
		layout[i] = make([]bool, cols)
	}
	for _, p := range positions[:mines] {
		layout[p/cols][p%cols] = true
	}
	return layout, nil
}

// DifficultyName reports which named difficulty has exactly these dimensions.
func DifficultyName(d Dimensions) (string, bool) {
	for name, dd := range difficulties {
		if dd == d {
			return name, true
		}
	}
	return "", false
}

func checkSize(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > MaxRows || cols > MaxCols {
		return fmt.Errorf("%w: %dx%d (limit %dx%d)", game.ErrInvalidLayout, rows, cols, MaxRows, MaxCols)
	}
	return nil
}
