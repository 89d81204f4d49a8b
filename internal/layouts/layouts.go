// internal/layouts/layouts.go
//
// Produces mine layouts for the game engine.
//
// Responsibilities:
//   - Parse text layouts into the [][]bool shape game.NewBoard expects.
//   - Load a catalogue of named presets from a file or the embedded defaults.
//   - Generate random layouts with a fixed mine count from a seed.
//
// Text format:
//   - One line per row, one rune per cell.
//   - '*' marks a mine; every other rune is safe.
//   - Preset files group layouts under "[name]" headers.
//
// Initialization behavior (Init):
//   1. If LAYOUTS_FILE is set, presets are read from that file.
//   2. Otherwise the embedded assets/presets.txt is used.
//
// Every preset is validated with game.NewBoard when loaded.
// Initialization is run once (sync.Once).

package layouts

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zenikatas/minesweeper/apps/go-server/assets"
	"github.com/zenikatas/minesweeper/apps/go-server/internal/game"
)

// MineMarker is the rune that denotes a mine in text layouts.
const MineMarker = '*'

// Preset is a named, pre-built layout.
type Preset struct {
	Name   string
	Layout [][]bool
}

var (
	initOnce   sync.Once
	presets    []Preset          // file order
	presetsIdx map[string]Preset // keyed by lowercase name
	initialErr error
)

// Init loads the preset catalogue exactly once.
// Returns an error if the catalogue is unreadable, malformed, or empty.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		var err error
		if path := os.Getenv("LAYOUTS_FILE"); path != "" {
			lines, err = readPresetFile(path)
		} else {
			lines, err = assets.PresetLines()
		}
		if err != nil {
			initialErr = fmt.Errorf("layouts: read presets: %w", err)
			return
		}

		list, err := parsePresets(lines)
		if err != nil {
			initialErr = err
			return
		}
		if len(list) == 0 {
			initialErr = errors.New("layouts: preset catalogue is empty")
			return
		}
		presets = list
		presetsIdx = make(map[string]Preset, len(list))
		for _, p := range list {
			presetsIdx[strings.ToLower(p.Name)] = p
		}
	})
	return initialErr
}

// Parse converts text rows into a layout.
// Errors wrap game.ErrInvalidLayout.
func Parse(rows []string) ([][]bool, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", game.ErrInvalidLayout)
	}
	if err := checkSize(len(rows), utf8.RuneCountInString(rows[0])); err != nil {
		return nil, err
	}
	out := make([][]bool, len(rows))
	width := -1
	for i, row := range rows {
		runes := []rune(row)
		if width < 0 {
			width = len(runes)
		}
		if len(runes) == 0 || len(runes) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", game.ErrInvalidLayout, i, len(runes), width)
		}
		out[i] = make([]bool, len(runes))
		for j, r := range runes {
			out[i][j] = r == MineMarker
		}
	}
	return out, nil
}

// ParseText is Parse over newline-separated text.
// Blank lines and '#' comments are ignored.
func ParseText(s string) ([][]bool, error) {
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
	}
	return Parse(rows)
}

// Format renders a layout back into text rows.
func Format(layout [][]bool) []string {
	out := make([]string, len(layout))
	for i, row := range layout {
		var sb strings.Builder
		for _, mine := range row {
			if mine {
				sb.WriteRune(MineMarker)
			} else {
				sb.WriteByte('.')
			}
		}
		out[i] = sb.String()
	}
	return out
}

// Random returns a cryptographically random preset.
// Init must have succeeded.
func Random() (Preset, error) {
	if len(presets) == 0 {
		return Preset{}, errors.New("layouts: no presets loaded")
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(presets))))
	if err != nil {
		return Preset{}, err
	}
	return presets[nBig.Int64()], nil
}

// Lookup finds a preset by case-insensitive name.
func Lookup(name string) (Preset, bool) {
	p, ok := presetsIdx[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Names lists preset names in sorted order.
func Names() []string {
	out := make([]string, 0, len(presets))
	for _, p := range presets {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

// Stats returns (presets loaded, total mines across presets).
func Stats() (presetCount int, mineCount int) {
	for _, p := range presets {
		for _, row := range p.Layout {
			for _, mine := range row {
				if mine {
					mineCount++
				}
			}
		}
	}
	return len(presets), mineCount
}

// parsePresets groups lines under "[name]" headers and validates each block.
func parsePresets(lines []string) ([]Preset, error) {
	var (
		out  []Preset
		name string
		rows []string
		seen = map[string]bool{}
	)
	flush := func() error {
		if name == "" {
			return nil
		}
		layout, err := Parse(rows)
		if err != nil {
			return fmt.Errorf("layouts: preset %q: %w", name, err)
		}
		if _, err := game.NewBoard(layout); err != nil {
			return fmt.Errorf("layouts: preset %q: %w", name, err)
		}
		out = append(out, Preset{Name: name, Layout: layout})
		return nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.TrimSpace(line[1 : len(line)-1])
			rows = nil
			if name == "" || seen[strings.ToLower(name)] {
				return nil, fmt.Errorf("layouts: empty or duplicate preset name %q", name)
			}
			seen[strings.ToLower(name)] = true
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("layouts: row %q before any [name] header", line)
		}
		rows = append(rows, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// readPresetFile loads a preset file, skipping blank lines and comments.
func readPresetFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
