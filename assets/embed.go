// assets/embed.go
//
// Embedded preset layouts shipped with the binary.
// presets.txt holds "[name]" headers, each followed by the rows of one
// layout ('*' = mine, '.' = safe). Blank lines and '#' comments are skipped.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed presets.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
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

// PresetLines returns the non-empty, non-comment lines of presets.txt.
func PresetLines() ([]string, error) {
	return readLines("presets.txt")
}
