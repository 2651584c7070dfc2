// Package seed builds initial grids from external content: text lines
// supplied by a host, or procedural noise.
package seed

import "github.com/thejezzi/conway/model"

// FromLines builds a width x height grid from text content. A cell becomes
// alive when the rune at its position differs from blank. Lines beyond the
// grid height and runes beyond the grid width are silently ignored; that
// clipping is policy, not an error.
func FromLines(lines []string, width, height int, blank rune) *model.Grid {
	return FromLinesRange(lines, width, height, blank, 0, len(lines)-1)
}

// FromLinesRange is the visible-region variant of FromLines: only source
// lines with indexes in [first, last] (0-based, inclusive) participate, and
// they land at row offsets relative to first. The range is clamped to the
// available lines; an empty range yields an all-dead grid.
func FromLinesRange(lines []string, width, height int, blank rune, first, last int) *model.Grid {
	grid := model.NewGrid(width, height)

	first = max(first, 0)
	last = min(last, len(lines)-1)

	for i := first; i <= last; i++ {
		row := i - first
		if row >= height {
			break
		}
		for col, r := range []rune(lines[i]) {
			if col >= width {
				break
			}
			if r != blank {
				grid.Set(col, row, true)
			}
		}
	}

	return grid
}
