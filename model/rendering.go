package model

import "strings"

const (
	// DefaultAliveGlyph is the rendering symbol for a living cell.
	DefaultAliveGlyph = "█"
	// DefaultDeadGlyph is the rendering symbol for a dead cell.
	DefaultDeadGlyph = " "
)

// Formatter turns a grid into line-oriented text, one string per row. The
// sink that receives the lines decides where they end up (terminal view,
// websocket payload, test buffer).
type Formatter struct {
	Alive string
	Dead  string
}

// NewFormatter builds a formatter, falling back to the default glyphs when
// one is empty.
func NewFormatter(alive, dead string) Formatter {
	if alive == "" {
		alive = DefaultAliveGlyph
	}
	if dead == "" {
		dead = DefaultDeadGlyph
	}
	return Formatter{Alive: alive, Dead: dead}
}

// Lines renders the grid. With trimTrailingDead set, each row stops right
// after its last living cell and a row with no living cell at all becomes
// an empty string rather than a run of dead glyphs. Without trimming every
// column is emitted, which is what the blank editing canvas uses so the
// full surface stays visible.
func (f Formatter) Lines(g *Grid, trimTrailingDead bool) []string {
	lines := make([]string, 0, g.height)

	for y := 0; y < g.height; y++ {
		last := g.width - 1
		if trimTrailingDead {
			last = lastAliveInRow(g, y)
			if last < 0 {
				lines = append(lines, "")
				continue
			}
		}

		var b strings.Builder
		for x := 0; x <= last; x++ {
			if g.cells[y][x] {
				b.WriteString(f.Alive)
			} else {
				b.WriteString(f.Dead)
			}
		}
		lines = append(lines, b.String())
	}

	return lines
}

// lastAliveInRow returns the rightmost living column of a row, or -1 when
// the row is entirely dead.
func lastAliveInRow(g *Grid, y int) int {
	for x := g.width - 1; x >= 0; x-- {
		if g.cells[y][x] {
			return x
		}
	}
	return -1
}
