package model

// AddGlider stamps a glider pattern with its top-left corner at the given
// position. Cells that fall outside the grid are clipped.
func (g *Grid) AddGlider(startX, startY int) {
	pattern := [][]bool{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}

	for y, row := range pattern {
		for x, cell := range row {
			if cell {
				g.Set(startX+x, startY+y, true)
			}
		}
	}
}

// AddOscillator stamps a horizontal blinker at the given position. Cells
// that fall outside the grid are clipped.
func (g *Grid) AddOscillator(startX, startY int) {
	g.Set(startX, startY, true)
	g.Set(startX+1, startY, true)
	g.Set(startX+2, startY, true)
}
