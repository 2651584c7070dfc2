// Package rules holds the cell transition rule for the simulation.
package rules

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next
state of a cell from its current state and its live Moore-neighbor count.

B3/S23: (alive && neighbors == 2) || neighbors == 3
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}
