package world

import "math"

// CellSize is the edge length of one region in world units. Interaction
// ranges are far smaller, so a query rarely leaves the 3x3 window.
const CellSize = 8.0

// Cell identifies a region on the ground plane (X/Z; Y is up).
type Cell struct {
	X, Z int32
}

// CellOf returns the cell containing the ground position (x, z).
func CellOf(x, z float64) Cell {
	return Cell{
		X: int32(math.Floor(x / CellSize)),
		Z: int32(math.Floor(z / CellSize)),
	}
}

// Around returns the cells within radius cells of c, c included,
// row by row.
func (c Cell) Around(radius int32) []Cell {
	side := 2*radius + 1
	out := make([]Cell, 0, side*side)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			out = append(out, Cell{X: c.X + dx, Z: c.Z + dz})
		}
	}
	return out
}

// cellRadius is how many cells a query of range r must reach.
func cellRadius(r float64) int32 {
	return max(1, int32(math.Ceil(r/CellSize)))
}
