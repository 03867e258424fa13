// Package grid defines the shared spatial types for the navigation core:
// the rectangular patrol area and its discretization into cells.
// This is part of the Functional Core - no I/O, only pure functions.
package grid

import "math"

// Bounds is the declared patrol area in world coordinates.
type Bounds struct {
	X      float64 // origin (meters)
	Y      float64
	Width  float64 // extent (meters)
	Height float64
}

// Contains reports whether a world point lies inside the area.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Cell is a discrete grid coordinate. Row indexes along Y, Col along X.
type Cell struct {
	Row int
	Col int
}

// Dims returns the grid dimensions for the bounds at the given cell size.
// Partial cells at the far edges count as full cells.
func Dims(b Bounds, cellSize float64) (rows, cols int) {
	rows = int(math.Ceil(b.Height / cellSize))
	cols = int(math.Ceil(b.Width / cellSize))
	return rows, cols
}

// CellAt converts a world point to its grid cell, clamped to the grid.
// Callers that must reject out-of-bounds points check Bounds.Contains first.
func CellAt(b Bounds, cellSize float64, x, y float64) Cell {
	rows, cols := Dims(b, cellSize)
	col := int((x - b.X) / cellSize)
	row := int((y - b.Y) / cellSize)
	return Cell{
		Row: clamp(row, 0, rows-1),
		Col: clamp(col, 0, cols-1),
	}
}

// Center converts a grid cell to the world coordinates of its center.
func Center(b Bounds, cellSize float64, c Cell) (x, y float64) {
	x = b.X + (float64(c.Col)+0.5)*cellSize
	y = b.Y + (float64(c.Row)+0.5)*cellSize
	return x, y
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
