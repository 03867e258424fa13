// Package coverage tracks which cells of the patrol area have been
// visited. This is part of the Functional Core - no I/O.
//
// Cells transition unvisited -> visited exactly once and never revert,
// so the reported percentage is monotonically non-decreasing within a
// session.
package coverage

import (
	"fmt"

	"github.com/example/rover/internal/core/grid"
)

// OutOfBoundsError reports a pose outside the declared patrol area.
// The caller declared the area; a pose outside it means the declared
// configuration and reality disagree, so the pose is rejected rather
// than silently clamped.
type OutOfBoundsError struct {
	X, Y float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pose (%.2f, %.2f) outside declared area bounds", e.X, e.Y)
}

// Map is the discretized coverage grid over the patrol area.
type Map struct {
	bounds   grid.Bounds
	cellSize float64
	rows     int
	cols     int
	visited  []bool
	count    int
}

// NewMap creates an all-unvisited coverage map.
func NewMap(bounds grid.Bounds, cellSize float64) *Map {
	rows, cols := grid.Dims(bounds, cellSize)
	return &Map{
		bounds:   bounds,
		cellSize: cellSize,
		rows:     rows,
		cols:     cols,
		visited:  make([]bool, rows*cols),
	}
}

// MarkVisited marks every cell whose center lies within radius of the
// given world position. Marking an already-visited cell is a no-op.
// Returns OutOfBoundsError when the position itself is outside the
// declared area.
func (m *Map) MarkVisited(x, y, radius float64) error {
	if !m.bounds.Contains(x, y) {
		return &OutOfBoundsError{X: x, Y: y}
	}

	// Limit the scan to the bounding box of the radius.
	span := int(radius/m.cellSize) + 1
	center := grid.CellAt(m.bounds, m.cellSize, x, y)

	for row := center.Row - span; row <= center.Row+span; row++ {
		for col := center.Col - span; col <= center.Col+span; col++ {
			if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
				continue
			}
			cx, cy := grid.Center(m.bounds, m.cellSize, grid.Cell{Row: row, Col: col})
			if (cx-x)*(cx-x)+(cy-y)*(cy-y) > radius*radius {
				continue
			}
			m.mark(row, col)
		}
	}
	return nil
}

func (m *Map) mark(row, col int) {
	idx := row*m.cols + col
	if !m.visited[idx] {
		m.visited[idx] = true
		m.count++
	}
}

// Percent returns visited/total as a percentage in [0, 100].
func (m *Map) Percent() float64 {
	return float64(m.count) / float64(len(m.visited)) * 100
}

// IsComplete reports whether coverage has reached the given threshold
// percentage.
func (m *Map) IsComplete(threshold float64) bool {
	return m.Percent() >= threshold
}

// Visited reports whether a cell has been visited.
func (m *Map) Visited(c grid.Cell) bool {
	if c.Row < 0 || c.Row >= m.rows || c.Col < 0 || c.Col >= m.cols {
		return false
	}
	return m.visited[c.Row*m.cols+c.Col]
}

// Rows returns the grid row count.
func (m *Map) Rows() int { return m.rows }

// Cols returns the grid column count.
func (m *Map) Cols() int { return m.cols }

// Bounds returns the declared area bounds.
func (m *Map) Bounds() grid.Bounds { return m.bounds }

// CellSize returns the configured cell size in meters.
func (m *Map) CellSize() float64 { return m.cellSize }

// Snapshot returns a row-major copy of the visited flags for read-side
// consumers (status output, dashboard export).
func (m *Map) Snapshot() []bool {
	out := make([]bool, len(m.visited))
	copy(out, m.visited)
	return out
}
