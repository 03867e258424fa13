// Package patrol generates waypoint sequences that cover the patrol
// area. This is part of the Functional Core - no I/O.
package patrol

import (
	"fmt"

	"github.com/example/rover/internal/core/coverage"
	"github.com/example/rover/internal/core/grid"
)

// Pattern selects the waypoint-generation strategy for a session.
type Pattern string

const (
	// PatternLawnmower is a boustrophedon sweep: rows spaced by the
	// cell size, alternating direction, even rows left-to-right.
	PatternLawnmower Pattern = "lawnmower"
	// PatternSpiral walks rectangular perimeter rings, outermost
	// first, shrinking inward.
	PatternSpiral Pattern = "spiral"
	// PatternGrid is a row-major raster scan.
	PatternGrid Pattern = "grid"
)

// ParsePattern validates a configured pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch Pattern(s) {
	case PatternLawnmower, PatternSpiral, PatternGrid:
		return Pattern(s), nil
	}
	return "", fmt.Errorf("unknown patrol pattern %q", s)
}

// Waypoint is a target position produced by the planner, consumed once.
type Waypoint struct {
	X float64
	Y float64
}

// Planner iterates a precomputed waypoint sequence for one pattern.
// The sequence is finite and restartable via Reset.
type Planner struct {
	pattern   Pattern
	waypoints []Waypoint
	next      int
}

// NewPlanner precomputes the waypoint sequence for the pattern over
// the given area.
func NewPlanner(pattern Pattern, bounds grid.Bounds, cellSize float64) *Planner {
	p := &Planner{pattern: pattern}

	rows, cols := grid.Dims(bounds, cellSize)
	center := func(row, col int) Waypoint {
		x, y := grid.Center(bounds, cellSize, grid.Cell{Row: row, Col: col})
		return Waypoint{X: x, Y: y}
	}

	switch pattern {
	case PatternLawnmower:
		for row := 0; row < rows; row++ {
			if row%2 == 0 {
				for col := 0; col < cols; col++ {
					p.waypoints = append(p.waypoints, center(row, col))
				}
			} else {
				for col := cols - 1; col >= 0; col-- {
					p.waypoints = append(p.waypoints, center(row, col))
				}
			}
		}

	case PatternSpiral:
		minRow, maxRow := 0, rows-1
		minCol, maxCol := 0, cols-1
		for minRow <= maxRow && minCol <= maxCol {
			for col := minCol; col <= maxCol; col++ {
				p.waypoints = append(p.waypoints, center(minRow, col))
			}
			minRow++
			for row := minRow; row <= maxRow; row++ {
				p.waypoints = append(p.waypoints, center(row, maxCol))
			}
			maxCol--
			if minRow <= maxRow {
				for col := maxCol; col >= minCol; col-- {
					p.waypoints = append(p.waypoints, center(maxRow, col))
				}
				maxRow--
			}
			if minCol <= maxCol {
				for row := maxRow; row >= minRow; row-- {
					p.waypoints = append(p.waypoints, center(row, minCol))
				}
				minCol++
			}
		}

	case PatternGrid:
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				p.waypoints = append(p.waypoints, center(row, col))
			}
		}
	}

	return p
}

// Next returns the next unconsumed waypoint. ok is false when the
// sequence is exhausted or coverage has already reached the threshold,
// whichever comes first.
func (p *Planner) Next(cov *coverage.Map, threshold float64) (Waypoint, bool) {
	if cov != nil && cov.IsComplete(threshold) {
		return Waypoint{}, false
	}
	if p.next >= len(p.waypoints) {
		return Waypoint{}, false
	}
	wp := p.waypoints[p.next]
	p.next++
	return wp, true
}

// Reset restarts the sequence for a new session.
func (p *Planner) Reset() {
	p.next = 0
}

// Pattern returns the pattern this planner was built with.
func (p *Planner) Pattern() Pattern { return p.pattern }

// Progress returns consumed and total waypoint counts.
func (p *Planner) Progress() (consumed, total int) {
	return p.next, len(p.waypoints)
}
