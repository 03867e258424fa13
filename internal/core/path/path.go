// Package path computes shortest routes between grid cells.
// This is part of the Functional Core - no I/O.
//
// The planner is 4-connected A* with unit step cost and a Manhattan
// heuristic, which is admissible and consistent on a unit-cost grid,
// so the returned route is optimal. Equal-cost frontiers are expanded
// in insertion order and neighbors in a fixed compass order, keeping
// the output deterministic.
package path

import (
	"container/heap"
	"errors"

	"github.com/example/rover/internal/core/grid"
)

// ErrNoPathFound indicates the goal is unreachable from the start:
// disconnected, or either endpoint outside the grid. Recoverable; the
// caller skips the goal and continues.
var ErrNoPathFound = errors.New("no path found")

// neighborOffsets is the fixed expansion order: north, east, south, west.
// North is increasing row (increasing Y in world coordinates).
var neighborOffsets = [4]grid.Cell{
	{Row: 1, Col: 0},
	{Row: 0, Col: 1},
	{Row: -1, Col: 0},
	{Row: 0, Col: -1},
}

// Blocked reports whether a cell may not be traversed. A nil Blocked
// means every in-bounds cell is traversable.
type Blocked func(grid.Cell) bool

// FindPath returns the ordered cell sequence from start to goal,
// inclusive, over a rows x cols grid.
func FindPath(start, goal grid.Cell, rows, cols int, blocked Blocked) ([]grid.Cell, error) {
	inBounds := func(c grid.Cell) bool {
		return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
	}
	if !inBounds(start) || !inBounds(goal) {
		return nil, ErrNoPathFound
	}
	if blocked != nil && (blocked(start) || blocked(goal)) {
		return nil, ErrNoPathFound
	}

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, &node{cell: start, f: manhattan(start, goal)})

	cameFrom := make(map[grid.Cell]grid.Cell)
	gScore := map[grid.Cell]int{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node).cell

		if current == goal {
			return reconstruct(cameFrom, start, goal), nil
		}

		for _, off := range neighborOffsets {
			next := grid.Cell{Row: current.Row + off.Row, Col: current.Col + off.Col}
			if !inBounds(next) || (blocked != nil && blocked(next)) {
				continue
			}
			tentative := gScore[current] + 1
			if g, seen := gScore[next]; seen && tentative >= g {
				continue
			}
			cameFrom[next] = current
			gScore[next] = tentative
			heap.Push(open, &node{cell: next, f: tentative + manhattan(next, goal)})
		}
	}

	return nil, ErrNoPathFound
}

func manhattan(a, b grid.Cell) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reconstruct(cameFrom map[grid.Cell]grid.Cell, start, goal grid.Cell) []grid.Cell {
	route := []grid.Cell{goal}
	for c := goal; c != start; {
		c = cameFrom[c]
		route = append(route, c)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// node is a frontier entry. seq preserves insertion order among
// equal-f entries.
type node struct {
	cell grid.Cell
	f    int
	seq  int
}

type frontier struct {
	nodes []*node
	next  int
}

func (q *frontier) Len() int { return len(q.nodes) }

func (q *frontier) Less(i, j int) bool {
	if q.nodes[i].f != q.nodes[j].f {
		return q.nodes[i].f < q.nodes[j].f
	}
	return q.nodes[i].seq < q.nodes[j].seq
}

func (q *frontier) Swap(i, j int) { q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i] }

func (q *frontier) Push(x any) {
	n := x.(*node)
	n.seq = q.next
	q.next++
	q.nodes = append(q.nodes, n)
}

func (q *frontier) Pop() any {
	old := q.nodes
	n := old[len(old)-1]
	q.nodes = old[:len(old)-1]
	return n
}
