// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package lcpath

import (
	"container/heap"
	"math"

	"github.com/dispersal-lab/dispersal/costgrid"
)

// Connectivity is the neighborhood
// used to move between cells.
type Connectivity int

// Valid neighborhoods.
const (
	// Conn8 allows orthogonal and diagonal moves.
	Conn8 Connectivity = 8

	// Conn4 allows only orthogonal moves.
	Conn4 Connectivity = 4
)

type move struct {
	dr, dc int
	length float64
}

var moves8 = []move{
	{-1, 0, 1},
	{0, -1, 1},
	{0, 1, 1},
	{1, 0, 1},
	{-1, -1, math.Sqrt2},
	{-1, 1, math.Sqrt2},
	{1, -1, math.Sqrt2},
	{1, 1, math.Sqrt2},
}

func (c Connectivity) moves() []move {
	if c == Conn4 {
		return moves8[:4]
	}
	return moves8
}

// A Search is a minimum accumulated cost search
// over a cost grid,
// from a set of source cells.
//
// The cost of moving between two neighbor cells
// is the mean of the cost of both cells,
// multiplied by the length of the move
// (1 for orthogonal moves, √2 for diagonal moves).
// Cells with infinite cost are never entered.
//
// A Search is used for a single set of sources
// and should not be reused.
type Search struct {
	g     *costgrid.Grid
	moves []move

	acc  []float64
	prev []int32
	done []bool
	q    frontier
}

// NewSearch creates a new search on a grid.
func NewSearch(g *costgrid.Grid, conn Connectivity) *Search {
	s := &Search{
		g:     g,
		moves: conn.moves(),
		acc:   make([]float64, g.Len()),
		prev:  make([]int32, g.Len()),
		done:  make([]bool, g.Len()),
	}
	for i := range s.acc {
		s.acc[i] = math.Inf(1)
		s.prev[i] = -1
	}
	return s
}

// Run expands the search from the source cells
// until all target cells are settled,
// or no more cells can be reached.
// If no targets are given,
// the whole grid is explored.
func (s *Search) Run(sources, targets []costgrid.Cell) {
	for _, c := range sources {
		if !s.g.In(c) || math.IsInf(s.g.Cost(c), 1) {
			continue
		}
		i := s.g.Index(c)
		if s.acc[i] == 0 {
			continue
		}
		s.acc[i] = 0
		heap.Push(&s.q, node{idx: int32(i)})
	}

	pending := make(map[int32]bool, len(targets))
	for _, c := range targets {
		if !s.g.In(c) || math.IsInf(s.g.Cost(c), 1) {
			continue
		}
		pending[int32(s.g.Index(c))] = true
	}
	all := len(targets) == 0

	for s.q.Len() > 0 {
		if !all && len(pending) == 0 {
			break
		}
		n := heap.Pop(&s.q).(node)
		if s.done[n.idx] {
			continue
		}
		s.done[n.idx] = true
		delete(pending, n.idx)

		c := s.g.Cell(int(n.idx))
		cc := s.g.Cost(c)
		for _, m := range s.moves {
			nc := costgrid.Cell{Row: c.Row + m.dr, Col: c.Col + m.dc}
			if !s.g.In(nc) {
				continue
			}
			ni := s.g.Index(nc)
			if s.done[ni] {
				continue
			}
			v := s.g.Cost(nc)
			if math.IsInf(v, 1) {
				continue
			}
			d := n.cost + m.length*(cc+v)/2
			if d < s.acc[ni] {
				s.acc[ni] = d
				s.prev[ni] = n.idx
				heap.Push(&s.q, node{idx: int32(ni), cost: d})
			}
		}
	}
}

// Reached returns true if the minimum accumulated cost
// of a cell is already known.
func (s *Search) Reached(c costgrid.Cell) bool {
	if !s.g.In(c) {
		return false
	}
	return s.done[s.g.Index(c)]
}

// Cost returns the minimum accumulated cost of a cell.
// It returns +Inf if the cell was not reached.
func (s *Search) Cost(c costgrid.Cell) float64 {
	if !s.Reached(c) {
		return math.Inf(1)
	}
	return s.acc[s.g.Index(c)]
}

// Traceback returns the cells of the least-cost path
// that ends at the given cell,
// starting at a source cell.
func (s *Search) Traceback(c costgrid.Cell) ([]costgrid.Cell, bool) {
	if !s.Reached(c) {
		return nil, false
	}

	var cells []costgrid.Cell
	for i := int32(s.g.Index(c)); i >= 0; i = s.prev[i] {
		cells = append(cells, s.g.Cell(int(i)))
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells, true
}

type node struct {
	idx  int32
	cost float64
}

// frontier is a priority queue of cells
// ordered by accumulated cost.
type frontier []node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].idx < f[j].idx
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(node))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	*f = old[:n-1]
	return x
}
