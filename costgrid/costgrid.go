// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package costgrid implements a cost surface
// (a friction raster)
// in which each cell stores the relative difficulty
// of traversing that location.
//
// Cells without data,
// as well as cells outside the grid,
// have an infinite cost
// and they can never be traversed.
package costgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrNonSquare is returned when the horizontal
// and vertical resolution of a grid are different.
var ErrNonSquare = errors.New("costgrid: raster cells are required to have equal side lengths")

// A Cell is a raster cell,
// identified by its row and column.
type Cell struct {
	Row int
	Col int
}

// Transform is an affine transformation
// from raster space (row, col)
// to map space (x, y).
// It uses the GDAL coefficient order:
//
//	x = T[0] + col*T[1] + row*T[2]
//	y = T[3] + col*T[4] + row*T[5]
type Transform [6]float64

// NorthUp returns the transform of a north-up grid
// with the given upper-left corner
// and cell size.
func NorthUp(left, top, size float64) Transform {
	return Transform{left, size, 0, top, 0, -size}
}

// Forward returns the map coordinates
// of a (fractional) raster position.
func (t Transform) Forward(row, col float64) orb.Point {
	return orb.Point{
		t[0] + col*t[1] + row*t[2],
		t[3] + col*t[4] + row*t[5],
	}
}

// Inverse returns the (fractional) raster position
// of a map coordinate.
func (t Transform) Inverse(p orb.Point) (row, col float64, ok bool) {
	det := t[1]*t[5] - t[2]*t[4]
	if det == 0 {
		return 0, 0, false
	}
	dx := p[0] - t[0]
	dy := p[1] - t[3]
	col = (t[5]*dx - t[2]*dy) / det
	row = (-t[4]*dx + t[1]*dy) / det
	return row, col, true
}

// Grid is an immutable cost surface.
type Grid struct {
	rows int
	cols int
	tr   Transform
	size float64
	crs  string
	cost []float64
}

// New creates a new grid from a set of row-major values.
// NaN values are taken as cells without data.
//
// It returns an error wrapping ErrNonSquare
// if the cells are not square.
func New(rows, cols int, tr Transform, crs string, values []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("costgrid: invalid grid size %d x %d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("costgrid: got %d values, want %d", len(values), rows*cols)
	}

	sx := math.Hypot(tr[1], tr[4])
	sy := math.Hypot(tr[2], tr[5])
	if sx == 0 || sy == 0 {
		return nil, fmt.Errorf("costgrid: invalid cell size %g x %g", sx, sy)
	}
	if sx != sy {
		return nil, fmt.Errorf("%w: cell size %g x %g", ErrNonSquare, sx, sy)
	}

	g := &Grid{
		rows: rows,
		cols: cols,
		tr:   tr,
		size: sx,
		crs:  crs,
		cost: make([]float64, len(values)),
	}
	for i, v := range values {
		if math.IsNaN(v) {
			v = math.Inf(1)
		}
		if v < 0 {
			return nil, fmt.Errorf("costgrid: negative cost %g at row %d, col %d", v, i/cols, i%cols)
		}
		g.cost[i] = v
	}
	return g, nil
}

// Rows returns the number of rows of the grid.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns of the grid.
func (g *Grid) Cols() int { return g.cols }

// Len returns the number of cells of the grid.
func (g *Grid) Len() int { return len(g.cost) }

// CellSize returns the side length of a cell,
// in map units.
func (g *Grid) CellSize() float64 { return g.size }

// CRS returns the identifier of the coordinate reference
// of the grid.
func (g *Grid) CRS() string { return g.crs }

// Transform returns the affine transform of the grid.
func (g *Grid) Transform() Transform { return g.tr }

// In returns true if the cell is inside the grid.
func (g *Grid) In(c Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// Index returns the row-major index of a cell.
// The cell must be inside the grid.
func (g *Grid) Index(c Cell) int {
	return c.Row*g.cols + c.Col
}

// Cell returns the cell of a row-major index.
func (g *Grid) Cell(i int) Cell {
	return Cell{Row: i / g.cols, Col: i % g.cols}
}

// Cost returns the cost of traversing a cell.
func (g *Grid) Cost(c Cell) float64 {
	if !g.In(c) {
		return math.Inf(1)
	}
	return g.cost[g.Index(c)]
}

// ToCell returns the cell that contains a map coordinate.
// The boolean is false if the coordinate is outside the grid.
func (g *Grid) ToCell(p orb.Point) (Cell, bool) {
	row, col, ok := g.tr.Inverse(p)
	if !ok {
		return Cell{}, false
	}
	c := Cell{
		Row: int(math.Floor(row)),
		Col: int(math.Floor(col)),
	}
	if !g.In(c) {
		return c, false
	}
	return c, true
}

// ToCoord returns the map coordinates
// of the center of a cell.
func (g *Grid) ToCoord(c Cell) orb.Point {
	return g.tr.Forward(float64(c.Row)+0.5, float64(c.Col)+0.5)
}

// Contains returns true if a map coordinate
// is inside the grid extent.
func (g *Grid) Contains(p orb.Point) bool {
	_, ok := g.ToCell(p)
	return ok
}

// Bound returns the extent of the grid
// in map coordinates.
func (g *Grid) Bound() orb.Bound {
	r, c := float64(g.rows), float64(g.cols)
	b := g.tr.Forward(0, 0).Bound()
	b = b.Extend(g.tr.Forward(0, c))
	b = b.Extend(g.tr.Forward(r, 0))
	b = b.Extend(g.tr.Forward(r, c))
	return b
}
