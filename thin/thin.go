// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package thin reduces a collection of presence records
// to a single record per cell of a cost grid,
// keeping the earliest observation of each cell.
package thin

import (
	"fmt"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/crs"
	"github.com/dispersal-lab/dispersal/occurrence"
)

// A Window is an inclusive range of observation years.
type Window struct {
	Start int
	End   int
}

// Contains returns true if a year is inside the window.
func (w Window) Contains(year int) bool {
	return year >= w.Start && year <= w.End
}

// Result is the result of a thinning.
type Result struct {
	// Points are the valid records,
	// inside the time window and the grid extent,
	// in grid coordinates.
	Points []occurrence.Occurrence

	// Thinned are the records kept after thinning,
	// one per cell.
	Thinned []occurrence.Occurrence

	// CellSize is the cell size of the grid.
	CellSize float64

	// Counts of records removed by each filter.
	NoData    int
	OutWindow int
	OutExtent int
}

// Thin filters a collection of records
// and keeps the record with the minimum year
// on each cell of the grid.
// When two records of the same cell have the same year,
// the first one in the input is kept.
//
// Records are transformed into the coordinates of the grid
// using the given transformer
// (a nil transformer means that records are already
// in grid coordinates).
// A transformation failure is an error.
//
// The input is not modified
// and the output order is the input order.
func Thin(occs []occurrence.Occurrence, g *costgrid.Grid, w Window, tr *crs.Transformer) (Result, error) {
	r := Result{
		CellSize: g.CellSize(),
	}

	kept := make(map[costgrid.Cell]int)
	var cells []costgrid.Cell
	for _, o := range occs {
		if !o.Valid() {
			r.NoData++
			continue
		}
		if !w.Contains(o.Year) {
			r.OutWindow++
			continue
		}

		p, err := tr.Point(o.Point)
		if err != nil {
			return Result{}, fmt.Errorf("record %d: %w", o.ID, err)
		}
		c, ok := g.ToCell(p)
		if !ok {
			r.OutExtent++
			continue
		}

		o.Point = p
		r.Points = append(r.Points, o)
		cells = append(cells, c)

		i, ok := kept[c]
		if !ok || o.Year < r.Points[i].Year {
			kept[c] = len(r.Points) - 1
		}
	}

	for i, o := range r.Points {
		if kept[cells[i]] != i {
			continue
		}
		r.Thinned = append(r.Thinned, o)
	}
	return r, nil
}
