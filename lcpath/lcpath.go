// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package lcpath implements the search of least-cost paths
// from the records known up to a year
// to the records first observed in the next year.
package lcpath

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// A Path is a least-cost path
// from a known record to a newly observed record.
type Path struct {
	// Line is the path geometry,
	// as cell centers,
	// from the known record to the new record.
	Line orb.MultiLineString

	// Year is the observation year
	// of the destination record.
	Year int

	// Cost is the accumulated cost
	// at the destination record.
	Cost float64

	// ID is the ID of the destination record.
	ID int

	// From is the cell of the known record
	// where the path starts,
	// and To is the cell of the destination record.
	From costgrid.Cell
	To   costgrid.Cell
}

// Endpoints returns the first points of each segment
// of the path geometry,
// followed by the last points of each segment.
func (p Path) Endpoints() []orb.Point {
	pts := make([]orb.Point, 0, 2*len(p.Line))
	for _, ls := range p.Line {
		if len(ls) == 0 {
			continue
		}
		pts = append(pts, ls[0])
	}
	for _, ls := range p.Line {
		if len(ls) == 0 {
			continue
		}
		pts = append(pts, ls[len(ls)-1])
	}
	return pts
}

// Options are the options used to search
// for least-cost paths.
type Options struct {
	// Start and End are the first and last years
	// of the analysis.
	// Paths are searched for each year
	// after Start,
	// up to End (inclusive).
	Start int
	End   int

	// Conn is the neighborhood of the search.
	// By default it uses Conn8.
	Conn Connectivity

	// Workers is the number of years
	// searched in parallel.
	// If zero or negative,
	// it uses the number of CPUs.
	Workers int

	// Logger receives informative messages.
	// If nil,
	// no messages are written.
	Logger *log.Logger
}

// Result is the result of a least-cost path search.
type Result struct {
	// Paths are the found paths,
	// sorted by year.
	Paths []Path

	// Unreachable is the number of records
	// on each year
	// that can not be reached from any known record.
	Unreachable map[int]int
}

// Costs returns the accumulated cost of each path.
func (r Result) Costs() []float64 {
	return Costs(r.Paths)
}

// Costs returns the accumulated cost of a set of paths.
func Costs(paths []Path) []float64 {
	c := make([]float64, 0, len(paths))
	for _, p := range paths {
		c = append(c, p.Cost)
	}
	return c
}

type yearResult struct {
	paths       []Path
	unreachable int
}

// Find searches the least-cost paths,
// for each year,
// between each record observed in the year
// and the records known in any previous year.
//
// Records must be in the coordinates of the grid.
// Each year uses its own search,
// and years are searched in parallel.
func Find(ctx context.Context, occs []occurrence.Occurrence, g *costgrid.Grid, opt Options) (Result, error) {
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	if opt.Conn == 0 {
		opt.Conn = Conn8
	}
	if opt.Conn != Conn8 && opt.Conn != Conn4 {
		return Result{}, fmt.Errorf("lcpath: invalid connectivity %d", opt.Conn)
	}

	var years []int
	for y := opt.Start + 1; y <= opt.End; y++ {
		years = append(years, y)
	}
	res := make([]yearResult, len(years))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opt.Workers)
	for i, y := range years {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res[i] = findYear(occs, g, y, opt)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	r := Result{
		Unreachable: make(map[int]int),
	}
	for i, yr := range res {
		r.Paths = append(r.Paths, yr.paths...)
		if yr.unreachable > 0 {
			r.Unreachable[years[i]] = yr.unreachable
		}
	}
	sort.SliceStable(r.Paths, func(i, j int) bool {
		return r.Paths[i].Year < r.Paths[j].Year
	})
	return r, nil
}

func findYear(occs []occurrence.Occurrence, g *costgrid.Grid, year int, opt Options) yearResult {
	var sources, targets []costgrid.Cell
	var ids []int
	for _, o := range occs {
		if !o.Valid() || o.Year > year {
			continue
		}
		c, ok := g.ToCell(o.Point)
		if o.Year < year {
			if ok {
				sources = append(sources, c)
			}
			continue
		}
		if !ok {
			c = costgrid.Cell{Row: -1, Col: -1}
		}
		targets = append(targets, c)
		ids = append(ids, o.ID)
	}

	var yr yearResult
	if len(targets) == 0 {
		return yr
	}
	if len(sources) == 0 {
		yr.unreachable = len(targets)
		if opt.Logger != nil {
			opt.Logger.Printf("INFO: year %d: no known records: %d records unreachable", year, len(targets))
		}
		return yr
	}

	s := NewSearch(g, opt.Conn)
	s.Run(sources, targets)

	for i, c := range targets {
		cells, ok := s.Traceback(c)
		if !ok {
			yr.unreachable++
			if opt.Logger != nil {
				opt.Logger.Printf("INFO: year %d: record %d: unreachable from known records", year, ids[i])
			}
			continue
		}

		ls := make(orb.LineString, 0, len(cells))
		for _, c := range cells {
			ls = append(ls, g.ToCoord(c))
		}
		if len(ls) == 1 {
			ls = append(ls, ls[0])
		}
		yr.paths = append(yr.paths, Path{
			Line: orb.MultiLineString{ls},
			Year: year,
			Cost: s.Cost(c),
			ID:   ids[i],
			From: cells[0],
			To:   c,
		})
	}
	return yr
}
