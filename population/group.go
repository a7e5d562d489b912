// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package population implements the partition of least-cost paths
// into connected groups
// (i.e., populations)
// and the assignment of presence records to them.
package population

import (
	"math"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// A GroupedPath is a least-cost path
// assigned to a group.
type GroupedPath struct {
	lcpath.Path
	Group int
}

// A GroupedPoint is a presence record
// assigned to a group.
type GroupedPoint struct {
	occurrence.Occurrence

	// Group is the group ID,
	// or -1 if the record is not grouped.
	Group   int
	Grouped bool

	// Dist is the distance to the nearest endpoint
	// of a path in the group.
	Dist float64
}

// precision of endpoint comparisons.
const precision = 1e6

type key [2]int64

func toKey(p orb.Point) key {
	return key{
		int64(math.Round(p[0] * precision)),
		int64(math.Round(p[1] * precision)),
	}
}

// GroupPaths removes the paths with a cost
// equal or greater than a threshold
// and groups the remaining paths
// that share an endpoint,
// directly or through other paths.
//
// Group IDs are assigned in the order
// in which the groups are found,
// and the output is in the input order.
func GroupPaths(paths []lcpath.Path, threshold float64) []GroupedPath {
	var kept []GroupedPath
	for _, p := range paths {
		if !(p.Cost < threshold) {
			continue
		}
		kept = append(kept, GroupedPath{Path: p, Group: -1})
	}

	index := make(map[key][]int)
	ends := make([][]key, len(kept))
	for i, p := range kept {
		for _, pt := range p.Endpoints() {
			k := toKey(pt)
			ends[i] = append(ends[i], k)
			index[k] = append(index[k], i)
		}
	}

	group := 0
	for i := range kept {
		if kept[i].Group >= 0 {
			continue
		}
		kept[i].Group = group
		frontier := []int{i}
		for len(frontier) > 0 {
			j := frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
			for _, k := range ends[j] {
				for _, n := range index[k] {
					if kept[n].Group >= 0 {
						continue
					}
					kept[n].Group = group
					frontier = append(frontier, n)
				}
			}
		}
		group++
	}
	return kept
}

// Groups returns the number of distinct groups.
func Groups(paths []GroupedPath) int {
	set := make(map[int]bool)
	for _, p := range paths {
		set[p.Group] = true
	}
	return len(set)
}

type endpoint struct {
	p     orb.Point
	group int
	seq   int
}

func (e *endpoint) Point() orb.Point { return e.p }

// GroupPoints assigns each record
// to the group of the nearest path endpoint,
// if the endpoint is at a distance
// of at most half the diagonal of a cell.
// If two endpoints are at the same distance,
// the first one in path order is used.
//
// Records must be in the same coordinates as the paths.
func GroupPoints(points []occurrence.Occurrence, paths []GroupedPath, cellSize float64) []GroupedPoint {
	maxDist := cellSize * math.Sqrt2 / 2
	tol := maxDist * (1 + 1e-9)

	var eps []*endpoint
	seen := make(map[key]bool)
	var b orb.Bound
	for _, p := range paths {
		for _, pt := range p.Endpoints() {
			k := toKey(pt)
			if seen[k] {
				continue
			}
			seen[k] = true
			e := &endpoint{p: pt, group: p.Group, seq: len(eps)}
			if len(eps) == 0 {
				b = pt.Bound()
			} else {
				b = b.Extend(pt)
			}
			eps = append(eps, e)
		}
	}

	var qt *quadtree.Quadtree
	if len(eps) > 0 {
		qt = quadtree.New(b.Pad(cellSize + 1))
		for _, e := range eps {
			// all endpoints are inside the bound
			_ = qt.Add(e)
		}
	}

	gp := make([]GroupedPoint, 0, len(points))
	var buf []orb.Pointer
	for _, o := range points {
		g := GroupedPoint{Occurrence: o, Group: -1}
		if qt == nil || !o.HasPoint {
			gp = append(gp, g)
			continue
		}

		box := orb.Bound{
			Min: orb.Point{o.Point[0] - tol, o.Point[1] - tol},
			Max: orb.Point{o.Point[0] + tol, o.Point[1] + tol},
		}
		buf = qt.InBound(buf[:0], box)

		var best *endpoint
		bestDist := math.Inf(1)
		for _, v := range buf {
			e := v.(*endpoint)
			d := planar.Distance(o.Point, e.p)
			if d > tol {
				continue
			}
			if d < bestDist || (d == bestDist && e.seq < best.seq) {
				best = e
				bestDist = d
			}
		}
		if best != nil {
			g.Group = best.group
			g.Grouped = true
			g.Dist = bestDist
		}
		gp = append(gp, g)
	}
	return gp
}

// Grouped returns only the grouped records.
func Grouped(points []GroupedPoint) []GroupedPoint {
	var gp []GroupedPoint
	for _, p := range points {
		if p.Grouped {
			gp = append(gp, p)
		}
	}
	return gp
}
