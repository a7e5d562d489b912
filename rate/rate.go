// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rate implements the estimation of the expansion rate
// of each group of presence records.
//
// The expansion rate of a group is the slope
// of the running maximum distance of its records
// (sorted by year,
// and measured from the location of the first observations of the group)
// regressed against the year of each record.
package rate

import (
	"math"
	"sort"

	"github.com/dispersal-lab/dispersal/population"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat"
)

// A Record is the expansion rate of a group.
type Record struct {
	Group int

	// FirstLabel is the location name
	// of the first record observed in the group.
	FirstLabel string

	MinYear int
	MaxYear int

	// Points is the number of records in the group.
	Points int

	// MedianPerYear is the median number of records
	// observed by year,
	// including years without records.
	MedianPerYear float64

	// Rate is the expansion rate,
	// in map units per year.
	Rate float64

	// R2 is the coefficient of determination
	// of the regression.
	R2 float64
}

// Degenerate returns true if the expansion rate
// of the group is undefined.
func (r Record) Degenerate() bool {
	return math.IsNaN(r.Rate)
}

// Distance is the maximum distance reached by a group
// up to a given year.
type Distance struct {
	Group       int
	Year        int
	MaxDistance float64
}

// Estimate estimates the expansion rate
// of each group.
// Records that are not grouped are ignored.
//
// It returns the expansion rates,
// sorted by group,
// and the maximum distance reached by each group
// on each year with observations.
func Estimate(points []population.GroupedPoint) ([]Record, []Distance) {
	groups := make(map[int][]population.GroupedPoint)
	for _, p := range points {
		if !p.Grouped || !p.HasPoint || !p.HasYear {
			continue
		}
		groups[p.Group] = append(groups[p.Group], p)
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var recs []Record
	var dist []Distance
	for _, id := range ids {
		r, d := estimate(id, groups[id])
		recs = append(recs, r)
		dist = append(dist, d...)
	}
	return recs, dist
}

func estimate(id int, pts []population.GroupedPoint) (Record, []Distance) {
	r := Record{
		Group:   id,
		MinYear: pts[0].Year,
		MaxYear: pts[0].Year,
		Points:  len(pts),
	}
	for _, p := range pts {
		if p.Year < r.MinYear {
			r.MinYear = p.Year
		}
		if p.Year > r.MaxYear {
			r.MaxYear = p.Year
		}
	}

	var first orb.MultiPoint
	for _, p := range pts {
		if p.Year != r.MinYear {
			continue
		}
		if len(first) == 0 {
			r.FirstLabel = p.Label
		}
		first = append(first, p.Point)
	}
	ref, _ := planar.CentroidArea(first)

	sorted := append([]population.GroupedPoint(nil), pts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	var dist []Distance
	years := make([]float64, 0, len(sorted))
	series := make([]float64, 0, len(sorted))
	max := 0.0
	for _, p := range sorted {
		if d := planar.Distance(ref, p.Point); d > max {
			max = d
		}
		years = append(years, float64(p.Year))
		series = append(series, max)
		if len(dist) > 0 && dist[len(dist)-1].Year == p.Year {
			dist[len(dist)-1].MaxDistance = max
			continue
		}
		dist = append(dist, Distance{
			Group:       id,
			Year:        p.Year,
			MaxDistance: max,
		})
	}

	counts := make([]float64, r.MaxYear-r.MinYear+1)
	for _, p := range pts {
		counts[p.Year-r.MinYear]++
	}
	r.MedianPerYear = Median(counts)

	r.Rate, r.R2 = math.NaN(), math.NaN()
	if len(dist) > 1 {
		r.Rate, r.R2 = regression(years, series)
	}
	return r, dist
}

// regression returns the slope
// and the coefficient of determination
// of the running maximum distance of each record
// against its year.
func regression(x, y []float64) (slope, r2 float64) {
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 = stat.RSquared(x, y, nil, alpha, beta)
	return beta, r2
}

// Median returns the median of a set of values.
// With an even number of values,
// it returns the mean of the two central values.
// It returns NaN if there are no values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	n := len(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}
