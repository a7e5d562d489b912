// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sensitivity implements the analysis
// of the effect of the cost threshold
// and the definition of robust groups
// on the number of groups and their expansion rates.
package sensitivity

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/rate"
	"golang.org/x/sync/errgroup"
)

// Options are the options of a sensitivity analysis.
type Options struct {
	// Thresholds are the tested cost thresholds.
	// If Absolute is false,
	// they are quantiles of the path costs.
	// If empty,
	// the upper fence of the path costs is used.
	Thresholds []float64
	Absolute   bool

	// Robust are the tested definitions of a robust group,
	// as the minimum median number of records per year.
	// If RelativeRobust is true,
	// each definition is a fraction
	// of the maximum median number of records per year
	// found with a given threshold.
	// If empty,
	// all groups are robust.
	Robust         []float64
	RelativeRobust bool

	// Workers is the number of thresholds
	// analyzed in parallel.
	// If zero or negative,
	// it uses the number of CPUs.
	Workers int
}

// Result is the result for a threshold
// and a robust group definition.
type Result struct {
	Threshold float64
	Quantile  float64
	Robust    float64

	Groups       int
	RobustGroups int

	// Statistics of the expansion rate
	// of the robust groups.
	// Undefined rates are ignored.
	MinRate float64
	MaxRate float64
	AvgRate float64
}

// Steps returns the values from a value
// up to another value (inclusive)
// at regular steps.
func Steps(from, to, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("invalid step %v", step)
	}
	if to < from {
		return nil, fmt.Errorf("invalid range: %v > %v", from, to)
	}

	n := int(math.Floor((to-from)/step + 1e-9))
	s := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		s = append(s, from+float64(i)*step)
	}
	return s, nil
}

// Sweep runs the sensitivity analysis.
// For each threshold,
// paths are grouped,
// records are assigned to the groups,
// and the expansion rates are estimated,
// from scratch.
//
// Results are sorted by threshold,
// and then by robust definition,
// in the order given in the options.
func Sweep(ctx context.Context, points []occurrence.Occurrence, paths []lcpath.Path, cellSize float64, opt Options) ([]Result, error) {
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	robust := opt.Robust
	if len(robust) == 0 {
		robust = []float64{0}
	}

	costs := lcpath.Costs(paths)
	type level struct {
		threshold, q float64
	}
	var levels []level
	if len(opt.Thresholds) == 0 {
		q, fence := population.UpperFence(costs)
		levels = append(levels, level{threshold: fence, q: q})
	}
	for _, v := range opt.Thresholds {
		t, q := population.Threshold(costs, v, opt.Absolute)
		levels = append(levels, level{threshold: t, q: q})
	}

	res := make([][]Result, len(levels))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opt.Workers)
	for i, l := range levels {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res[i] = sweep(points, paths, cellSize, l.threshold, l.q, robust, opt.RelativeRobust)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []Result
	for _, r := range res {
		all = append(all, r...)
	}
	return all, nil
}

func sweep(points []occurrence.Occurrence, paths []lcpath.Path, cellSize, threshold, q float64, robust []float64, relative bool) []Result {
	gp := population.GroupPaths(paths, threshold)
	if len(gp) == 0 {
		res := make([]Result, 0, len(robust))
		for _, r := range robust {
			res = append(res, Result{
				Threshold: threshold,
				Quantile:  q,
				Robust:    r,
				MinRate:   math.NaN(),
				MaxRate:   math.NaN(),
				AvgRate:   math.NaN(),
			})
		}
		return res
	}

	pts := population.GroupPoints(points, gp, cellSize)
	recs, _ := rate.Estimate(pts)

	maxMedian := 0.0
	for _, r := range recs {
		if r.MedianPerYear > maxMedian {
			maxMedian = r.MedianPerYear
		}
	}

	res := make([]Result, 0, len(robust))
	for _, r := range robust {
		min := r
		if relative {
			min = r * maxMedian
		}
		res = append(res, summary(recs, threshold, q, r, min))
	}
	return res
}

func summary(recs []rate.Record, threshold, q, robust, min float64) Result {
	r := Result{
		Threshold: threshold,
		Quantile:  q,
		Robust:    robust,
		Groups:    len(recs),
		MinRate:   math.NaN(),
		MaxRate:   math.NaN(),
		AvgRate:   math.NaN(),
	}

	var sum float64
	var n int
	for _, rec := range recs {
		if rec.MedianPerYear < min {
			continue
		}
		r.RobustGroups++
		if rec.Degenerate() {
			continue
		}
		if n == 0 || rec.Rate < r.MinRate {
			r.MinRate = rec.Rate
		}
		if n == 0 || rec.Rate > r.MaxRate {
			r.MaxRate = rec.Rate
		}
		sum += rec.Rate
		n++
	}
	if n > 0 {
		r.AvgRate = sum / float64(n)
	}
	return r
}
