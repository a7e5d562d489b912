// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sensitivity_test

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/sensitivity"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(cost float64, a, b orb.Point) lcpath.Path {
	return lcpath.Path{
		Line: orb.MultiLineString{{a, b}},
		Cost: cost,
	}
}

// a chain of paths:
// each new path that pass a threshold
// extends an existing group.
func chain() ([]occurrence.Occurrence, []lcpath.Path) {
	paths := []lcpath.Path{
		path(1, orb.Point{0, 0}, orb.Point{1, 0}),
		path(2, orb.Point{1, 0}, orb.Point{2, 0}),
		path(3, orb.Point{2, 0}, orb.Point{3, 0}),
		path(1, orb.Point{10, 0}, orb.Point{11, 0}),
		path(4, orb.Point{3, 0}, orb.Point{10, 0}),
	}

	rec := func(id int, x float64, year int) occurrence.Occurrence {
		return occurrence.Occurrence{
			ID:       id,
			Point:    orb.Point{x, 0},
			Year:     year,
			HasPoint: true,
			HasYear:  true,
		}
	}
	points := []occurrence.Occurrence{
		rec(0, 0, 2000),
		rec(1, 1, 2001),
		rec(2, 2, 2002),
		rec(3, 3, 2003),
		rec(4, 10, 2000),
		rec(5, 11, 2001),
	}
	return points, paths
}

func TestSteps(t *testing.T) {
	s, err := sensitivity.Steps(1.5, 4.5, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5, 4.5}, s)

	s, err = sensitivity.Steps(0, 1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, s)

	s, err = sensitivity.Steps(0.5, 1, 0.1)
	require.NoError(t, err)
	assert.Len(t, s, 6)

	_, err = sensitivity.Steps(0, 1, 0)
	assert.Error(t, err)
	_, err = sensitivity.Steps(1, 0, 0.1)
	assert.Error(t, err)
}

func TestSweepMonotonic(t *testing.T) {
	points, paths := chain()
	opt := sensitivity.Options{
		Thresholds: []float64{1.5, 2.5, 3.5, 4.5},
		Absolute:   true,
		Workers:    2,
	}
	res, err := sensitivity.Sweep(context.Background(), points, paths, 1, opt)
	require.NoError(t, err)
	require.Len(t, res, 4)

	groups := make([]int, 0, len(res))
	for i, r := range res {
		assert.Equal(t, opt.Thresholds[i], r.Threshold)
		groups = append(groups, r.Groups)
	}
	assert.Equal(t, []int{2, 2, 2, 1}, groups)
	for i := 1; i < len(groups); i++ {
		assert.LessOrEqual(t, groups[i], groups[i-1])
	}

	assert.Equal(t, 0.4, res[0].Quantile)
	assert.InDelta(t, 1.0, res[0].MinRate, 1e-9)
	assert.InDelta(t, 1.0, res[0].MaxRate, 1e-9)
	assert.InDelta(t, 1.0, res[0].AvgRate, 1e-9)
}

func TestSweepRobust(t *testing.T) {
	points, paths := chain()
	opt := sensitivity.Options{
		Thresholds: []float64{2.5},
		Absolute:   true,
		Robust:     []float64{0, 1, 1.5},
	}
	res, err := sensitivity.Sweep(context.Background(), points, paths, 1, opt)
	require.NoError(t, err)
	require.Len(t, res, 3)

	want := []int{2, 2, 0}
	for i, r := range res {
		assert.Equal(t, opt.Robust[i], r.Robust)
		assert.Equal(t, 2, r.Groups)
		assert.Equal(t, want[i], r.RobustGroups)
	}
	assert.True(t, math.IsNaN(res[2].MinRate))
	assert.True(t, math.IsNaN(res[2].AvgRate))

	opt.Robust = []float64{1}
	opt.RelativeRobust = true
	res, err = sensitivity.Sweep(context.Background(), points, paths, 1, opt)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].RobustGroups)
}

func TestSweepQuantile(t *testing.T) {
	points, paths := chain()

	// the maximum cost is not below itself
	res, err := sensitivity.Sweep(context.Background(), points, paths, 1, sensitivity.Options{Thresholds: []float64{1}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 4.0, res[0].Threshold)
	assert.Equal(t, 1.0, res[0].Quantile)
	assert.Equal(t, 2, res[0].Groups)

	// upper fence by default
	res, err = sensitivity.Sweep(context.Background(), points, paths, 1, sensitivity.Options{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 6.0, res[0].Threshold)
	assert.Equal(t, 1.0, res[0].Quantile)
	assert.Equal(t, 1, res[0].Groups)
}

func TestSweepFenceRobust(t *testing.T) {
	points, paths := chain()

	// no thresholds: only the upper fence is tested
	opt := sensitivity.Options{
		Robust: []float64{1, 2},
	}
	res, err := sensitivity.Sweep(context.Background(), points, paths, 1, opt)
	require.NoError(t, err)
	require.Len(t, res, 2)

	want := []int{1, 0}
	for i, r := range res {
		assert.Equal(t, 6.0, r.Threshold)
		assert.Equal(t, 1.0, r.Quantile)
		assert.Equal(t, opt.Robust[i], r.Robust)
		assert.Equal(t, 1, r.Groups)
		assert.Equal(t, want[i], r.RobustGroups)
	}
	assert.False(t, math.IsNaN(res[0].AvgRate))
	assert.True(t, math.IsNaN(res[1].AvgRate))
}

func TestSweepNoPaths(t *testing.T) {
	points, paths := chain()
	opt := sensitivity.Options{
		Thresholds: []float64{0.5},
		Absolute:   true,
		Robust:     []float64{0, 1},
	}
	res, err := sensitivity.Sweep(context.Background(), points, paths, 1, opt)
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, 0, r.Groups)
		assert.Equal(t, 0, r.RobustGroups)
		assert.Equal(t, 0.0, r.Quantile)
		assert.True(t, math.IsNaN(r.MinRate))
		assert.True(t, math.IsNaN(r.MaxRate))
		assert.True(t, math.IsNaN(r.AvgRate))
	}

	var buf bytes.Buffer
	require.NoError(t, sensitivity.Write(&buf, res))
	assert.Contains(t, buf.String(), "robust_groups")
	assert.Equal(t, 2, strings.Count(buf.String(), "NaN\tNaN\tNaN"))
}
