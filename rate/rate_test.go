// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rate_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(group int, x, y float64, year int, label string) population.GroupedPoint {
	return population.GroupedPoint{
		Occurrence: occurrence.Occurrence{
			Point:    orb.Point{x, y},
			Year:     year,
			Label:    label,
			HasPoint: true,
			HasYear:  true,
		},
		Group:   group,
		Grouped: group >= 0,
	}
}

func testPoints() []population.GroupedPoint {
	return []population.GroupedPoint{
		point(1, 100, 100, 2005, "X"),
		point(0, 30, 0, 2003, ""),
		point(0, 0, 0, 2000, "A"),
		point(2, 0, 0, 2000, "P"),
		point(0, 10, 0, 2001, ""),
		point(1, 100, 100, 2005, "Y"),
		point(2, 5, 0, 2000, "Q"),
		point(-1, 500, 500, 1990, "ungrouped"),
		point(0, 20, 0, 2002, ""),
		point(2, 1, 0, 2002, ""),
		point(2, 2.5, 0, 2003, ""),
	}
}

func TestEstimate(t *testing.T) {
	recs, dist := rate.Estimate(testPoints())
	require.Len(t, recs, 3)

	// linear expansion
	r := recs[0]
	assert.Equal(t, 0, r.Group)
	assert.Equal(t, "A", r.FirstLabel)
	assert.Equal(t, 2000, r.MinYear)
	assert.Equal(t, 2003, r.MaxYear)
	assert.Equal(t, 4, r.Points)
	assert.Equal(t, 1.0, r.MedianPerYear)
	assert.InDelta(t, 10.0, r.Rate, 1e-9)
	assert.InDelta(t, 1.0, r.R2, 1e-9)
	assert.False(t, r.Degenerate())

	// a single year
	r = recs[1]
	assert.Equal(t, 1, r.Group)
	assert.Equal(t, "X", r.FirstLabel)
	assert.Equal(t, 2, r.Points)
	assert.Equal(t, 2.0, r.MedianPerYear)
	assert.True(t, r.Degenerate())
	assert.True(t, math.IsNaN(r.R2))

	// flat series
	r = recs[2]
	assert.Equal(t, 2, r.Group)
	assert.Equal(t, "P", r.FirstLabel)
	assert.Equal(t, 1.0, r.MedianPerYear)
	assert.InDelta(t, 0.0, r.Rate, 1e-12)
	assert.True(t, math.IsNaN(r.R2))

	want := []rate.Distance{
		{Group: 0, Year: 2000, MaxDistance: 0},
		{Group: 0, Year: 2001, MaxDistance: 10},
		{Group: 0, Year: 2002, MaxDistance: 20},
		{Group: 0, Year: 2003, MaxDistance: 30},
		{Group: 1, Year: 2005, MaxDistance: 0},
		{Group: 2, Year: 2000, MaxDistance: 2.5},
		{Group: 2, Year: 2002, MaxDistance: 2.5},
		{Group: 2, Year: 2003, MaxDistance: 2.5},
	}
	assert.Equal(t, want, dist)
}

func TestEstimateEmpty(t *testing.T) {
	recs, dist := rate.Estimate(nil)
	assert.Empty(t, recs)
	assert.Empty(t, dist)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, rate.Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, rate.Median([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(rate.Median(nil)))
}

func TestRatesTSV(t *testing.T) {
	recs, _ := rate.Estimate(testPoints())

	var buf bytes.Buffer
	require.NoError(t, rate.WriteRates(&buf, recs))

	got, err := rate.ReadRates(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	for i, r := range got {
		assert.Equal(t, recs[i].Group, r.Group)
		assert.Equal(t, recs[i].FirstLabel, r.FirstLabel)
		assert.Equal(t, recs[i].MinYear, r.MinYear)
		assert.Equal(t, recs[i].MaxYear, r.MaxYear)
		assert.Equal(t, recs[i].Points, r.Points)
		assert.Equal(t, recs[i].MedianPerYear, r.MedianPerYear)
		assert.Equal(t, recs[i].Degenerate(), r.Degenerate())
		if !r.Degenerate() {
			assert.Equal(t, recs[i].Rate, r.Rate)
		}
	}
}

func TestPlot(t *testing.T) {
	_, dist := rate.Estimate(testPoints())

	name := filepath.Join(t.TempDir(), "distances.png")
	require.NoError(t, rate.Plot(dist, name))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, rate.Plot(nil, name))
}

func TestEstimateSharedYear(t *testing.T) {
	points := []population.GroupedPoint{
		point(0, 0, 0, 2000, "A"),
		point(0, 1, 0, 2001, ""),
		point(0, 2, 0, 2001, ""),
		point(0, 10, 0, 2001, ""),
		point(0, 0, 10, 2002, ""),
	}
	recs, dist := rate.Estimate(points)
	require.Len(t, recs, 1)

	// every record enters the regression:
	// years   2000 2001 2001 2001 2002
	// max     0    1    2    10   10
	r := recs[0]
	assert.InDelta(t, 5.0, r.Rate, 1e-9)
	assert.InDelta(t, 50/99.2, r.R2, 1e-9)
	assert.Equal(t, 1.0, r.MedianPerYear)

	want := []rate.Distance{
		{Group: 0, Year: 2000, MaxDistance: 0},
		{Group: 0, Year: 2001, MaxDistance: 10},
		{Group: 0, Year: 2002, MaxDistance: 10},
	}
	assert.Equal(t, want, dist)
}
