// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package population_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	x := []float64{4, 1, 3, 2}
	tests := map[float64]float64{
		0:    1,
		0.25: 1.75,
		0.5:  2.5,
		0.9:  3.7,
		1:    4,
	}
	for p, want := range tests {
		assert.InDelta(t, want, population.Quantile(x, p), 1e-12, "p = %v", p)
	}
	assert.Equal(t, []float64{4, 1, 3, 2}, x)
	assert.True(t, math.IsNaN(population.Quantile(nil, 0.5)))
}

func TestThreshold(t *testing.T) {
	costs := []float64{1, 2, 3, 4}

	v, q := population.Threshold(costs, 3, true)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, 0.5, q)

	v, q = population.Threshold(costs, 0.5, false)
	assert.Equal(t, 2.5, v)
	assert.Equal(t, 0.5, q)
}

func TestUpperFence(t *testing.T) {
	q, fence := population.UpperFence([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 7.0, fence)
	assert.Equal(t, 0.8, q)

	q, fence = population.UpperFence(nil)
	assert.True(t, math.IsNaN(q))
	assert.True(t, math.IsNaN(fence))
}

func line(cost float64, pts ...orb.Point) lcpath.Path {
	return lcpath.Path{
		Line: orb.MultiLineString{orb.LineString(pts)},
		Cost: cost,
	}
}

func testPaths() []lcpath.Path {
	return []lcpath.Path{
		line(1, orb.Point{0, 0}, orb.Point{1, 1}),
		line(2, orb.Point{1.0000001, 1}, orb.Point{2, 2}),
		line(1, orb.Point{5, 5}, orb.Point{6, 6}),
		line(10, orb.Point{6, 6}, orb.Point{7, 7}),
		line(5, orb.Point{2, 2}, orb.Point{3, 3}),
	}
}

func groupIDs(gp []population.GroupedPath) []int {
	ids := make([]int, 0, len(gp))
	for _, p := range gp {
		ids = append(ids, p.Group)
	}
	return ids
}

func TestGroupPaths(t *testing.T) {
	paths := testPaths()

	tests := map[string]struct {
		threshold float64
		groups    []int
		n         int
	}{
		"strict":    {5, []int{0, 0, 1}, 2},
		"extended":  {6, []int{0, 0, 1, 0}, 2},
		"all":       {11, []int{0, 0, 1, 1, 0}, 2},
		"one":       {1.5, []int{0, 1}, 2},
		"nothing":   {1, []int{}, 0},
		"undefined": {math.NaN(), []int{}, 0},
	}
	for name, test := range tests {
		gp := population.GroupPaths(paths, test.threshold)
		assert.Equal(t, test.groups, groupIDs(gp), name)
		assert.Equal(t, test.n, population.Groups(gp), name)
		for _, p := range gp {
			assert.Less(t, p.Cost, test.threshold, name)
		}
	}

	assert.Empty(t, population.GroupPaths(nil, 10))
}

// TestGroupPathsPartition checks that two paths
// share a group if and only if they are connected
// by a chain of shared endpoints.
func TestGroupPathsPartition(t *testing.T) {
	var paths []lcpath.Path
	for i := 0; i < 20; i++ {
		// paths i and i+1 share an endpoint,
		// except on multiples of 5.
		a := orb.Point{float64(i), 0}
		b := orb.Point{float64(i + 1), 0}
		if (i+1)%5 == 0 {
			b = orb.Point{float64(i) + 0.5, 100}
		}
		paths = append(paths, line(1, a, b))
	}
	gp := population.GroupPaths(paths, 2)
	require.Len(t, gp, 20)
	assert.Equal(t, 4, population.Groups(gp))

	for i := range gp {
		for j := range gp {
			same := i/5 == j/5
			assert.Equal(t, same, gp[i].Group == gp[j].Group, "paths %d and %d", i, j)
		}
	}
}

func TestGroupPoints(t *testing.T) {
	gp := population.GroupPaths(testPaths(), 5)
	points := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{0.5, 0.5}, Year: 2000, HasPoint: true, HasYear: true},
		{ID: 1, Point: orb.Point{5.2, 5.1}, Year: 2001, HasPoint: true, HasYear: true},
		{ID: 2, Point: orb.Point{3, 3}, Year: 2001, HasPoint: true, HasYear: true},
		{ID: 3, Point: orb.Point{2.1, 1.9}, Year: 2002, HasPoint: true, HasYear: true},
	}
	cellSize := 1.0

	pts := population.GroupPoints(points, gp, cellSize)
	require.Len(t, pts, 4)

	want := []struct {
		group   int
		grouped bool
	}{
		{0, true},
		{1, true},
		{-1, false},
		{0, true},
	}
	for i, p := range pts {
		assert.Equal(t, points[i], p.Occurrence)
		assert.Equal(t, want[i].group, p.Group, "point %d", i)
		assert.Equal(t, want[i].grouped, p.Grouped, "point %d", i)
		if p.Grouped {
			assert.LessOrEqual(t, p.Dist, cellSize*math.Sqrt2/2+1e-9)
		}
	}
	assert.InDelta(t, math.Sqrt(0.5), pts[0].Dist, 1e-12)
	assert.Len(t, population.Grouped(pts), 3)

	none := population.GroupPoints(points, nil, cellSize)
	assert.Empty(t, population.Grouped(none))

	// equidistant endpoints of different groups:
	// the first in path order is used
	pair := []lcpath.Path{
		line(1, orb.Point{0, 0}, orb.Point{1, 0}),
		line(1, orb.Point{2, 0}, orb.Point{3, 0}),
	}
	mid := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{1.5, 0}, Year: 2000, HasPoint: true, HasYear: true},
	}
	tied := population.GroupPaths(pair, 2)
	require.Equal(t, 2, population.Groups(tied))
	pts = population.GroupPoints(mid, tied, cellSize)
	require.True(t, pts[0].Grouped)
	assert.Equal(t, tied[0].Group, pts[0].Group)
	assert.InDelta(t, 0.5, pts[0].Dist, 1e-12)

	tied = population.GroupPaths([]lcpath.Path{pair[1], pair[0]}, 2)
	pts = population.GroupPoints(mid, tied, cellSize)
	require.True(t, pts[0].Grouped)
	assert.Equal(t, tied[0].Group, pts[0].Group)
	assert.Equal(t, orb.Point{2, 0}, tied[0].Line[0][0])
}

func TestWriteGeoJSON(t *testing.T) {
	gp := population.GroupPaths(testPaths(), 5)

	var buf bytes.Buffer
	require.NoError(t, population.WritePathsGeoJSON(&buf, gp))
	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, 1.0, fc.Features[2].Properties[population.GroupField])

	points := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{0.5, 0.5}, Year: 2000, HasPoint: true, HasYear: true},
		{ID: 1, Point: orb.Point{30, 30}, Year: 2000, HasPoint: true, HasYear: true},
	}
	buf.Reset()
	require.NoError(t, population.WritePointsGeoJSON(&buf, population.GroupPoints(points, gp, 1)))
	fc, err = geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestReadGeoJSON(t *testing.T) {
	gp := population.GroupPaths(testPaths(), 5)

	var buf bytes.Buffer
	require.NoError(t, population.WritePathsGeoJSON(&buf, gp))
	paths, err := population.ReadPathsGeoJSON(&buf)
	require.NoError(t, err)
	require.Len(t, paths, len(gp))
	for i, p := range paths {
		assert.Equal(t, gp[i].Group, p.Group)
		assert.Equal(t, gp[i].Cost, p.Cost)
	}

	points := []occurrence.Occurrence{
		{ID: 4, Point: orb.Point{0.5, 0.5}, Year: 2000, Label: "a", HasPoint: true, HasYear: true},
		{ID: 7, Point: orb.Point{30, 30}, Year: 2000, HasPoint: true, HasYear: true},
		{ID: 9, Point: orb.Point{5.2, 5.1}, Year: 2001, Label: "b", HasPoint: true, HasYear: true},
	}
	grouped := population.Grouped(population.GroupPoints(points, gp, 1))
	buf.Reset()
	require.NoError(t, population.WritePointsGeoJSON(&buf, grouped))
	got, err := population.ReadPointsGeoJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, grouped, got)

	_, err = population.ReadPointsGeoJSON(bytes.NewBufferString(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[1,1]},"properties":{}}]}`))
	assert.Error(t, err)
}
