// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package store_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/dispersal-lab/dispersal/sensitivity"
	"github.com/dispersal-lab/dispersal/store"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "run.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMeta(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	v, err := s.Meta(ctx, store.CellSize)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetMeta(ctx, store.CellSize, "1000"))
	require.NoError(t, s.SetMeta(ctx, store.CellSize, "250"))
	v, err = s.Meta(ctx, store.CellSize)
	require.NoError(t, err)
	assert.Equal(t, "250", v)
}

func TestPoints(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	occs := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{1.5, 2.5}, Year: 2001, Label: "Wien", HasPoint: true, HasYear: true},
		{ID: 1, Year: 2002, HasYear: true},
		{ID: 2, Point: orb.Point{3, 4}, HasPoint: true},
	}
	require.NoError(t, s.PutPoints(ctx, store.Imported, occs))
	got, err := s.Points(ctx, store.Imported)
	require.NoError(t, err)
	assert.Equal(t, occs, got)

	// replace the layer
	require.NoError(t, s.PutPoints(ctx, store.Imported, occs[:1]))
	got, err = s.Points(ctx, store.Imported)
	require.NoError(t, err)
	assert.Equal(t, occs[:1], got)

	gp := []population.GroupedPoint{
		{Occurrence: occs[0], Group: 3, Grouped: true, Dist: 0.25},
		{Occurrence: occs[2], Group: -1},
	}
	require.NoError(t, s.PutGroupedPoints(ctx, store.GroupedPoints, gp))
	gotGP, err := s.GroupedPoints(ctx, store.GroupedPoints)
	require.NoError(t, err)
	assert.Equal(t, gp, gotGP)

	// layers are independent
	got, err = s.Points(ctx, store.Imported)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	empty, err := s.Points(ctx, store.Thinned)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPaths(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	paths := []lcpath.Path{
		{
			Line: orb.MultiLineString{{{0.5, 4.5}, {1.5, 3.5}}},
			Year: 2001,
			Cost: math.Sqrt2,
			ID:   1,
			From: costgrid.Cell{Row: 0, Col: 0},
			To:   costgrid.Cell{Row: 1, Col: 1},
		},
		{
			Line: orb.MultiLineString{{{1.5, 3.5}, {1.5, 3.5}}},
			Year: 2002,
			ID:   7,
			From: costgrid.Cell{Row: 1, Col: 1},
			To:   costgrid.Cell{Row: 1, Col: 1},
		},
	}
	require.NoError(t, s.PutPaths(ctx, store.Paths, paths))
	got, err := s.Paths(ctx, store.Paths)
	require.NoError(t, err)
	assert.Equal(t, paths, got)

	gp := population.GroupPaths(paths, 10)
	require.NoError(t, s.PutGroupedPaths(ctx, store.GroupedPaths, gp))
	gotGP, err := s.GroupedPaths(ctx, store.GroupedPaths)
	require.NoError(t, err)
	assert.Equal(t, gp, gotGP)

	raw, err := s.GroupedPaths(ctx, store.Paths)
	require.NoError(t, err)
	for _, p := range raw {
		assert.Equal(t, -1, p.Group)
	}
}

func TestRates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	recs := []rate.Record{
		{Group: 0, FirstLabel: "Wien", MinYear: 2000, MaxYear: 2003, Points: 4, MedianPerYear: 1, Rate: 10, R2: 1},
		{Group: 1, FirstLabel: "Linz", MinYear: 2005, MaxYear: 2005, Points: 2, MedianPerYear: 2, Rate: math.NaN(), R2: math.NaN()},
	}
	dist := []rate.Distance{
		{Group: 0, Year: 2000, MaxDistance: 0},
		{Group: 0, Year: 2001, MaxDistance: 10},
		{Group: 1, Year: 2005, MaxDistance: 0},
	}
	require.NoError(t, s.PutRates(ctx, recs, dist))

	got, err := s.Rates(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, recs[0], got[0])
	assert.True(t, got[1].Degenerate())
	assert.True(t, math.IsNaN(got[1].R2))
	assert.Equal(t, "Linz", got[1].FirstLabel)

	gotDist, err := s.Distances(ctx)
	require.NoError(t, err)
	assert.Equal(t, dist, gotDist)
}

func TestSensitivity(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	res := []sensitivity.Result{
		{Threshold: 2.5, Quantile: 0.4, Robust: 0, Groups: 2, RobustGroups: 2, MinRate: 1, MaxRate: 3, AvgRate: 2},
		{Threshold: 0.5, Quantile: 0, Robust: 1, MinRate: math.NaN(), MaxRate: math.NaN(), AvgRate: math.NaN()},
	}
	require.NoError(t, s.PutSensitivity(ctx, res))
	require.NoError(t, s.PutSensitivity(ctx, res))

	got, err := s.Sensitivity(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, res[0], got[0])
	assert.Equal(t, 0.5, got[1].Threshold)
	assert.True(t, math.IsNaN(got[1].MinRate))
	assert.True(t, math.IsNaN(got[1].AvgRate))
}
