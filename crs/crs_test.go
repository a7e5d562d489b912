// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package crs_test

import (
	"errors"
	"math"
	"testing"

	"github.com/dispersal-lab/dispersal/crs"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, crs.WGS84, crs.Normalize(" epsg:4326 "))
	assert.Equal(t, crs.WGS84, crs.Normalize("wgs84"))
	assert.Equal(t, crs.WebMercator, crs.Normalize("3857"))
	assert.Equal(t, "EPSG:32633", crs.Normalize("epsg:32633"))
	assert.Equal(t, crs.Undetermined, crs.Normalize(""))
}

func TestIdentity(t *testing.T) {
	for _, pair := range [][2]string{
		{"", crs.WebMercator},
		{"EPSG:32633", "epsg:32633"},
	} {
		tr, err := crs.New(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, tr.Identity())

		p := orb.Point{1234, -5678}
		np, err := tr.Point(p)
		require.NoError(t, err)
		assert.Equal(t, p, np)
	}
}

func TestMercator(t *testing.T) {
	to, err := crs.New(crs.WGS84, crs.WebMercator)
	require.NoError(t, err)
	back, err := crs.New(crs.WebMercator, crs.WGS84)
	require.NoError(t, err)

	p := orb.Point{10.5, 47.25}
	m, err := to.Point(p)
	require.NoError(t, err)
	assert.InDelta(t, 1168854.65, m[0], 0.1)

	g, err := back.Point(m)
	require.NoError(t, err)
	assert.InDelta(t, p[0], g[0], 1e-9)
	assert.InDelta(t, p[1], g[1], 1e-9)

	_, err = to.Point(orb.Point{200, 10})
	assert.True(t, errors.Is(err, crs.ErrDomain))

	_, err = to.Point(orb.Point{math.NaN(), 10})
	assert.True(t, errors.Is(err, crs.ErrDomain))
}

func TestUnsupported(t *testing.T) {
	_, err := crs.New(crs.WGS84, "EPSG:32633")
	require.Error(t, err)
	assert.True(t, errors.Is(err, crs.ErrUnsupported))
}
