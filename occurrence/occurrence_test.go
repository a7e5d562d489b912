// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package occurrence_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fields = occurrence.Fields{Year: "obs_year", Location: "place"}

func TestReadGeoJSON(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Point","coordinates":[10,20]},"properties":{"obs_year":2008,"place":"Wien"}},
{"type":"Feature","geometry":null,"properties":{"obs_year":2009,"place":"Linz"}},
{"type":"Feature","geometry":{"type":"Point","coordinates":[11,21]},"properties":{"obs_year":null}},
{"type":"Feature","geometry":{"type":"Point","coordinates":[12,22]},"properties":{"obs_year":"2010"}}
]}`

	occs, err := occurrence.ReadGeoJSON(strings.NewReader(data), fields)
	require.NoError(t, err)
	require.Len(t, occs, 4)

	want := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{10, 20}, Year: 2008, Label: "Wien", HasPoint: true, HasYear: true},
		{ID: 1, Year: 2009, Label: "Linz", HasYear: true},
		{ID: 2, Point: orb.Point{11, 21}, HasPoint: true},
		{ID: 3, Point: orb.Point{12, 22}, Year: 2010, HasPoint: true, HasYear: true},
	}
	assert.Equal(t, want, occs)
	assert.Equal(t, []int{2008, 2009, 2010}, occurrence.Years(occs))

	valid := occurrence.Filter(occs, occurrence.Occurrence.Valid)
	assert.Len(t, valid, 2)
}

func TestReadGeoJSONLine(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"LineString","coordinates":[[10,20],[11,21]]},"properties":{}}
]}`
	_, err := occurrence.ReadGeoJSON(strings.NewReader(data), fields)
	assert.Error(t, err)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	occs := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{1.5, 2.5}, Year: 2001, Label: "a", HasPoint: true, HasYear: true},
		{ID: 1, Point: orb.Point{3, 4}, Year: 2002, Label: "b", HasPoint: true, HasYear: true},
	}

	var buf bytes.Buffer
	require.NoError(t, occurrence.WriteGeoJSON(&buf, occs))

	got, err := occurrence.ReadGeoJSON(&buf, occurrence.DefaultFields)
	require.NoError(t, err)
	assert.Equal(t, occs, got)
}

func TestGeoJSONKeepID(t *testing.T) {
	occs := []occurrence.Occurrence{
		{ID: 5, Point: orb.Point{1, 1}, Year: 2001, HasPoint: true, HasYear: true},
		{ID: 9, Point: orb.Point{2, 2}, Year: 2003, HasPoint: true, HasYear: true},
	}

	var buf bytes.Buffer
	require.NoError(t, occurrence.WriteGeoJSON(&buf, occs))
	data := buf.String()

	got, err := occurrence.ReadGeoJSON(strings.NewReader(data), occurrence.DefaultFields)
	require.NoError(t, err)
	assert.Equal(t, occs, got)

	// without an ID field, the position is used
	got, err = occurrence.ReadGeoJSON(strings.NewReader(data), fields)
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

func TestReadTSV(t *testing.T) {
	data := `# presence data
x	y	Obs_Year	place
10	20	2008	Wien
		2009	Linz
11	21		
12	22	2010	
`
	occs, err := occurrence.ReadTSV(strings.NewReader(data), fields)
	require.NoError(t, err)

	want := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{10, 20}, Year: 2008, Label: "Wien", HasPoint: true, HasYear: true},
		{ID: 1, Year: 2009, Label: "Linz", HasYear: true},
		{ID: 2, Point: orb.Point{11, 21}, HasPoint: true},
		{ID: 3, Point: orb.Point{12, 22}, Year: 2010, HasPoint: true, HasYear: true},
	}
	assert.Equal(t, want, occs)

	var buf bytes.Buffer
	require.NoError(t, occurrence.WriteTSV(&buf, occs))
	got, err := occurrence.ReadTSV(&buf, occurrence.DefaultFields)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadTSVErrors(t *testing.T) {
	tests := map[string]string{
		"no year field": "x\ty\tplace\n1\t2\tWien\n",
		"bad year":      "x\ty\tobs_year\n1\t2\tabc\n",
		"bad x":         "x\ty\tobs_year\nabc\t2\t2001\n",
	}
	for name, data := range tests {
		_, err := occurrence.ReadTSV(strings.NewReader(data), fields)
		assert.Error(t, err, name)
	}
}
