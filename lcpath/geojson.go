// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package lcpath

import (
	"fmt"
	"io"
	"math"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property names of a path feature.
const (
	YearField = "destination_year"
	CostField = "accumulated_cost"
)

// Feature returns a path as a GeoJSON feature.
func Feature(p Path) *geojson.Feature {
	f := geojson.NewFeature(p.Line)
	f.Properties[YearField] = p.Year
	f.Properties[CostField] = p.Cost
	f.Properties["destination_id"] = p.ID
	f.Properties["from_row"] = p.From.Row
	f.Properties["from_col"] = p.From.Col
	f.Properties["to_row"] = p.To.Row
	f.Properties["to_col"] = p.To.Col
	return f
}

// WriteGeoJSON writes a set of paths
// as a GeoJSON feature collection.
func WriteGeoJSON(w io.Writer, paths []Path) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range paths {
		fc.Append(Feature(p))
	}
	return writeCollection(w, fc)
}

func writeCollection(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return nil
}

// ReadGeoJSON reads a set of paths
// from a GeoJSON feature collection.
func ReadGeoJSON(r io.Reader) ([]Path, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	paths := make([]Path, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, err := FromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v", i, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// FromFeature returns a path from a GeoJSON feature.
func FromFeature(f *geojson.Feature) (Path, error) {
	var p Path
	switch g := f.Geometry.(type) {
	case orb.MultiLineString:
		p.Line = g
	case orb.LineString:
		p.Line = orb.MultiLineString{g}
	default:
		return Path{}, fmt.Errorf("expecting line geometry")
	}

	y, ok := f.Properties[YearField].(float64)
	if !ok {
		return Path{}, fmt.Errorf("expecting property %q", YearField)
	}
	p.Year = int(y)
	c, ok := f.Properties[CostField].(float64)
	if !ok {
		return Path{}, fmt.Errorf("expecting property %q", CostField)
	}
	if c < 0 || math.IsNaN(c) {
		return Path{}, fmt.Errorf("invalid cost %v", c)
	}
	p.Cost = c

	p.ID = intProp(f.Properties, "destination_id", -1)
	p.From = costgrid.Cell{
		Row: intProp(f.Properties, "from_row", -1),
		Col: intProp(f.Properties, "from_col", -1),
	}
	p.To = costgrid.Cell{
		Row: intProp(f.Properties, "to_row", -1),
		Col: intProp(f.Properties, "to_col", -1),
	}
	return p, nil
}

func intProp(p geojson.Properties, key string, def int) int {
	if v, ok := p[key].(float64); ok {
		return int(v)
	}
	return def
}
