// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package population

import (
	"fmt"
	"io"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/paulmach/orb/geojson"
)

// GroupField is the property name
// of the group ID.
const GroupField = "group_id"

// WritePathsGeoJSON writes a set of grouped paths
// as a GeoJSON feature collection.
func WritePathsGeoJSON(w io.Writer, paths []GroupedPath) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range paths {
		f := lcpath.Feature(p.Path)
		f.Properties[GroupField] = p.Group
		fc.Append(f)
	}
	return write(w, fc)
}

// WritePointsGeoJSON writes the grouped records
// as a GeoJSON feature collection.
// Records that are not grouped are ignored.
func WritePointsGeoJSON(w io.Writer, points []GroupedPoint) error {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		if !p.Grouped || !p.HasPoint {
			continue
		}
		f := occurrence.Feature(p.Occurrence)
		f.Properties[GroupField] = p.Group
		f.Properties["distance"] = p.Dist
		fc.Append(f)
	}
	return write(w, fc)
}

// ReadPathsGeoJSON reads a set of grouped paths
// from a GeoJSON feature collection.
func ReadPathsGeoJSON(r io.Reader) ([]GroupedPath, error) {
	fc, err := read(r)
	if err != nil {
		return nil, err
	}

	paths := make([]GroupedPath, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, err := lcpath.FromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v", i, err)
		}
		g, ok := f.Properties[GroupField].(float64)
		if !ok {
			return nil, fmt.Errorf("feature %d: expecting property %q", i, GroupField)
		}
		paths = append(paths, GroupedPath{Path: p, Group: int(g)})
	}
	return paths, nil
}

// ReadPointsGeoJSON reads a set of grouped records
// from a GeoJSON feature collection.
func ReadPointsGeoJSON(r io.Reader) ([]GroupedPoint, error) {
	fc, err := read(r)
	if err != nil {
		return nil, err
	}

	points := make([]GroupedPoint, 0, len(fc.Features))
	for i, f := range fc.Features {
		o, err := occurrence.FromFeature(f, i, occurrence.DefaultFields)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v", i, err)
		}
		g, ok := f.Properties[GroupField].(float64)
		if !ok {
			return nil, fmt.Errorf("feature %d: expecting property %q", i, GroupField)
		}
		d, _ := f.Properties["distance"].(float64)
		points = append(points, GroupedPoint{
			Occurrence: o,
			Group:      int(g),
			Grouped:    true,
			Dist:       d,
		})
	}
	return points, nil
}

func read(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

func write(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
