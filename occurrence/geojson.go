// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package occurrence

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ReadFile reads records from a file.
// Files with a ".tab" or ".tsv" extension
// are read as TSV files,
// any other file is read as GeoJSON.
func ReadFile(name string, fs Fields) ([]Occurrence, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var occs []Occurrence
	ln := strings.ToLower(name)
	if strings.HasSuffix(ln, ".tab") || strings.HasSuffix(ln, ".tsv") {
		occs, err = ReadTSV(f, fs)
	} else {
		occs, err = ReadGeoJSON(f, fs)
	}
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return occs, nil
}

// ReadGeoJSON reads records from a GeoJSON feature collection
// of points.
// A feature with a null geometry,
// or without a valid year,
// is returned with the HasPoint or HasYear flags unset.
func ReadGeoJSON(r io.Reader, fs Fields) ([]Occurrence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	occs := make([]Occurrence, 0, len(fc.Features))
	for i, f := range fc.Features {
		o, err := FromFeature(f, i, fs)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v", i, err)
		}
		occs = append(occs, o)
	}
	return occs, nil
}

// FromFeature returns a record from a GeoJSON feature.
// Pos is the position of the feature in its collection.
func FromFeature(f *geojson.Feature, pos int, fs Fields) (Occurrence, error) {
	o := Occurrence{ID: pos}
	if fs.ID != "" {
		if id, ok := f.Properties[fs.ID].(float64); ok {
			o.ID = int(id)
		}
	}
	switch g := f.Geometry.(type) {
	case nil:
	case orb.Point:
		o.Point = g
		o.HasPoint = true
	case orb.MultiPoint:
		if len(g) != 1 {
			return Occurrence{}, fmt.Errorf("expecting a single point, got %d", len(g))
		}
		o.Point = g[0]
		o.HasPoint = true
	default:
		return Occurrence{}, fmt.Errorf("expecting point geometry, got %s", g.GeoJSONType())
	}

	if fs.Year != "" {
		o.Year, o.HasYear = year(f.Properties[fs.Year])
	}
	if fs.Location != "" {
		if v, ok := f.Properties[fs.Location]; ok && v != nil {
			o.Label = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return o, nil
}

func year(v interface{}) (int, bool) {
	switch y := v.(type) {
	case float64:
		if math.IsNaN(y) || math.IsInf(y, 0) || y != math.Trunc(y) {
			return 0, false
		}
		return int(y), true
	case string:
		return parseYear(y)
	}
	return 0, false
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// WriteGeoJSON writes records as a GeoJSON feature collection.
// Records without geometry are not written.
func WriteGeoJSON(w io.Writer, occs []Occurrence) error {
	fc := geojson.NewFeatureCollection()
	for _, o := range occs {
		if !o.HasPoint {
			continue
		}
		fc.Append(Feature(o))
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return nil
}

// Feature returns a record as a GeoJSON feature.
func Feature(o Occurrence) *geojson.Feature {
	f := geojson.NewFeature(o.Point)
	f.ID = o.ID
	f.Properties[DefaultFields.ID] = o.ID
	if o.HasYear {
		f.Properties[DefaultFields.Year] = o.Year
	} else {
		f.Properties[DefaultFields.Year] = nil
	}
	f.Properties[DefaultFields.Location] = o.Label
	return f
}
