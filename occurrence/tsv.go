// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package occurrence

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ReadTSV reads records from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - x, the easting (or longitude) of the record
//   - y, the northing (or latitude) of the record
//
// The year and location fields are defined by the Fields value.
// Empty coordinates,
// or an empty year,
// are read as null values.
//
// Here is an example file:
//
//	x	y	year	location
//	16.3725	48.2083	2008	Wien
//	14.2858	48.3069	2011	Linz
func ReadTSV(r io.Reader, fs Fields) ([]Occurrence, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	req := []string{"x", "y"}
	if fs.Year != "" {
		req = append(req, strings.ToLower(fs.Year))
	}
	for _, h := range req {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	var occs []Occurrence
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		o := Occurrence{ID: len(occs)}
		if fs.ID != "" {
			if i, ok := fields[strings.ToLower(fs.ID)]; ok {
				v := strings.TrimSpace(row[i])
				id, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("on row %d: field %q: %v", ln, fs.ID, err)
				}
				o.ID = id
			}
		}

		xs := strings.TrimSpace(row[fields["x"]])
		ys := strings.TrimSpace(row[fields["y"]])
		if xs != "" && ys != "" {
			x, err := strconv.ParseFloat(xs, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, "x", err)
			}
			y, err := strconv.ParseFloat(ys, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, "y", err)
			}
			o.Point = orb.Point{x, y}
			o.HasPoint = true
		}

		if fs.Year != "" {
			f := strings.ToLower(fs.Year)
			v := strings.TrimSpace(row[fields[f]])
			if v != "" {
				y, ok := parseYear(v)
				if !ok {
					return nil, fmt.Errorf("on row %d: field %q: invalid year %q", ln, f, v)
				}
				o.Year = y
				o.HasYear = true
			}
		}
		if fs.Location != "" {
			if i, ok := fields[strings.ToLower(fs.Location)]; ok {
				o.Label = strings.TrimSpace(row[i])
			}
		}
		occs = append(occs, o)
	}
	return occs, nil
}

// WriteTSV writes records as a TSV file.
func WriteTSV(w io.Writer, occs []Occurrence) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{DefaultFields.ID, "x", "y", DefaultFields.Year, DefaultFields.Location}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, o := range occs {
		row := []string{strconv.Itoa(o.ID), "", "", "", o.Label}
		if o.HasPoint {
			row[1] = strconv.FormatFloat(o.Point[0], 'f', -1, 64)
			row[2] = strconv.FormatFloat(o.Point[1], 'f', -1, 64)
		}
		if o.HasYear {
			row[3] = strconv.Itoa(o.Year)
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
