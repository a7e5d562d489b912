// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package occurrence implements presence records
// of an invasive species
// with its observation year.
package occurrence

import (
	"sort"

	"github.com/paulmach/orb"
)

// An Occurrence is a presence record.
type Occurrence struct {
	// ID is the position of the record
	// in the input file.
	ID int

	// Point is the location of the record,
	// in the coordinates of its source.
	Point orb.Point

	// Year is the observation year.
	Year int

	// Label is the location name of the record
	// (it might be empty).
	Label string

	// HasPoint and HasYear are false
	// if the input geometry or year was null.
	HasPoint bool
	HasYear  bool
}

// Valid returns true if the record has both
// a geometry and an observation year.
func (o Occurrence) Valid() bool {
	return o.HasPoint && o.HasYear
}

// Fields are the names of the input fields
// that store the observation year
// and the location name of a record.
type Fields struct {
	Year     string
	Location string

	// ID is the field with the record ID.
	// If empty,
	// or the field is not found,
	// the position of the record is used.
	ID string
}

// DefaultFields are the field names used
// when writing records.
var DefaultFields = Fields{
	Year:     "year",
	Location: "location",
	ID:       "id",
}

// Years returns the distinct observation years
// of a collection of records,
// sorted in increasing order.
func Years(occs []Occurrence) []int {
	set := make(map[int]bool)
	for _, o := range occs {
		if !o.HasYear {
			continue
		}
		set[o.Year] = true
	}
	ys := make([]int, 0, len(set))
	for y := range set {
		ys = append(ys, y)
	}
	sort.Ints(ys)
	return ys
}

// Filter returns the records that pass a test,
// in the input order.
func Filter(occs []Occurrence, keep func(Occurrence) bool) []Occurrence {
	var fo []Occurrence
	for _, o := range occs {
		if keep(o) {
			fo = append(fo, o)
		}
	}
	return fo
}
