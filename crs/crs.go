// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package crs implements the identification
// of coordinate reference systems
// and the transformation of coordinates between them.
//
// Only the transformations between geographic coordinates
// (WGS84, EPSG:4326)
// and the spherical Mercator projection
// (EPSG:3857)
// are known.
// Any other transformation is an error,
// as coordinates in a wrong reference
// corrupt every distance and cell computation.
package crs

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Known coordinate reference systems.
const (
	WGS84        = "EPSG:4326"
	WebMercator  = "EPSG:3857"
	Undetermined = ""
)

// ErrUnsupported is returned when a transformation
// between two coordinate reference systems is not known.
var ErrUnsupported = errors.New("crs: unsupported transformation")

// ErrDomain is returned when a coordinate
// is outside the valid domain of its reference system.
var ErrDomain = errors.New("crs: coordinate outside of valid domain")

var aliases = map[string]string{
	"4326":        WGS84,
	"WGS84":       WGS84,
	"WGS 84":      WGS84,
	"CRS84":       WGS84,
	"OGC:CRS84":   WGS84,
	"3857":        WebMercator,
	"EPSG:900913": WebMercator,
	"EPSG:3785":   WebMercator,
}

// Normalize returns the canonical identifier
// of a coordinate reference system.
func Normalize(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if a, ok := aliases[id]; ok {
		return a
	}
	return id
}

// A Transformer transforms points
// from one coordinate reference system to another.
type Transformer struct {
	from string
	to   string
	proj orb.Projection
}

// New returns a transformer between two coordinate reference systems.
// If the source is undetermined,
// or both systems are the same,
// the transformer is the identity.
func New(from, to string) (*Transformer, error) {
	from = Normalize(from)
	to = Normalize(to)
	t := &Transformer{from: from, to: to}

	if from == Undetermined || from == to {
		return t, nil
	}
	switch {
	case from == WGS84 && to == WebMercator:
		t.proj = project.WGS84.ToMercator
	case from == WebMercator && to == WGS84:
		t.proj = project.Mercator.ToWGS84
	default:
		return nil, fmt.Errorf("%w: from %q to %q", ErrUnsupported, from, to)
	}
	return t, nil
}

// Identity returns true if the transformer
// does not change the coordinates.
func (t *Transformer) Identity() bool {
	return t == nil || t.proj == nil
}

// Point transforms a point.
func (t *Transformer) Point(p orb.Point) (orb.Point, error) {
	if !finite(p) {
		return p, fmt.Errorf("%w: %v", ErrDomain, p)
	}
	if t.Identity() {
		return p, nil
	}
	if t.from == WGS84 && (math.Abs(p[0]) > 180 || math.Abs(p[1]) > 90) {
		return p, fmt.Errorf("%w: %v in %s", ErrDomain, p, t.from)
	}

	np := project.Point(p, t.proj)
	if !finite(np) {
		return p, fmt.Errorf("%w: %v from %s to %s", ErrDomain, p, t.from, t.to)
	}
	return np, nil
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
