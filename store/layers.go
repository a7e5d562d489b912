// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PutPoints writes a layer of records.
func (s *Store) PutPoints(ctx context.Context, layer string, occs []occurrence.Occurrence) error {
	gp := make([]population.GroupedPoint, 0, len(occs))
	for _, o := range occs {
		gp = append(gp, population.GroupedPoint{Occurrence: o, Group: -1})
	}
	return s.PutGroupedPoints(ctx, layer, gp)
}

// PutGroupedPoints writes a layer of records
// with its group assignment.
func (s *Store) PutGroupedPoints(ctx context.Context, layer string, points []population.GroupedPoint) error {
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE layer = ?`, layer); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO points(layer, id, x, y, year, label, group_id, distance)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range points {
			var x, y sql.NullFloat64
			if p.HasPoint {
				x = nullFloat(p.Point[0])
				y = nullFloat(p.Point[1])
			}
			var year, group sql.NullInt64
			if p.HasYear {
				year = sql.NullInt64{Int64: int64(p.Year), Valid: true}
			}
			var dist sql.NullFloat64
			if p.Grouped {
				group = sql.NullInt64{Int64: int64(p.Group), Valid: true}
				dist = nullFloat(p.Dist)
			}
			if _, err := stmt.ExecContext(ctx, layer, p.ID, x, y, year, p.Label, group, dist); err != nil {
				return fmt.Errorf("record %d: %v", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	return nil
}

// GroupedPoints returns the records of a layer,
// in the order in which they were written.
func (s *Store) GroupedPoints(ctx context.Context, layer string) ([]population.GroupedPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, x, y, year, label, group_id, distance
		FROM points WHERE layer = ? ORDER BY rowid`, layer)
	if err != nil {
		return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	defer rows.Close()

	var points []population.GroupedPoint
	for rows.Next() {
		var p population.GroupedPoint
		var x, y, dist sql.NullFloat64
		var year, group sql.NullInt64
		if err := rows.Scan(&p.ID, &x, &y, &year, &p.Label, &group, &dist); err != nil {
			return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
		}
		if x.Valid && y.Valid {
			p.Point = orb.Point{x.Float64, y.Float64}
			p.HasPoint = true
		}
		if year.Valid {
			p.Year = int(year.Int64)
			p.HasYear = true
		}
		p.Group = -1
		if group.Valid {
			p.Group = int(group.Int64)
			p.Grouped = true
			p.Dist = fromNull(dist)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	return points, nil
}

// Points returns the records of a layer.
func (s *Store) Points(ctx context.Context, layer string) ([]occurrence.Occurrence, error) {
	gp, err := s.GroupedPoints(ctx, layer)
	if err != nil {
		return nil, err
	}
	occs := make([]occurrence.Occurrence, 0, len(gp))
	for _, p := range gp {
		occs = append(occs, p.Occurrence)
	}
	return occs, nil
}

// PutPaths writes a layer of paths.
func (s *Store) PutPaths(ctx context.Context, layer string, paths []lcpath.Path) error {
	gp := make([]population.GroupedPath, 0, len(paths))
	for _, p := range paths {
		gp = append(gp, population.GroupedPath{Path: p, Group: -1})
	}
	return s.PutGroupedPaths(ctx, layer, gp)
}

// PutGroupedPaths writes a layer of paths
// with its group assignment.
// Paths with a negative group are written without a group.
func (s *Store) PutGroupedPaths(ctx context.Context, layer string, paths []population.GroupedPath) error {
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM paths WHERE layer = ?`, layer); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO paths(layer, seq, geometry, year, cost, destination,
			from_row, from_col, to_row, to_col, group_id)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range paths {
			geom, err := geojson.NewGeometry(p.Line).MarshalJSON()
			if err != nil {
				return fmt.Errorf("path %d: %v", i, err)
			}
			var group sql.NullInt64
			if p.Group >= 0 {
				group = sql.NullInt64{Int64: int64(p.Group), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, layer, i, string(geom), p.Year, p.Cost, p.ID,
				p.From.Row, p.From.Col, p.To.Row, p.To.Col, group); err != nil {
				return fmt.Errorf("path %d: %v", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	return nil
}

// GroupedPaths returns the paths of a layer.
// Paths without a group have a group of -1.
func (s *Store) GroupedPaths(ctx context.Context, layer string) ([]population.GroupedPath, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT geometry, year, cost, destination,
		from_row, from_col, to_row, to_col, group_id
		FROM paths WHERE layer = ? ORDER BY seq`, layer)
	if err != nil {
		return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	defer rows.Close()

	var paths []population.GroupedPath
	for rows.Next() {
		var p population.GroupedPath
		var geom string
		var group sql.NullInt64
		if err := rows.Scan(&geom, &p.Year, &p.Cost, &p.ID,
			&p.From.Row, &p.From.Col, &p.To.Row, &p.To.Col, &group); err != nil {
			return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
		}
		g, err := geojson.UnmarshalGeometry([]byte(geom))
		if err != nil {
			return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
		}
		switch l := g.Geometry().(type) {
		case orb.MultiLineString:
			p.Line = l
		case orb.LineString:
			p.Line = orb.MultiLineString{l}
		default:
			return nil, fmt.Errorf("on store %q: layer %q: unexpected geometry %s", s.name, layer, g.Type)
		}
		p.Group = -1
		if group.Valid {
			p.Group = int(group.Int64)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("on store %q: layer %q: %v", s.name, layer, err)
	}
	return paths, nil
}

// Paths returns the paths of a layer.
func (s *Store) Paths(ctx context.Context, layer string) ([]lcpath.Path, error) {
	gp, err := s.GroupedPaths(ctx, layer)
	if err != nil {
		return nil, err
	}
	paths := make([]lcpath.Path, 0, len(gp))
	for _, p := range gp {
		paths = append(paths, p.Path)
	}
	return paths, nil
}

