// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package store implements a run store:
// a SQLite database with the layers
// and tables produced by a dispersal analysis run.
//
// Each layer is identified by a name,
// and writing a layer replaces any previous content
// of the layer.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

// Known layer names.
const (
	Imported      = "points"
	Thinned       = "thinned"
	Paths         = "paths"
	GroupedPaths  = "paths-grouped"
	GroupedPoints = "points-grouped"
)

// Known metadata keys.
const (
	CellSize = "cell_size"
	CRS      = "crs"
	Run      = "run"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS points (
		layer TEXT NOT NULL,
		id INTEGER NOT NULL,
		x REAL,
		y REAL,
		year INTEGER,
		label TEXT NOT NULL DEFAULT '',
		group_id INTEGER,
		distance REAL
	)`,
	`CREATE INDEX IF NOT EXISTS points_layer ON points(layer)`,
	`CREATE TABLE IF NOT EXISTS paths (
		layer TEXT NOT NULL,
		seq INTEGER NOT NULL,
		geometry TEXT NOT NULL,
		year INTEGER NOT NULL,
		cost REAL NOT NULL,
		destination INTEGER NOT NULL,
		from_row INTEGER NOT NULL,
		from_col INTEGER NOT NULL,
		to_row INTEGER NOT NULL,
		to_col INTEGER NOT NULL,
		group_id INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS paths_layer ON paths(layer)`,
	`CREATE TABLE IF NOT EXISTS rates (
		group_id INTEGER PRIMARY KEY,
		first_label TEXT NOT NULL,
		min_year INTEGER NOT NULL,
		max_year INTEGER NOT NULL,
		points INTEGER NOT NULL,
		median_per_year REAL NOT NULL,
		rate REAL,
		r_squared REAL
	)`,
	`CREATE TABLE IF NOT EXISTS distances (
		group_id INTEGER NOT NULL,
		year INTEGER NOT NULL,
		max_distance REAL NOT NULL,
		PRIMARY KEY (group_id, year)
	)`,
	`CREATE TABLE IF NOT EXISTS sensitivity (
		seq INTEGER PRIMARY KEY,
		threshold REAL,
		quantile REAL,
		robust REAL NOT NULL,
		num_groups INTEGER NOT NULL,
		num_robust INTEGER NOT NULL,
		min_rate REAL,
		max_rate REAL,
		avg_rate REAL
	)`,
}

// A Store is a run store.
type Store struct {
	db   *sql.DB
	name string
}

// Open opens a run store,
// creating the file if it does not exist.
func Open(ctx context.Context, name string) (*Store, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("on store %q: %v", name, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, name: name}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("on store %q: %v", name, err)
	}
	if err := s.transaction(ctx, func(tx *sql.Tx) error {
		for _, q := range schema {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("on store %q: while creating schema: %v", name, err)
	}
	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the file name of the store.
func (s *Store) Name() string {
	return s.name
}

// transaction executes a function within a transaction.
func (s *Store) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SetMeta sets a metadata value.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO meta(name, value) VALUES(?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("on store %q: meta %q: %v", s.name, key, err)
	}
	return nil
}

// Meta returns a metadata value.
// It returns an empty string if the key is not defined.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE name = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("on store %q: meta %q: %v", s.name, key, err)
	}
	return v, nil
}

// nullFloat returns a float value
// that is NULL for undefined values.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// fromNull returns NaN for NULL values.
func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
