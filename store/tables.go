// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dispersal-lab/dispersal/rate"
	"github.com/dispersal-lab/dispersal/sensitivity"
)

// PutRates writes the expansion rates
// and the maximum distances by year,
// replacing any previous values.
func (s *Store) PutRates(ctx context.Context, recs []rate.Record, dist []rate.Distance) error {
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rates`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM distances`); err != nil {
			return err
		}
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO rates(group_id, first_label, min_year, max_year,
				points, median_per_year, rate, r_squared) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
				r.Group, r.FirstLabel, r.MinYear, r.MaxYear, r.Points, r.MedianPerYear,
				nullFloat(r.Rate), nullFloat(r.R2)); err != nil {
				return fmt.Errorf("group %d: %v", r.Group, err)
			}
		}
		for _, d := range dist {
			if _, err := tx.ExecContext(ctx, `INSERT INTO distances(group_id, year, max_distance)
				VALUES(?, ?, ?)`, d.Group, d.Year, d.MaxDistance); err != nil {
				return fmt.Errorf("group %d: year %d: %v", d.Group, d.Year, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("on store %q: rates: %v", s.name, err)
	}
	return nil
}

// Rates returns the expansion rates,
// sorted by group.
func (s *Store) Rates(ctx context.Context) ([]rate.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, first_label, min_year, max_year,
		points, median_per_year, rate, r_squared FROM rates ORDER BY group_id`)
	if err != nil {
		return nil, fmt.Errorf("on store %q: rates: %v", s.name, err)
	}
	defer rows.Close()

	var recs []rate.Record
	for rows.Next() {
		var r rate.Record
		var rt, r2 sql.NullFloat64
		if err := rows.Scan(&r.Group, &r.FirstLabel, &r.MinYear, &r.MaxYear,
			&r.Points, &r.MedianPerYear, &rt, &r2); err != nil {
			return nil, fmt.Errorf("on store %q: rates: %v", s.name, err)
		}
		r.Rate = fromNull(rt)
		r.R2 = fromNull(r2)
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("on store %q: rates: %v", s.name, err)
	}
	return recs, nil
}

// Distances returns the maximum distances by year,
// sorted by group and year.
func (s *Store) Distances(ctx context.Context) ([]rate.Distance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, year, max_distance
		FROM distances ORDER BY group_id, year`)
	if err != nil {
		return nil, fmt.Errorf("on store %q: distances: %v", s.name, err)
	}
	defer rows.Close()

	var dist []rate.Distance
	for rows.Next() {
		var d rate.Distance
		if err := rows.Scan(&d.Group, &d.Year, &d.MaxDistance); err != nil {
			return nil, fmt.Errorf("on store %q: distances: %v", s.name, err)
		}
		dist = append(dist, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("on store %q: distances: %v", s.name, err)
	}
	return dist, nil
}

// PutSensitivity writes the results of a sensitivity analysis,
// replacing any previous results.
func (s *Store) PutSensitivity(ctx context.Context, res []sensitivity.Result) error {
	err := s.transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sensitivity`); err != nil {
			return err
		}
		for i, r := range res {
			if _, err := tx.ExecContext(ctx, `INSERT INTO sensitivity(seq, threshold, quantile, robust,
				num_groups, num_robust, min_rate, max_rate, avg_rate) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				i, nullFloat(r.Threshold), nullFloat(r.Quantile), r.Robust, r.Groups, r.RobustGroups,
				nullFloat(r.MinRate), nullFloat(r.MaxRate), nullFloat(r.AvgRate)); err != nil {
				return fmt.Errorf("result %d: %v", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("on store %q: sensitivity: %v", s.name, err)
	}
	return nil
}

// Sensitivity returns the results of a sensitivity analysis.
func (s *Store) Sensitivity(ctx context.Context) ([]sensitivity.Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT threshold, quantile, robust, num_groups, num_robust,
		min_rate, max_rate, avg_rate FROM sensitivity ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("on store %q: sensitivity: %v", s.name, err)
	}
	defer rows.Close()

	var res []sensitivity.Result
	for rows.Next() {
		var r sensitivity.Result
		var t, q, minR, maxR, avgR sql.NullFloat64
		if err := rows.Scan(&t, &q, &r.Robust, &r.Groups, &r.RobustGroups, &minR, &maxR, &avgR); err != nil {
			return nil, fmt.Errorf("on store %q: sensitivity: %v", s.name, err)
		}
		r.Threshold = fromNull(t)
		r.Quantile = fromNull(q)
		r.MinRate = fromNull(minR)
		r.MaxRate = fromNull(maxR)
		r.AvgRate = fromNull(avgR)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("on store %q: sensitivity: %v", s.name, err)
	}
	return res, nil
}
