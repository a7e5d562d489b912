// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rate

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var ratesHeader = []string{
	"group_id",
	"first_observed_label",
	"min_year",
	"max_year",
	"points",
	"median_per_year",
	"expansion_rate",
	"r_squared",
}

// WriteRates writes expansion rates as a TSV file.
// Undefined rates are written as "NaN".
func WriteRates(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# expansion rates\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(ratesHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, r := range recs {
		row := []string{
			strconv.Itoa(r.Group),
			r.FirstLabel,
			strconv.Itoa(r.MinYear),
			strconv.Itoa(r.MaxYear),
			strconv.Itoa(r.Points),
			strconv.FormatFloat(r.MedianPerYear, 'f', -1, 64),
			strconv.FormatFloat(r.Rate, 'f', -1, 64),
			strconv.FormatFloat(r.R2, 'f', -1, 64),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

// ReadRates reads expansion rates from a TSV file.
func ReadRates(r io.Reader) ([]Record, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range ratesHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	var recs []Record
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		var rec Record
		ints := []struct {
			f string
			v *int
		}{
			{"group_id", &rec.Group},
			{"min_year", &rec.MinYear},
			{"max_year", &rec.MaxYear},
			{"points", &rec.Points},
		}
		for _, iv := range ints {
			v, err := strconv.Atoi(row[fields[iv.f]])
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, iv.f, err)
			}
			*iv.v = v
		}
		floats := []struct {
			f string
			v *float64
		}{
			{"median_per_year", &rec.MedianPerYear},
			{"expansion_rate", &rec.Rate},
			{"r_squared", &rec.R2},
		}
		for _, fv := range floats {
			v, err := strconv.ParseFloat(row[fields[fv.f]], 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, fv.f, err)
			}
			*fv.v = v
		}
		rec.FirstLabel = row[fields["first_observed_label"]]
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteDistances writes the maximum distance
// reached by each group on each year
// as a TSV file.
func WriteDistances(w io.Writer, dist []Distance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# maximum distance by year\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tab := csv.NewWriter(bw)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write([]string{"group_id", "year", "max_distance"}); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, d := range dist {
		row := []string{
			strconv.Itoa(d.Group),
			strconv.Itoa(d.Year),
			strconv.FormatFloat(d.MaxDistance, 'f', -1, 64),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
