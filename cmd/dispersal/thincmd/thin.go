// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package thincmd implements a command to thin
// presence records on a cost grid.
package thincmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/crs"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/thin"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `thin [--start <year>] [--end <year>]
	[--year <field>] [--location <field>]
	[--crs <crs>] [--grid-crs <crs>]
	[-o|--output <file>] <cost-grid> <presence-file>`,
	Short: "keep the earliest record on each grid cell",
	Long: `
Command thin reads a cost grid and a presence file, and keeps, for each cell
of the grid, the record with the earliest observation year. If two records of
the same cell have the same year, the first record in the file is kept.

The first argument of the command is the name of the cost grid file, as an
ESRI ASCII grid (see "dispersal help cost-files"). The second argument is the
name of the presence file (see "dispersal help presence-files").

By default, records of any year are used. Use the flags --start and --end to
define the first and last year (inclusive) of the analysis.

By default, the observation year is read from the field "year", and the
location name from the field "location". Use the flags --year and --location
to set different field names.

By default, records are assumed to be in the coordinates of the cost grid. Use
the flag --crs to define the coordinate reference system of the records, and
--grid-crs to define the one of the cost grid. Valid values are "EPSG:4326"
(geographic coordinates) and "EPSG:3857" (web mercator).

By default, the thinned records are printed in the standard output as a
GeoJSON feature collection. Use the flag --output, or -o, to define an output
file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var startYear int
var endYear int
var yearField string
var locField string
var recCRS string
var gridCRS string
var output string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&startYear, "start", 0, "")
	c.Flags().IntVar(&endYear, "end", 0, "")
	c.Flags().StringVar(&yearField, "year", occurrence.DefaultFields.Year, "")
	c.Flags().StringVar(&locField, "location", occurrence.DefaultFields.Location, "")
	c.Flags().StringVar(&recCRS, "crs", "", "")
	c.Flags().StringVar(&gridCRS, "grid-crs", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting cost grid and presence files")
	}

	g, err := costgrid.ReadFile(args[0], crs.Normalize(gridCRS))
	if err != nil {
		return err
	}
	occs, err := occurrence.ReadFile(args[1], occurrence.Fields{
		Year:     yearField,
		Location: locField,
	})
	if err != nil {
		return err
	}
	tr, err := crs.New(recCRS, g.CRS())
	if err != nil {
		return err
	}

	w := thin.Window{Start: startYear, End: endYear}
	if startYear == 0 && endYear == 0 {
		years := occurrence.Years(occs)
		if len(years) > 0 {
			w = thin.Window{Start: years[0], End: years[len(years)-1]}
		}
	}
	if w.End < w.Start {
		return fmt.Errorf("invalid years: start %d, end %d", w.Start, w.End)
	}

	res, err := thin.Thin(occs, g, w, tr)
	if err != nil {
		return fmt.Errorf("on file %q: %w", args[1], err)
	}

	l := log.New(c.Stderr(), "", 0)
	l.Printf("records: %d read, %d imported, %d thinned", len(occs), len(res.Points), len(res.Thinned))
	if res.NoData+res.OutWindow+res.OutExtent > 0 {
		l.Printf("INFO: records removed: %d without year or geometry, %d outside [%d, %d], %d outside the grid", res.NoData, res.OutWindow, w.Start, w.End, res.OutExtent)
	}

	if output == "" {
		if err := occurrence.WriteGeoJSON(c.Stdout(), res.Thinned); err != nil {
			return fmt.Errorf("while writing records: %v", err)
		}
		return nil
	}
	return writeFile(output, func(w io.Writer) error {
		return occurrence.WriteGeoJSON(w, res.Thinned)
	})
}

func writeFile(name string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}
