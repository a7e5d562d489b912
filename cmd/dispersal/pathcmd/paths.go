// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package pathcmd implements a command to search
// least-cost paths between presence records.
package pathcmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `paths [--start <year>] [--end <year>] [--conn <number>]
	[--cpu <number>] [-o|--output <file>] <cost-grid> <records-file>`,
	Short: "search least-cost paths between records",
	Long: `
Command paths reads a cost grid and a file of thinned presence records, and
for each year, searches the least-cost path from the records known up to the
previous year to each record first observed in that year.

The first argument of the command is the name of the cost grid file, as an
ESRI ASCII grid (see "dispersal help cost-files"). The second argument is the
name of the records file, usually the output of the command "dispersal thin".
Records must be in the coordinates of the cost grid.

By default, the first and last years of the analysis are the minimum and
maximum years of the records. Use the flags --start and --end to set
different years. Paths are searched for each year after the start year, up
to the end year (inclusive).

By default, paths move between the eight neighbors of a cell. Use the flag
--conn with the value 4 to move only in the four cardinal directions.

By default, all available CPUs are used. Use the flag --cpu to define a
different number of parallel workers.

By default, the paths are printed in the standard output as a GeoJSON feature
collection. Use the flag --output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var startYear int
var endYear int
var conn int
var numCPU int
var output string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&startYear, "start", 0, "")
	c.Flags().IntVar(&endYear, "end", 0, "")
	c.Flags().IntVar(&conn, "conn", int(lcpath.Conn8), "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting cost grid and records files")
	}

	g, err := costgrid.ReadFile(args[0], "")
	if err != nil {
		return err
	}
	occs, err := occurrence.ReadFile(args[1], occurrence.DefaultFields)
	if err != nil {
		return err
	}
	occs = occurrence.Filter(occs, occurrence.Occurrence.Valid)

	years := occurrence.Years(occs)
	if len(years) == 0 {
		return fmt.Errorf("on file %q: no valid records", args[1])
	}
	start, end := years[0], years[len(years)-1]
	if startYear != 0 {
		start = startYear
	}
	if endYear != 0 {
		end = endYear
	}

	l := log.New(c.Stderr(), "", log.Ltime)
	res, err := lcpath.Find(context.Background(), occs, g, lcpath.Options{
		Start:   start,
		End:     end,
		Conn:    lcpath.Connectivity(conn),
		Workers: numCPU,
		Logger:  l,
	})
	if err != nil {
		return err
	}
	l.Printf("paths: %d found for years %d to %d", len(res.Paths), start+1, end)

	if output == "" {
		if err := lcpath.WriteGeoJSON(c.Stdout(), res.Paths); err != nil {
			return fmt.Errorf("while writing paths: %v", err)
		}
		return nil
	}
	return writeFile(output, func(w io.Writer) error {
		return lcpath.WriteGeoJSON(w, res.Paths)
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
