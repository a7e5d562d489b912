// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package groupcmd implements a command to group
// least-cost paths and presence records
// into populations.
package groupcmd

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `group [--quantile <value> | --cost <value>]
	[--size <value> | --grid <file>] [-o|--output <prefix>]
	<paths-file> <records-file>`,
	Short: "group paths and records into populations",
	Long: `
Command group reads a file of least-cost paths and a file of presence records,
removes the paths with an accumulated cost at or above a threshold, and groups
the remaining paths that share an endpoint. Then each record is assigned to
the group of its nearest path endpoint, if the endpoint is inside the cell of
the record (i.e., at a distance of at most half the diagonal of a cell).

The first argument of the command is the name of the paths file, usually the
output of the command "dispersal paths". The second argument is the name of
the records file, in the coordinates of the cost grid (for example, the output
of the command "dispersal thin").

By default, the threshold is the upper fence (the third quartile plus 1.5
times the interquartile range) of the path costs. Use the flag --quantile to
define the threshold as a quantile of the path costs, or the flag --cost to
define an absolute threshold.

The cell size of the cost grid is required. Use the flag --size to set the
cell size, or the flag --grid to read it from the cost grid file.

The output is stored in two GeoJSON files, one with the grouped paths, and
the other with the grouped records. By default, the prefix of the output
files is "grouped". Use the flag --output, or -o, to set a different prefix.
The output files will be named "<prefix>-paths-grouped.geojson" and
"<prefix>-points-grouped.geojson".
	`,
	SetFlags: setFlags,
	Run:      run,
}

var quantileFlag float64
var costFlag float64
var cellSize float64
var gridFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&quantileFlag, "quantile", math.NaN(), "")
	c.Flags().Float64Var(&costFlag, "cost", math.NaN(), "")
	c.Flags().Float64Var(&cellSize, "size", 0, "")
	c.Flags().StringVar(&gridFile, "grid", "", "")
	c.Flags().StringVar(&output, "output", "grouped", "")
	c.Flags().StringVar(&output, "o", "grouped", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting paths and records files")
	}
	if !math.IsNaN(quantileFlag) && !math.IsNaN(costFlag) {
		return c.UsageError("flags --quantile and --cost are mutually exclusive")
	}

	size := cellSize
	if gridFile != "" {
		g, err := costgrid.ReadFile(gridFile, "")
		if err != nil {
			return err
		}
		size = g.CellSize()
	}
	if size <= 0 {
		return c.UsageError("expecting cell size (flags --size or --grid)")
	}

	paths, err := readPaths(args[0])
	if err != nil {
		return err
	}
	occs, err := occurrence.ReadFile(args[1], occurrence.DefaultFields)
	if err != nil {
		return err
	}
	occs = occurrence.Filter(occs, occurrence.Occurrence.Valid)

	costs := lcpath.Costs(paths)
	var threshold, q float64
	switch {
	case !math.IsNaN(quantileFlag):
		threshold, q = population.Threshold(costs, quantileFlag, false)
	case !math.IsNaN(costFlag):
		threshold, q = population.Threshold(costs, costFlag, true)
	default:
		q, threshold = population.UpperFence(costs)
	}

	l := log.New(c.Stderr(), "", 0)
	l.Printf("threshold: %.6f (quantile %.3f)", threshold, q)
	gp := population.GroupPaths(paths, threshold)
	pts := population.GroupPoints(occs, gp, size)
	l.Printf("paths: %d below threshold, %d groups", len(gp), population.Groups(gp))
	l.Printf("records: %d, %d grouped", len(pts), len(population.Grouped(pts)))

	if err := writeFile(output+"-paths-grouped.geojson", func(w io.Writer) error {
		return population.WritePathsGeoJSON(w, gp)
	}); err != nil {
		return err
	}
	if err := writeFile(output+"-points-grouped.geojson", func(w io.Writer) error {
		return population.WritePointsGeoJSON(w, pts)
	}); err != nil {
		return err
	}
	return nil
}

func readPaths(name string) ([]lcpath.Path, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	paths, err := lcpath.ReadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return paths, nil
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
