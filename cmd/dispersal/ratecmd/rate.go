// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package ratecmd implements a command to estimate
// the expansion rate of each group of records.
package ratecmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `rate [--distances <file>] [--plot <image-file>]
	[-o|--output <file>] <grouped-records-file>`,
	Short: "estimate the expansion rate of each group",
	Long: `
Command rate reads a file of grouped records and estimates the expansion rate
of each group.

The argument of the command is the name of the grouped records file, usually
the output of the command "dispersal group".

The expansion rate of a group is the slope of the linear regression of the
maximum distance reached by the group up to each year, against the year. The
distance is measured from the location of the records first observed in the
group. If the group has records in a single year, the expansion rate is
undefined and reported as "NaN".

By default, the rates are printed in the standard output as a tab-delimited
table. Use the flag --output, or -o, to define an output file.

Use the flag --distances to save the maximum distance reached by each group
on each year into a file. Use the flag --plot to save a plot of the maximum
distances. The format of the image is defined by the extension of the file
(e.g., ".png", ".svg", ".pdf").
	`,
	SetFlags: setFlags,
	Run:      run,
}

var distFile string
var plotFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&distFile, "distances", "", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting grouped records file")
	}

	points, err := readPoints(args[0])
	if err != nil {
		return err
	}
	recs, dist := rate.Estimate(points)

	if distFile != "" {
		if err := writeFile(distFile, func(w io.Writer) error {
			return rate.WriteDistances(w, dist)
		}); err != nil {
			return err
		}
	}
	if plotFile != "" && len(dist) > 0 {
		if err := rate.Plot(dist, plotFile); err != nil {
			return err
		}
	}

	if output == "" {
		return rate.WriteRates(c.Stdout(), recs)
	}
	return writeFile(output, func(w io.Writer) error {
		return rate.WriteRates(w, recs)
	})
}

func readPoints(name string) ([]population.GroupedPoint, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	points, err := population.ReadPointsGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return points, nil
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
