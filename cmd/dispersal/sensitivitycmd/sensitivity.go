// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sensitivitycmd implements a command to run
// a sensitivity analysis
// on the results of a previous run.
package sensitivitycmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/sensitivity"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `sensitivity [--cost <range>] [--absolute]
	[--robust <range>] [--relative] [--cpu <number>]
	[-o|--output <file>] <project-file>`,
	Short: "run a sensitivity analysis of the cost threshold",
	Long: `
Command sensitivity reads the manifest of a previous dispersal run, and tests
the effect of the cost threshold and the definition of a robust group on the
number of groups and their expansion rates.

The argument of the command is the name of the manifest file (the file ending
in "-project.tab" produced by the command "dispersal run").

A range of values is defined as:

	<from>,<to>,<step>

or as a single value.

Use the flag --cost to define the tested cost thresholds. By default, the
values are quantiles of the path costs; use the flag --absolute to define the
values as absolute cost thresholds. If no range is given, the upper fence of
the path costs is used.

Use the flag --robust to define the minimum median number of records per year
of a group to be considered robust. If the flag --relative is defined, each
value is a fraction of the maximum median number of records per year found
with a given threshold. By default, all groups are robust.

By default, all available CPUs are used. Use the flag --cpu to define a
different number of parallel workers.

By default, the results are printed in the standard output as a tab-delimited
table. Use the flag --output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var costFlag string
var absFlag bool
var robustFlag string
var relFlag bool
var numCPU int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&costFlag, "cost", "", "")
	c.Flags().BoolVar(&absFlag, "absolute", false, "")
	c.Flags().StringVar(&robustFlag, "robust", "", "")
	c.Flags().BoolVar(&relFlag, "relative", false, "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	opt := sensitivity.Options{
		Absolute:       absFlag,
		RelativeRobust: relFlag,
		Workers:        numCPU,
	}
	var err error
	if opt.Thresholds, err = parseRange(costFlag); err != nil {
		return c.UsageError(fmt.Sprintf("flag --cost: %v", err))
	}
	if opt.Robust, err = parseRange(robustFlag); err != nil {
		return c.UsageError(fmt.Sprintf("flag --robust: %v", err))
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()
	points, err := p.Points(ctx)
	if err != nil {
		return err
	}
	paths, err := p.Paths(ctx)
	if err != nil {
		return err
	}
	cellSize, err := p.CellSize(ctx)
	if err != nil {
		return err
	}

	l := log.New(c.Stderr(), "", log.Ltime)
	l.Printf("records: %d, paths: %d, cell size %g", len(points), len(paths), cellSize)
	res, err := sensitivity.Sweep(ctx, points, paths, cellSize, opt)
	if err != nil {
		return err
	}

	if output == "" {
		if err := sensitivity.Write(c.Stdout(), res); err != nil {
			return fmt.Errorf("while writing results: %v", err)
		}
		return nil
	}
	return writeFile(output, func(w io.Writer) error {
		return sensitivity.Write(w, res)
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

func parseRange(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	f := strings.Split(s, ",")
	v := make([]float64, 0, len(f))
	for _, x := range f {
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, err
		}
		v = append(v, n)
	}
	switch len(v) {
	case 1:
		return v, nil
	case 3:
		return sensitivity.Steps(v[0], v[1], v[2])
	}
	return nil, fmt.Errorf("invalid range %q", s)
}
