// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a run.
package prj

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/dispersal-lab/dispersal/store"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a run",
	Long: `
Command prj reads the manifest of a dispersal run and prints the information
of the different run elements into the standard output.

The argument of the command is the name of the manifest file (the file ending
in "-project.tab" produced by the command "dispersal run").
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	w := c.Stdout()
	fmt.Fprintf(w, "Files:\n")
	for _, s := range p.Sets() {
		fmt.Fprintf(w, "\t%s: %s\n", s, p.Path(s))
	}
	fmt.Fprintf(w, "\n")

	if p.Path(project.Store) == "" {
		return nil
	}
	ctx := context.Background()
	st, err := p.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return printStore(ctx, w, st)
}

func printStore(ctx context.Context, w io.Writer, st *store.Store) error {
	fmt.Fprintf(w, "Run store:\n")
	fmt.Fprintf(w, "\tfile: %s\n", st.Name())
	for _, k := range []string{store.Run, store.CRS, store.CellSize} {
		v, err := st.Meta(ctx, k)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		fmt.Fprintf(w, "\t%s: %s\n", k, v)
	}
	fmt.Fprintf(w, "\n")

	for _, l := range []string{store.Imported, store.Thinned} {
		pts, err := st.Points(ctx, l)
		if err != nil {
			return err
		}
		if len(pts) == 0 {
			continue
		}
		fmt.Fprintf(w, "Records (%s): %d\n", l, len(pts))
	}

	paths, err := st.Paths(ctx, store.Paths)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		fmt.Fprintf(w, "Paths: %d\n", len(paths))
	}
	gp, err := st.GroupedPaths(ctx, store.GroupedPaths)
	if err != nil {
		return err
	}
	if len(gp) > 0 {
		fmt.Fprintf(w, "\tbelow threshold: %d\n", len(gp))
		fmt.Fprintf(w, "\tgroups: %d\n", population.Groups(gp))
	}
	fmt.Fprintf(w, "\n")

	recs, err := st.Rates(ctx)
	if err != nil {
		return err
	}
	if len(recs) > 0 {
		printRates(w, recs)
	}

	res, err := st.Sensitivity(ctx)
	if err != nil {
		return err
	}
	if len(res) > 0 {
		min, max := math.Inf(1), math.Inf(-1)
		for _, r := range res {
			min = math.Min(min, r.Threshold)
			max = math.Max(max, r.Threshold)
		}
		fmt.Fprintf(w, "Sensitivity analysis:\n")
		fmt.Fprintf(w, "\ttests: %d\n", len(res))
		fmt.Fprintf(w, "\tthresholds: [%.6f-%.6f]\n", min, max)
		fmt.Fprintf(w, "\n")
	}
	return nil
}

func printRates(w io.Writer, recs []rate.Record) {
	var points, degenerate int
	min, max := math.Inf(1), math.Inf(-1)
	for _, r := range recs {
		points += r.Points
		if r.Degenerate() {
			degenerate++
			continue
		}
		min = math.Min(min, r.Rate)
		max = math.Max(max, r.Rate)
	}

	fmt.Fprintf(w, "Expansion rates:\n")
	fmt.Fprintf(w, "\tgroups: %d [%d undefined]\n", len(recs), degenerate)
	fmt.Fprintf(w, "\tgrouped records: %d\n", points)
	if degenerate < len(recs) {
		fmt.Fprintf(w, "\trate: [%.6f-%.6f]\n", min, max)
	}
	fmt.Fprintf(w, "\n")
}
