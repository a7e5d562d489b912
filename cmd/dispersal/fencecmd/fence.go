// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fencecmd implements a command to print
// the distribution of path costs
// and the cost thresholds.
package fencecmd

import (
	"fmt"
	"math"
	"os"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "fence [--quantile <value>] [--cost <value>] <paths-file>",
	Short: "print the cost threshold of a set of paths",
	Long: `
Command fence reads a file of least-cost paths and prints the distribution of
the accumulated costs of the paths, as well as the upper fence (the third
quartile plus 1.5 times the interquartile range) that is used as the default
cost threshold.

The argument of the command is the name of the paths file, usually the output
of the command "dispersal paths".

Use the flag --quantile to print the cost threshold at a given quantile of the
costs. Use the flag --cost to print the quantile of a given cost threshold
(i.e., the fraction of paths with a cost below the threshold).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var quantileFlag float64
var costFlag float64

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&quantileFlag, "quantile", math.NaN(), "")
	c.Flags().Float64Var(&costFlag, "cost", math.NaN(), "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting paths file")
	}

	paths, err := readPaths(args[0])
	if err != nil {
		return err
	}
	costs := lcpath.Costs(paths)
	if len(costs) == 0 {
		return fmt.Errorf("on file %q: no paths", args[0])
	}

	w := c.Stdout()
	fmt.Fprintf(w, "paths: %d\n", len(costs))
	fmt.Fprintf(w, "\tmin: %.6f\n", population.Quantile(costs, 0))
	fmt.Fprintf(w, "\tQ1: %.6f\n", population.Quantile(costs, 0.25))
	fmt.Fprintf(w, "\tmedian: %.6f\n", population.Quantile(costs, 0.5))
	fmt.Fprintf(w, "\tQ3: %.6f\n", population.Quantile(costs, 0.75))
	fmt.Fprintf(w, "\tmax: %.6f\n", population.Quantile(costs, 1))

	q, fence := population.UpperFence(costs)
	fmt.Fprintf(w, "upper fence: %.6f [quantile %.3f]\n", fence, q)

	if !math.IsNaN(quantileFlag) {
		if quantileFlag < 0 || quantileFlag > 1 {
			return fmt.Errorf("invalid quantile %v", quantileFlag)
		}
		th, _ := population.Threshold(costs, quantileFlag, false)
		fmt.Fprintf(w, "threshold at quantile %.3f: %.6f\n", quantileFlag, th)
	}
	if !math.IsNaN(costFlag) {
		_, q := population.Threshold(costs, costFlag, true)
		fmt.Fprintf(w, "quantile of threshold %.6f: %.3f\n", costFlag, q)
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
