// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package runcmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dispersal-lab/dispersal/config"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/sensitivity"
)

func sweep(ctx context.Context, cfg *config.Config, o *output, points []occurrence.Occurrence, paths []lcpath.Path, cellSize float64) error {
	opt, err := cfg.SweepOptions()
	if err != nil {
		return err
	}
	logSweep(o.l, opt.Absolute, opt.Thresholds)

	res, err := sensitivity.Sweep(ctx, points, paths, cellSize, opt)
	if err != nil {
		return err
	}
	l := o.l
	for _, r := range res {
		l.Printf("threshold %.6f (quantile %.3f), robust %g: %d groups, %d robust", r.Threshold, r.Quantile, r.Robust, r.Groups, r.RobustGroups)
	}
	return o.sensitivity(ctx, res)
}

// sensitivityOnly runs the sensitivity analysis
// using the files of a previous run.
func sensitivityOnly(ctx context.Context, cfg *config.Config, l *log.Logger) error {
	name := cfg.Output("-project.tab")
	if _, err := os.Stat(name); err != nil {
		return fmt.Errorf("%w: sensitivity mode requires a previous run: %v", config.ErrMode, err)
	}
	prj, err := project.Read(name)
	if err != nil {
		return err
	}

	l.Printf("reading results of run %q...", cfg.Run)
	points, err := prj.Points(ctx)
	if err != nil {
		return err
	}
	paths, err := prj.Paths(ctx)
	if err != nil {
		return err
	}
	cellSize, err := prj.CellSize(ctx)
	if err != nil {
		return err
	}
	l.Printf("records: %d, paths: %d, cell size %g", len(points), len(paths), cellSize)

	o, err := openOutput(ctx, cfg, prj, l)
	if err != nil {
		return err
	}
	defer o.close()

	if err := sweep(ctx, cfg, o, points, paths, cellSize); err != nil {
		return err
	}
	if err := o.prj.Write(); err != nil {
		return err
	}
	l.Printf("run %q done", cfg.Run)
	return nil
}
