// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package runcmd implements a command to run
// a complete dispersal analysis
// from a configuration file.
package runcmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	"github.com/dispersal-lab/dispersal/config"
	"github.com/dispersal-lab/dispersal/costgrid"
	"github.com/dispersal-lab/dispersal/crs"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/dispersal-lab/dispersal/store"
	"github.com/dispersal-lab/dispersal/thin"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `run [--mode <mode>] [--cpu <number>] <config-file>`,
	Short: "run a dispersal analysis",
	Long: `
Command run reads a configuration file and runs a dispersal analysis of an
invasive species.

The argument of the command is the name of the configuration file. See
"dispersal help config-files" for the format of the file.

The analysis is made in the following stages:

	1. The cost grid and the presence records are read. Records are
	   transformed into the coordinates of the cost grid.
	2. Records are thinned, keeping the earliest record on each cell of
	   the grid.
	3. For each year, a least-cost path is searched from the records
	   known up to the previous year to each record first observed in
	   that year.
	4. Paths with an accumulated cost at or above a threshold are
	   removed, and the remaining paths are grouped by shared endpoints.
	   If no threshold is defined in the configuration, the upper fence
	   (Q3 + 1.5 IQR) of the path costs is used.
	5. Records are assigned to the group of the nearest path endpoint.
	6. The expansion rate of each group is estimated.
	7. If defined in the configuration, a sensitivity analysis of the
	   cost threshold and the definition of robust groups is made.

All output files are stored in the working directory, using the run name as
prefix:

	<run>-points.geojson          imported records
	<run>-thinned.geojson         thinned records
	<run>-paths.geojson           least-cost paths
	<run>-paths-grouped.geojson   paths with its group
	<run>-points-grouped.geojson  records with its group
	<run>-rates.tab               expansion rates
	<run>-distances.tab           maximum distance by year
	<run>-sensitivity.tab         sensitivity analysis
	<run>-distances.png           plot of the maximum distances
	<run>.sqlite                  run store with all of the above
	<run>-project.tab             run manifest

By default, the mode of the run is defined in the configuration file. Use the
flag --mode to set a different mode. Valid modes are:

	full         runs the whole analysis
	sensitivity  runs only the sensitivity analysis, using the files
	             of a previous full run (as defined in the run manifest)

By default, the number of parallel workers is defined in the configuration
file, or all available CPUs are used. Use the flag --cpu to define a
different number of workers.

Progress messages are printed in the standard error.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modeFlag string
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modeFlag, "mode", "", "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting configuration file")
	}

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if numCPU > 0 {
		cfg.Workers = numCPU
	}

	l := log.New(c.Stderr(), "", log.Ltime)
	ctx := context.Background()

	if cfg.Mode == config.Sensitivity {
		return sensitivityOnly(ctx, cfg, l)
	}

	if err := cfg.CheckFiles(); err != nil {
		return err
	}
	cfgFile, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	return full(ctx, cfg, cfgFile, l)
}

func full(ctx context.Context, cfg *config.Config, cfgFile string, l *log.Logger) error {
	l.Printf("reading cost grid %q...", cfg.Cost.File)
	g, err := costgrid.ReadFile(cfg.Path(cfg.Cost.File), crs.Normalize(cfg.Cost.CRS))
	if err != nil {
		return err
	}
	l.Printf("cost grid: %d x %d cells, cell size %g", g.Rows(), g.Cols(), g.CellSize())

	l.Printf("reading presence data %q...", cfg.Presence.File)
	occs, err := occurrence.ReadFile(cfg.Path(cfg.Presence.File), cfg.Fields())
	if err != nil {
		return err
	}
	tr, err := crs.New(cfg.Presence.CRS, g.CRS())
	if err != nil {
		return err
	}

	l.Printf("selecting presence locations with minimum year per cell...")
	th, err := thin.Thin(occs, g, thin.Window{Start: cfg.StartYear, End: cfg.EndYear}, tr)
	if err != nil {
		return fmt.Errorf("on file %q: %w", cfg.Presence.File, err)
	}
	l.Printf("records: %d read, %d imported, %d thinned", len(occs), len(th.Points), len(th.Thinned))
	if th.NoData+th.OutWindow+th.OutExtent > 0 {
		l.Printf("INFO: records removed: %d without year or geometry, %d outside [%d, %d], %d outside the grid", th.NoData, th.OutWindow, cfg.StartYear, cfg.EndYear, th.OutExtent)
	}

	o, err := newOutput(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer o.close()
	o.prj.Add(project.Config, cfgFile)
	o.prj.Add(project.Cost, cfg.Path(cfg.Cost.File))
	o.prj.Add(project.Presence, cfg.Path(cfg.Presence.File))

	if err := o.meta(ctx, store.Run, cfg.Run); err != nil {
		return err
	}
	if err := o.meta(ctx, store.CRS, g.CRS()); err != nil {
		return err
	}
	if err := o.meta(ctx, store.CellSize, strconv.FormatFloat(g.CellSize(), 'f', -1, 64)); err != nil {
		return err
	}
	if err := o.points(ctx, project.Points, store.Imported, th.Points); err != nil {
		return err
	}
	if err := o.points(ctx, project.Thinned, store.Thinned, th.Thinned); err != nil {
		return err
	}

	l.Printf("calculating least-cost paths for years %d to %d...", cfg.StartYear+1, cfg.EndYear)
	res, err := lcpath.Find(ctx, th.Thinned, g, lcpath.Options{
		Start:   cfg.StartYear,
		End:     cfg.EndYear,
		Conn:    lcpath.Connectivity(cfg.Connectivity),
		Workers: cfg.Workers,
		Logger:  l,
	})
	if err != nil {
		return err
	}
	l.Printf("paths: %d found", len(res.Paths))
	if err := o.paths(ctx, res.Paths); err != nil {
		return err
	}

	costs := res.Costs()
	var threshold, q float64
	if t := cfg.Threshold; t != nil {
		threshold, q = population.Threshold(costs, t.Value, t.Absolute)
	} else {
		q, threshold = population.UpperFence(costs)
		l.Printf("using upper fence as threshold")
	}
	l.Printf("threshold: %.6f (quantile %.3f)", threshold, q)

	gp := population.GroupPaths(res.Paths, threshold)
	l.Printf("paths: %d below threshold, %d groups", len(gp), population.Groups(gp))
	pts := population.GroupPoints(th.Points, gp, th.CellSize)
	if err := o.grouped(ctx, gp, pts); err != nil {
		return err
	}

	l.Printf("calculating expansion rates...")
	recs, dist := rate.Estimate(pts)
	for _, r := range recs {
		if r.Degenerate() {
			l.Printf("INFO: group %d: expansion rate undefined (%d years)", r.Group, r.MaxYear-r.MinYear+1)
		}
	}
	if err := o.rates(ctx, recs, dist); err != nil {
		return err
	}
	if cfg.Plot && len(dist) > 0 {
		name := cfg.Output("-distances.png")
		if err := rate.Plot(dist, name); err != nil {
			return err
		}
		o.prj.Add(project.Plot, filepath.Base(name))
	}

	if cfg.Sensitivity != nil {
		if err := sweep(ctx, cfg, o, th.Points, res.Paths, th.CellSize); err != nil {
			return err
		}
	}

	if err := o.prj.Write(); err != nil {
		return err
	}
	l.Printf("run %q done", cfg.Run)
	return nil
}

func logSweep(l *log.Logger, absolute bool, th []float64) {
	if len(th) == 0 {
		l.Printf("testing the upper fence threshold...")
		return
	}
	if absolute {
		l.Printf("testing accumulated cost thresholds (absolute) from %.3f to %.3f...", th[0], th[len(th)-1])
		return
	}
	l.Printf("testing accumulated cost thresholds (quantiles) from Q%.3f to Q%.3f...", th[0], th[len(th)-1])
}
