// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package runcmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dispersal-lab/dispersal/config"
	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/population"
	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/rate"
	"github.com/dispersal-lab/dispersal/sensitivity"
	"github.com/dispersal-lab/dispersal/store"
)

// output writes the results of a run
// into the run files,
// the run store,
// and the run manifest.
type output struct {
	cfg *config.Config
	prj *project.Project
	st  *store.Store
	l   *log.Logger
}

func newOutput(ctx context.Context, cfg *config.Config, l *log.Logger) (*output, error) {
	name := cfg.Output(".sqlite")
	st, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	prj := project.New()
	prj.SetName(cfg.Output("-project.tab"))
	prj.Add(project.Store, filepath.Base(name))

	return &output{
		cfg: cfg,
		prj: prj,
		st:  st,
		l:   l,
	}, nil
}

// openOutput opens the output of a previous run.
func openOutput(ctx context.Context, cfg *config.Config, prj *project.Project, l *log.Logger) (*output, error) {
	st, err := prj.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	return &output{
		cfg: cfg,
		prj: prj,
		st:  st,
		l:   l,
	}, nil
}

func (o *output) close() {
	if err := o.st.Close(); err != nil {
		o.l.Printf("WARNING: on store %q: %v", o.st.Name(), err)
	}
}

func (o *output) meta(ctx context.Context, key, value string) error {
	return o.st.SetMeta(ctx, key, value)
}

func (o *output) points(ctx context.Context, set project.Dataset, layer string, occs []occurrence.Occurrence) error {
	if err := o.writeFile(set, "-"+string(set)+".geojson", func(w io.Writer) error {
		return occurrence.WriteGeoJSON(w, occs)
	}); err != nil {
		return err
	}
	return o.st.PutPoints(ctx, layer, occs)
}

func (o *output) paths(ctx context.Context, paths []lcpath.Path) error {
	if err := o.writeFile(project.Paths, "-paths.geojson", func(w io.Writer) error {
		return lcpath.WriteGeoJSON(w, paths)
	}); err != nil {
		return err
	}
	return o.st.PutPaths(ctx, store.Paths, paths)
}

func (o *output) grouped(ctx context.Context, paths []population.GroupedPath, points []population.GroupedPoint) error {
	if err := o.writeFile(project.GroupedPaths, "-paths-grouped.geojson", func(w io.Writer) error {
		return population.WritePathsGeoJSON(w, paths)
	}); err != nil {
		return err
	}
	if err := o.st.PutGroupedPaths(ctx, store.GroupedPaths, paths); err != nil {
		return err
	}

	if err := o.writeFile(project.GroupedPoints, "-points-grouped.geojson", func(w io.Writer) error {
		return population.WritePointsGeoJSON(w, points)
	}); err != nil {
		return err
	}
	return o.st.PutGroupedPoints(ctx, store.GroupedPoints, population.Grouped(points))
}

func (o *output) rates(ctx context.Context, recs []rate.Record, dist []rate.Distance) error {
	if err := o.writeFile(project.Rates, "-rates.tab", func(w io.Writer) error {
		return rate.WriteRates(w, recs)
	}); err != nil {
		return err
	}
	if err := o.writeFile(project.Distances, "-distances.tab", func(w io.Writer) error {
		return rate.WriteDistances(w, dist)
	}); err != nil {
		return err
	}
	return o.st.PutRates(ctx, recs, dist)
}

func (o *output) sensitivity(ctx context.Context, res []sensitivity.Result) error {
	if err := o.writeFile(project.Sensitivity, "-sensitivity.tab", func(w io.Writer) error {
		return sensitivity.Write(w, res)
	}); err != nil {
		return err
	}
	return o.st.PutSensitivity(ctx, res)
}

// writeFile writes a run file
// and adds it to the run manifest.
func (o *output) writeFile(set project.Dataset, suffix string, fn func(w io.Writer) error) (err error) {
	name := o.cfg.Output(suffix)
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
		return fmt.Errorf("on file %q: %w", name, err)
	}
	o.prj.Add(set, filepath.Base(name))
	o.l.Printf("%s saved to %q", set, filepath.Base(name))
	return nil
}
