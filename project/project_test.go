// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/project"
	"github.com/dispersal-lab/dispersal/store"
	"github.com/paulmach/orb"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Config, "ragweed.yaml"},
		{project.Points, "ragweed-points.geojson"},
		{project.Paths, "ragweed-paths.geojson"},
		{project.Rates, "ragweed-rates.tab"},
		{project.Store, "ragweed.sqlite"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	dir := t.TempDir()
	name := filepath.Join(dir, "ragweed-project.tab")

	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)

	if f := np.File(project.Store); f != filepath.Join(dir, "ragweed.sqlite") {
		t.Errorf("file: got %q, want %q", f, filepath.Join(dir, "ragweed.sqlite"))
	}
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}

func TestProjectData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	occs := []occurrence.Occurrence{
		{ID: 0, Point: orb.Point{0.5, 0.5}, Year: 2000, HasPoint: true, HasYear: true},
		{ID: 1, Point: orb.Point{2.5, 0.5}, Year: 2001, HasPoint: true, HasYear: true},
	}
	paths := []lcpath.Path{
		{
			Line: orb.MultiLineString{{{0.5, 0.5}, {1.5, 0.5}, {2.5, 0.5}}},
			Year: 2001,
			Cost: 2,
			ID:   1,
		},
	}

	// from files
	p := project.New()
	p.SetName(filepath.Join(dir, "run-project.tab"))
	writeFile(t, filepath.Join(dir, "run-points.geojson"), func(f *os.File) error {
		return occurrence.WriteGeoJSON(f, occs)
	})
	writeFile(t, filepath.Join(dir, "run-paths.geojson"), func(f *os.File) error {
		return lcpath.WriteGeoJSON(f, paths)
	})
	p.Add(project.Points, "run-points.geojson")
	p.Add(project.Paths, "run-paths.geojson")
	testData(t, ctx, p, occs, paths)

	// from the store
	s, err := store.Open(ctx, filepath.Join(dir, "run.sqlite"))
	if err != nil {
		t.Fatalf("unable to open store: %v", err)
	}
	if err := s.PutPoints(ctx, store.Imported, occs); err != nil {
		t.Fatalf("unable to write points: %v", err)
	}
	if err := s.PutPaths(ctx, store.Paths, paths); err != nil {
		t.Fatalf("unable to write paths: %v", err)
	}
	if err := s.SetMeta(ctx, store.CellSize, "1"); err != nil {
		t.Fatalf("unable to write cell size: %v", err)
	}
	s.Close()

	p.Add(project.Points, "")
	p.Add(project.Paths, "")
	p.Add(project.Store, "run.sqlite")
	testData(t, ctx, p, occs, paths)

	size, err := p.CellSize(ctx)
	if err != nil {
		t.Fatalf("cell size: %v", err)
	}
	if size != 1 {
		t.Errorf("cell size: got %v, want %v", size, 1.0)
	}
}

func writeFile(t testing.TB, name string, fn func(f *os.File) error) {
	t.Helper()

	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("unable to create %q: %v", name, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		t.Fatalf("unable to write %q: %v", name, err)
	}
}

func testData(t testing.TB, ctx context.Context, p *project.Project, occs []occurrence.Occurrence, paths []lcpath.Path) {
	t.Helper()

	gotOccs, err := p.Points(ctx)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if !reflect.DeepEqual(gotOccs, occs) {
		t.Errorf("points: got %v, want %v", gotOccs, occs)
	}

	gotPaths, err := p.Paths(ctx)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if !reflect.DeepEqual(gotPaths, paths) {
		t.Errorf("paths: got %v, want %v", gotPaths, paths)
	}
}
