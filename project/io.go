// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dispersal-lab/dispersal/lcpath"
	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/store"
)

// OpenStore opens the run store
// as defined in a project.
func (p *Project) OpenStore(ctx context.Context) (*store.Store, error) {
	name := p.File(Store)
	if name == "" {
		return nil, fmt.Errorf("run store not defined in project %q", p.name)
	}
	if _, err := os.Stat(name); err != nil {
		return nil, err
	}
	return store.Open(ctx, name)
}

// Paths reads the least-cost paths
// as defined in a project.
// If the run store is defined,
// paths are read from the store,
// otherwise they are read from the paths file.
func (p *Project) Paths(ctx context.Context) ([]lcpath.Path, error) {
	if p.Path(Store) != "" {
		s, err := p.OpenStore(ctx)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Paths(ctx, store.Paths)
	}

	name := p.File(Paths)
	if name == "" {
		return nil, fmt.Errorf("paths not defined in project %q", p.name)
	}
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

// Points reads the records imported into grid coordinates
// as defined in a project.
// If the run store is defined,
// records are read from the store,
// otherwise they are read from the points file.
func (p *Project) Points(ctx context.Context) ([]occurrence.Occurrence, error) {
	if p.Path(Store) != "" {
		s, err := p.OpenStore(ctx)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Points(ctx, store.Imported)
	}

	name := p.File(Points)
	if name == "" {
		return nil, fmt.Errorf("points not defined in project %q", p.name)
	}
	occs, err := occurrence.ReadFile(name, occurrence.DefaultFields)
	if err != nil {
		return nil, err
	}
	return occs, nil
}

// CellSize returns the cell size of the cost grid
// used in the run
// as stored in the run store.
func (p *Project) CellSize(ctx context.Context) (float64, error) {
	s, err := p.OpenStore(ctx)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	v, err := s.Meta(ctx, store.CellSize)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, fmt.Errorf("cell size not defined in store %q", s.Name())
	}
	size, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("store %q: cell size: %v", s.Name(), err)
	}
	return size, nil
}
