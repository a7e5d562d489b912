// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package config implements the configuration
// of a dispersal analysis run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dispersal-lab/dispersal/occurrence"
	"github.com/dispersal-lab/dispersal/sensitivity"
	"gopkg.in/yaml.v3"
)

// Errors of a configuration.
var (
	ErrConfig = errors.New("invalid configuration")
	ErrMode   = errors.New("unknown mode")
)

// Run modes.
const (
	// Full runs the whole analysis.
	Full = "full"

	// Sensitivity runs only the sensitivity analysis,
	// using the results of a previous full run.
	Sensitivity = "sensitivity"
)

// Config is the configuration of a run.
type Config struct {
	// Workdir is the directory of input and output files.
	// If empty,
	// it is the directory of the configuration file.
	Workdir string `yaml:"workdir"`

	// Run is the name of the run,
	// used as prefix for output files.
	Run string `yaml:"run"`

	Presence Presence `yaml:"presence"`
	Cost     Cost     `yaml:"cost"`

	StartYear int `yaml:"start_year"`
	EndYear   int `yaml:"end_year"`

	// Threshold is the cost threshold
	// used to group paths.
	// If nil,
	// the upper fence of the path costs is used.
	Threshold *Threshold `yaml:"threshold,omitempty"`

	Sensitivity *SensitivitySteps `yaml:"sensitivity,omitempty"`

	Mode         string `yaml:"mode"`
	Connectivity int    `yaml:"connectivity"`
	Workers      int    `yaml:"workers,omitempty"`

	// Plot is true if a plot of the maximum distances
	// should be saved.
	Plot bool `yaml:"plot,omitempty"`
}

// Presence is the presence data input.
type Presence struct {
	File          string `yaml:"file"`
	YearField     string `yaml:"year_field"`
	LocationField string `yaml:"location_field"`

	// CRS is the coordinate reference system of the records.
	// If empty,
	// records are assumed to be in the coordinates
	// of the cost grid.
	CRS string `yaml:"crs,omitempty"`
}

// Cost is the cost grid input.
type Cost struct {
	File string `yaml:"file"`
	CRS  string `yaml:"crs"`
}

// Threshold is a cost threshold.
type Threshold struct {
	Value float64 `yaml:"value"`

	// If Absolute is false,
	// Value is a quantile of the path costs.
	Absolute bool `yaml:"absolute"`
}

// Range is an inclusive range of values.
type Range struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

// Steps returns the values of the range.
// An empty range is a single value.
func (r Range) Steps() ([]float64, error) {
	if r.Step == 0 && r.From == r.To {
		return []float64{r.From}, nil
	}
	return sensitivity.Steps(r.From, r.To, r.Step)
}

// SensitivitySteps defines the values tested
// in a sensitivity analysis.
// If Cost is nil,
// the upper fence of the path costs is tested.
// If Robust is nil,
// all groups are robust.
type SensitivitySteps struct {
	Cost   *CostSteps   `yaml:"cost,omitempty"`
	Robust *RobustSteps `yaml:"robust,omitempty"`
}

// CostSteps are the tested cost thresholds.
type CostSteps struct {
	Range    `yaml:",inline"`
	Absolute bool `yaml:"absolute"`
}

// RobustSteps are the tested definitions of a robust group.
type RobustSteps struct {
	Range    `yaml:",inline"`
	Relative bool `yaml:"relative"`
}

// Load reads a configuration file.
func Load(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file not found: %s", ErrConfig, name)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: on file %q: %v", ErrConfig, name, err)
	}

	if c.Workdir == "" {
		c.Workdir = filepath.Dir(name)
	} else if !filepath.IsAbs(c.Workdir) {
		c.Workdir = filepath.Join(filepath.Dir(name), c.Workdir)
	}
	if c.Mode == "" {
		c.Mode = Full
	}
	if c.Connectivity == 0 {
		c.Connectivity = 8
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return &c, nil
}

// Save writes a configuration into a file.
func Save(name string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the values of a configuration.
func (c *Config) Validate() error {
	if c.Run == "" {
		return fmt.Errorf("%w: run is required", ErrConfig)
	}
	switch c.Mode {
	case Full, Sensitivity:
	default:
		return fmt.Errorf("%w: %w: %q", ErrConfig, ErrMode, c.Mode)
	}
	if c.Connectivity != 4 && c.Connectivity != 8 {
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrConfig, c.Connectivity)
	}
	if c.Presence.YearField == "" {
		return fmt.Errorf("%w: presence.year_field is required", ErrConfig)
	}

	if c.Mode == Full {
		if c.Presence.File == "" {
			return fmt.Errorf("%w: presence.file is required", ErrConfig)
		}
		if c.Cost.File == "" {
			return fmt.Errorf("%w: cost.file is required", ErrConfig)
		}
		if c.StartYear == 0 || c.EndYear == 0 {
			return fmt.Errorf("%w: start_year and end_year are required", ErrConfig)
		}
	}
	if c.StartYear > c.EndYear {
		return fmt.Errorf("%w: start_year %d after end_year %d", ErrConfig, c.StartYear, c.EndYear)
	}

	if t := c.Threshold; t != nil {
		if t.Absolute && t.Value < 0 {
			return fmt.Errorf("%w: threshold.value: invalid cost %v", ErrConfig, t.Value)
		}
		if !t.Absolute && (t.Value < 0 || t.Value > 1) {
			return fmt.Errorf("%w: threshold.value: invalid quantile %v", ErrConfig, t.Value)
		}
	}

	if s := c.Sensitivity; s != nil {
		if cs := s.Cost; cs != nil {
			if _, err := cs.Steps(); err != nil {
				return fmt.Errorf("%w: sensitivity.cost: %v", ErrConfig, err)
			}
			if !cs.Absolute && (cs.From < 0 || cs.To > 1) {
				return fmt.Errorf("%w: sensitivity.cost: quantiles must be between 0 and 1", ErrConfig)
			}
		}
		if rs := s.Robust; rs != nil {
			if _, err := rs.Steps(); err != nil {
				return fmt.Errorf("%w: sensitivity.robust: %v", ErrConfig, err)
			}
		}
	}
	if c.Mode == Sensitivity && c.Sensitivity == nil {
		return fmt.Errorf("%w: sensitivity mode without sensitivity steps", ErrConfig)
	}
	return nil
}

// CheckFiles checks that input files exist.
func (c *Config) CheckFiles() error {
	for _, f := range []string{c.Presence.File, c.Cost.File} {
		if f == "" {
			continue
		}
		p := c.Path(f)
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: input file: %v", ErrConfig, err)
		}
	}
	return nil
}

// Path returns the path of a file
// relative to the working directory.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Workdir, name)
}

// Output returns the path of an output file of the run.
func (c *Config) Output(suffix string) string {
	return filepath.Join(c.Workdir, c.Run+suffix)
}

// Fields returns the field names of the presence data.
func (c *Config) Fields() occurrence.Fields {
	return occurrence.Fields{
		Year:     c.Presence.YearField,
		Location: c.Presence.LocationField,
	}
}

// SweepOptions returns the options of the sensitivity analysis.
func (c *Config) SweepOptions() (sensitivity.Options, error) {
	opt := sensitivity.Options{
		Workers: c.Workers,
	}
	s := c.Sensitivity
	if s == nil {
		return opt, nil
	}

	var err error
	if cs := s.Cost; cs != nil {
		opt.Thresholds, err = cs.Steps()
		if err != nil {
			return opt, fmt.Errorf("%w: sensitivity.cost: %v", ErrConfig, err)
		}
		opt.Absolute = cs.Absolute
	}
	if rs := s.Robust; rs != nil {
		opt.Robust, err = rs.Steps()
		if err != nil {
			return opt, fmt.Errorf("%w: sensitivity.robust: %v", ErrConfig, err)
		}
		opt.RelativeRobust = rs.Relative
	}
	return opt, nil
}
