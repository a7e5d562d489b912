// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rate

import (
	"fmt"

	"github.com/js-arias/blind"
	"golang.org/x/exp/slices"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Plot saves a plot of the maximum distance
// reached by each group over time.
// The format of the image is defined
// by the extension of the file name
// (e.g., ".png", ".svg").
func Plot(dist []Distance, name string) error {
	if len(dist) == 0 {
		return fmt.Errorf("plot %q: no data", name)
	}

	series := make(map[int]plotter.XYs)
	for _, d := range dist {
		series[d.Group] = append(series[d.Group], plotter.XY{
			X: float64(d.Year),
			Y: d.MaxDistance,
		})
	}
	groups := make([]int, 0, len(series))
	for g := range series {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	p := plot.New()
	p.X.Label.Text = "year"
	p.Y.Label.Text = "maximum distance"

	for i, g := range groups {
		l, err := plotter.NewLine(series[g])
		if err != nil {
			return fmt.Errorf("plot %q: group %d: %v", name, g, err)
		}
		v := 0.0
		if len(groups) > 1 {
			v = float64(i) / float64(len(groups)-1)
		}
		l.LineStyle.Color = blind.Sequential(blind.Iridescent, v)
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		if len(groups) <= 12 {
			p.Legend.Add(fmt.Sprintf("group %d", g), l)
		}
	}
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return err
	}
	return nil
}
