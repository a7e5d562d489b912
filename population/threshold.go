// Copyright © 2026 The Dispersal Lab Authors
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package population

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of a set of values,
// using linear interpolation between the closest ranks
// (i.e., the position of the quantile is (n-1)·p).
// It returns NaN if there are no values.
//
// The input is not modified.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	x := sorted(values)
	return quantile(x, p)
}

func quantile(x []float64, p float64) float64 {
	if p <= 0 {
		return x[0]
	}
	if p >= 1 {
		return x[len(x)-1]
	}
	h := float64(len(x)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(x) {
		return x[i]
	}
	return x[i] + (h-lo)*(x[i+1]-x[i])
}

func sorted(values []float64) []float64 {
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	return x
}

// Below returns the fraction of values
// strictly below a value.
func Below(values []float64, v float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	n := 0
	for _, x := range values {
		if x < v {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// Threshold returns a cost threshold
// and its quantile.
// If absolute is true,
// the value is the threshold,
// and the quantile is the fraction of costs
// strictly below the threshold.
// Otherwise the value is a quantile
// and the threshold is the quantile of the costs.
func Threshold(costs []float64, value float64, absolute bool) (threshold, q float64) {
	if absolute {
		return value, Below(costs, value)
	}
	return Quantile(costs, value), value
}

// UpperFence returns the upper fence
// (the third quartile plus 1.5 times the interquartile range)
// of a set of costs,
// and the fraction of costs strictly below the fence.
func UpperFence(costs []float64) (q, fence float64) {
	if len(costs) == 0 {
		return math.NaN(), math.NaN()
	}
	x := sorted(costs)
	q1 := quantile(x, 0.25)
	q3 := quantile(x, 0.75)
	fence = q3 + 1.5*(q3-q1)
	return Below(costs, fence), fence
}
