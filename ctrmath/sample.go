// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctrmath provides the numeric kernels used to compare counter
// profiles: order statistics over repeated samples and distances
// between median vectors.
package ctrmath

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of repeated measurements of one counter.
type Sample struct {
	// Values are the measured values, in ascending order.
	Values []float64
}

// NewSample constructs a Sample from a copy of values.
func NewSample(values []float64) *Sample {
	xs := append([]float64(nil), values...)
	// Sort values for fast order statistics.
	sort.Float64s(xs)
	return &Sample{xs}
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// Median returns the median of s: the central value for an odd number
// of values and the mean of the two central values for an even
// number. It returns NaN for an empty sample.
//
// Unlike Quantile(0.5), Median does not interpolate, so it is exact.
func (s *Sample) Median() float64 {
	n := len(s.Values)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return s.Values[n/2]
	}
	return (s.Values[n/2-1] + s.Values[n/2]) / 2
}

// Quantile returns the q'th quantile of s, interpolated using method
// R8 of Hyndman and Fan.
func (s *Sample) Quantile(q float64) float64 {
	return s.sample().Quantile(q)
}

// Bounds returns the smallest and largest values in s.
func (s *Sample) Bounds() (lo, hi float64) {
	return s.sample().Bounds()
}

// Mean returns the arithmetic mean of s.
func (s *Sample) Mean() float64 {
	return s.sample().Mean()
}

// Median returns the median of values without modifying it.
func Median(values []float64) float64 {
	return NewSample(values).Median()
}
