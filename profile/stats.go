// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"sort"

	"github.com/hpcprof/wlclass/ctrmath"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// A FieldStat summarizes the samples of one field of a Matrix.
type FieldStat struct {
	Field    string
	Mean     float64
	Variance float64 // unbiased sample variance
	Min, Max float64
}

// FieldStats summarizes each column of m.
func FieldStats(m *Matrix) []FieldStat {
	out := make([]FieldStat, len(m.Fields))
	for j, name := range m.Fields {
		col := m.Column(j)
		s := ctrmath.NewSample(col)
		lo, hi := s.Bounds()
		out[j] = FieldStat{
			Field:    name,
			Mean:     s.Mean(),
			Variance: stat.Variance(col, nil),
			Min:      lo,
			Max:      hi,
		}
	}
	return out
}

// Spearman returns the Spearman rank correlation between every pair of
// fields of m. Tied values get the average of their ranks. The
// correlation of a constant field is NaN.
func Spearman(m *Matrix) *mat.SymDense {
	_, cols := m.Data.Dims()
	ranks := make([][]float64, cols)
	for j := range ranks {
		ranks[j] = rank(m.Column(j))
	}
	c := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			c.SetSym(i, j, stat.Correlation(ranks[i], ranks[j], nil))
		}
	}
	return c
}

// rank returns the 1-based rank of each value of xs, averaging the
// ranks of ties.
func rank(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		// Positions i..j-1 are tied; ranks are i+1..j.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}
	return ranks
}
