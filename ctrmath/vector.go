// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// A Vector is a point in counter space, one component per field.
type Vector []float64

// A NumericError reports an input for which a vector operation is
// undefined.
type NumericError struct {
	Op  string
	Msg string
}

func (e *NumericError) Error() string {
	return e.Op + ": " + e.Msg
}

func checkDims(op string, u, v Vector) error {
	if len(u) != len(v) {
		return &NumericError{op, fmt.Sprintf("dimension mismatch: %d != %d", len(u), len(v))}
	}
	return nil
}

// Cosine returns the cosine of the angle between u and v. It fails if
// either vector has zero length.
func Cosine(u, v Vector) (float64, error) {
	if err := checkDims("cosine", u, v); err != nil {
		return 0, err
	}
	nu, nv := floats.Norm(u, 2), floats.Norm(v, 2)
	if nu == 0 || nv == 0 {
		return 0, &NumericError{"cosine", "zero-length vector"}
	}
	return floats.Dot(u, v) / (nu * nv), nil
}

// Euclidean returns the Euclidean distance between u and v.
func Euclidean(u, v Vector) (float64, error) {
	if err := checkDims("euclidean", u, v); err != nil {
		return 0, err
	}
	return floats.Distance(u, v, 2), nil
}

// Closeness converts distances to closeness percentages that sum to
// 100. Each distance d scores in proportion to 1/d, and scores are
// normalized by their total. Scores are computed as min/d so they lie
// in (0, 1] and cannot overflow for tiny distances.
//
// If any distance is zero, the first zero distance scores 100 and all
// others 0.
func Closeness(distances []float64) ([]float64, error) {
	if len(distances) == 0 {
		return nil, &NumericError{"closeness", "no distances"}
	}
	out := make([]float64, len(distances))
	exact := -1
	for i, d := range distances {
		if d < 0 || math.IsNaN(d) {
			return nil, &NumericError{"closeness", fmt.Sprintf("invalid distance %v at %d", d, i)}
		}
		if d == 0 && exact < 0 {
			exact = i
		}
	}
	if exact >= 0 {
		out[exact] = 100
		return out, nil
	}
	dmin := floats.Min(distances)
	if math.IsInf(dmin, 1) {
		return nil, &NumericError{"closeness", "all distances are infinite"}
	}
	for i, d := range distances {
		out[i] = dmin / d
	}
	floats.Scale(100/floats.Sum(out), out)
	return out, nil
}
