// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrfmt

import (
	"fmt"
	"io"
)

// Aggregate collapses rows, one Record per sample, into a single
// Record. Fields keep the order of the first row. A field is numeric
// in the result if it is numeric in every row, in which case its
// samples are concatenated in row order; otherwise it is metadata and
// takes the first row's value.
//
// Every row must have the same field names as the first.
func Aggregate(rows []*Record) (*Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to aggregate")
	}
	first := rows[0]
	numeric := make([]bool, len(first.Fields))
	for i, f := range first.Fields {
		numeric[i] = !f.Value.IsMeta
	}
	for _, row := range rows[1:] {
		if len(row.Fields) != len(first.Fields) {
			return nil, rowMismatch(row, fmt.Sprintf("has %d fields, want %d", len(row.Fields), len(first.Fields)))
		}
		for i, f := range first.Fields {
			v, ok := row.Get(f.Name)
			if !ok {
				return nil, rowMismatch(row, fmt.Sprintf("missing field %q", f.Name))
			}
			if v.IsMeta {
				numeric[i] = false
			}
		}
	}

	agg := &Record{
		Fields:   make([]Field, len(first.Fields)),
		fileName: first.fileName,
		line:     first.line,
	}
	for i, f := range first.Fields {
		if !numeric[i] {
			v := f.Value
			if !v.IsMeta {
				v = MetaValue(formatFloat(v.Samples[0]))
			}
			agg.Fields[i] = Field{f.Name, v}
			continue
		}
		samples := make([]float64, 0, len(rows))
		for _, row := range rows {
			v, _ := row.Get(f.Name)
			samples = append(samples, v.Samples...)
		}
		agg.Fields[i] = Field{f.Name, NumericValue(samples...)}
	}
	return agg, nil
}

func rowMismatch(row *Record, msg string) error {
	file, line := row.Pos()
	if file == "" {
		return fmt.Errorf("row %s", msg)
	}
	return &SyntaxError{file, line, msg}
}

// ReadAggregated reads an aggregated counter file and collapses it
// into a single Record, as Aggregate does. Unlike a raw run file, an
// aggregated file is expected to be well formed, so any syntax error
// is returned as an error.
func ReadAggregated(r io.Reader, fileName string) (*Record, error) {
	rows, bad, err := ReadAll(r, fileName)
	if err != nil {
		return nil, err
	}
	if len(bad) > 0 {
		return nil, bad[0]
	}
	if len(rows) == 0 {
		if fileName == "" {
			fileName = "<unknown>"
		}
		return nil, fmt.Errorf("%s: no samples", fileName)
	}
	return Aggregate(rows)
}
