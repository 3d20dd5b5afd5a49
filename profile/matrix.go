// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile turns scrubbed counter records into the numeric
// forms used for comparison: sample matrices and median vectors.
package profile

import (
	"fmt"

	"github.com/hpcprof/wlclass/ctrfmt"
	"gonum.org/v1/gonum/mat"
)

// A SchemaMismatchError reports a record whose fields do not match the
// expected FieldSet.
type SchemaMismatchError struct {
	// Field is the offending field name, if any.
	Field string
	// Record is the index of the offending record.
	Record int
	Msg    string
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Record, e.Msg)
	}
	return fmt.Sprintf("record %d: field %q: %s", e.Record, e.Field, e.Msg)
}

// CheckSchema verifies that the numeric fields of each record are
// exactly fields, in order.
func CheckSchema(records []*ctrfmt.Record, fields ctrfmt.FieldSet) error {
	for i, rec := range records {
		names := rec.NumericNames()
		for j, name := range fields {
			if j >= len(names) {
				return &SchemaMismatchError{name, i, "missing"}
			}
			if names[j] != name {
				if _, ok := rec.Get(name); !ok {
					return &SchemaMismatchError{name, i, "missing"}
				}
				return &SchemaMismatchError{names[j], i, fmt.Sprintf("at position %d, want %q", j, name)}
			}
		}
		if len(names) > len(fields) {
			return &SchemaMismatchError{names[len(fields)], i, "unexpected field"}
		}
	}
	return nil
}

// A Matrix holds the samples of a set of records, one row per sample
// and one column per field.
type Matrix struct {
	Fields ctrfmt.FieldSet
	Data   *mat.Dense
}

// BuildMatrix concatenates, for each field, the samples of every
// record into one column. Rows from the same record are adjacent and
// appear in record order.
//
// Every record must carry every field as numeric samples, and the
// fields of one record must all have the same number of samples.
func BuildMatrix(records []*ctrfmt.Record, fields ctrfmt.FieldSet) (*Matrix, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("build matrix: no fields")
	}
	rows := 0
	for i, rec := range records {
		n := -1
		for _, name := range fields {
			v, ok := rec.Get(name)
			if !ok {
				return nil, &SchemaMismatchError{name, i, "missing"}
			}
			if v.IsMeta {
				return nil, &SchemaMismatchError{name, i, "not numeric"}
			}
			if n == -1 {
				n = len(v.Samples)
			} else if len(v.Samples) != n {
				return nil, &SchemaMismatchError{name, i, fmt.Sprintf("has %d samples, want %d", len(v.Samples), n)}
			}
		}
		rows += n
	}
	if rows == 0 {
		return nil, fmt.Errorf("build matrix: no samples")
	}

	data := mat.NewDense(rows, len(fields), nil)
	for j, name := range fields {
		r := 0
		for _, rec := range records {
			v, _ := rec.Get(name)
			for _, x := range v.Samples {
				data.Set(r, j, x)
				r++
			}
		}
	}
	return &Matrix{Fields: fields, Data: data}, nil
}

// Column returns a copy of the samples of field j.
func (m *Matrix) Column(j int) []float64 {
	return mat.Col(nil, j, m.Data)
}
