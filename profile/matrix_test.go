// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hpcprof/wlclass/ctrfmt"
	"gonum.org/v1/gonum/mat"
)

func rec(kv ...interface{}) *ctrfmt.Record {
	r := ctrfmt.NewRecord()
	for i := 0; i < len(kv); i += 2 {
		name := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			r.Set(name, ctrfmt.MetaValue(v))
		case []float64:
			r.Set(name, ctrfmt.NumericValue(v...))
		}
	}
	return r
}

func TestBuildMatrix(t *testing.T) {
	records := []*ctrfmt.Record{
		rec("Arguments", "a", "x", []float64{1, 2}, "y", []float64{10, 20}),
		rec("y", []float64{30}, "x", []float64{3}, "Arguments", "b"),
	}
	m, err := BuildMatrix(records, ctrfmt.FieldSet{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
	})
	if !mat.Equal(want, m.Data) {
		t.Errorf("matrix differs:\nwant %v\ngot  %v", mat.Formatted(want), mat.Formatted(m.Data))
	}
	if diff := cmp.Diff([]float64{10, 20, 30}, m.Column(1)); diff != "" {
		t.Errorf("column differs (-want +got):\n%s", diff)
	}
}

func TestBuildMatrixErrors(t *testing.T) {
	fields := ctrfmt.FieldSet{"x", "y"}
	for _, test := range []struct {
		name    string
		records []*ctrfmt.Record
		field   string
		index   int
	}{
		{"missing", []*ctrfmt.Record{
			rec("x", []float64{1}, "y", []float64{1}),
			rec("x", []float64{1}),
		}, "y", 1},
		{"metadata", []*ctrfmt.Record{
			rec("x", "1", "y", []float64{1}),
		}, "x", 0},
		{"ragged", []*ctrfmt.Record{
			rec("x", []float64{1, 2}, "y", []float64{1}),
		}, "y", 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := BuildMatrix(test.records, fields)
			var sm *SchemaMismatchError
			if !errors.As(err, &sm) {
				t.Fatalf("got %v, want *SchemaMismatchError", err)
			}
			if sm.Field != test.field || sm.Record != test.index {
				t.Errorf("got field %q record %d, want %q %d", sm.Field, sm.Record, test.field, test.index)
			}
		})
	}
	if _, err := BuildMatrix(nil, fields); err == nil {
		t.Error("no records: want error")
	}
	if _, err := BuildMatrix([]*ctrfmt.Record{rec("x", []float64{1})}, nil); err == nil {
		t.Error("no fields: want error")
	}
}

func TestCheckSchema(t *testing.T) {
	fields := ctrfmt.FieldSet{"x", "y"}
	good := rec("Arguments", "a", "x", []float64{1}, "y", []float64{2})
	if err := CheckSchema([]*ctrfmt.Record{good}, fields); err != nil {
		t.Errorf("matching record: %v", err)
	}
	for _, bad := range []*ctrfmt.Record{
		rec("x", []float64{1}),
		rec("y", []float64{1}, "x", []float64{2}),
		rec("x", []float64{1}, "y", []float64{2}, "z", []float64{3}),
		rec("x", []float64{1}, "z", []float64{2}),
	} {
		err := CheckSchema([]*ctrfmt.Record{good, bad}, fields)
		var sm *SchemaMismatchError
		if !errors.As(err, &sm) || sm.Record != 1 {
			t.Errorf("CheckSchema(%v) = %v, want mismatch in record 1", bad.Names(), err)
		}
	}
}

func TestMedianVector(t *testing.T) {
	r := rec("Arguments", "a", "x", []float64{3, 1, 2}, "Process id", "7", "y", []float64{4, 1, 3, 2})
	if diff := cmp.Diff([]float64{2, 2.5}, []float64(MedianVector(r))); diff != "" {
		t.Errorf("median vector differs (-want +got):\n%s", diff)
	}
	vs := MedianVectors([]*ctrfmt.Record{r, rec("x", []float64{9})})
	if len(vs) != 2 || len(vs[1]) != 1 || vs[1][0] != 9 {
		t.Errorf("MedianVectors = %v", vs)
	}
}
