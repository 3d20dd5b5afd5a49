// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"github.com/hpcprof/wlclass/ctrfmt"
	"github.com/hpcprof/wlclass/ctrmath"
)

// MedianVector returns the median of each numeric field of rec, in the
// record's field order. Metadata fields are skipped.
//
// Vectors of different records are comparable only if the records
// share a FieldSet.
func MedianVector(rec *ctrfmt.Record) ctrmath.Vector {
	var v ctrmath.Vector
	for _, f := range rec.Fields {
		if f.Value.IsMeta {
			continue
		}
		v = append(v, ctrmath.Median(f.Value.Samples))
	}
	return v
}

// MedianVectors returns MedianVector of each record, in order.
func MedianVectors(records []*ctrfmt.Record) []ctrmath.Vector {
	out := make([]ctrmath.Vector, len(records))
	for i, rec := range records {
		out[i] = MedianVector(rec)
	}
	return out
}
