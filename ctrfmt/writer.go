// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrfmt

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// A Writer writes records in the aggregated CSV layout: a header row
// naming the fields, then one row per sample. Metadata values are
// repeated on every row of a record.
type Writer struct {
	w      *csv.Writer
	header []string

	// NoHeader suppresses the header row, for appending to a
	// file that already has one. The first record still fixes
	// the expected field names.
	NoHeader bool
}

// NewWriter returns a writer that writes counter records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write writes rec. The first record written determines the header;
// every later record must have the same field names in the same
// order. All numeric fields of rec must have the same number of
// samples.
func (w *Writer) Write(rec *Record) error {
	names := rec.Names()
	if w.header == nil {
		w.header = names
		if !w.NoHeader {
			if err := w.w.Write(names); err != nil {
				return err
			}
		}
	} else if !FieldSet(w.header).Equal(names) {
		return fmt.Errorf("record fields %q do not match header %q", names, w.header)
	}

	n := -1
	for _, f := range rec.Fields {
		if f.Value.IsMeta {
			continue
		}
		if n == -1 {
			n = len(f.Value.Samples)
		} else if len(f.Value.Samples) != n {
			return fmt.Errorf("field %q has %d samples, want %d", f.Name, len(f.Value.Samples), n)
		}
	}
	if n == -1 {
		// Only metadata.
		n = 1
	}

	row := make([]string, len(rec.Fields))
	for i := 0; i < n; i++ {
		for j, f := range rec.Fields {
			if f.Value.IsMeta {
				row[j] = f.Value.Meta
			} else {
				row[j] = formatFloat(f.Value.Samples[i])
			}
		}
		if err := w.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
