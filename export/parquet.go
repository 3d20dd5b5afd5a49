// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"fmt"
	"io"

	"github.com/hpcprof/wlclass/classify"
	"github.com/parquet-go/parquet-go"
)

func init() {
	Register(parquetFormat{})
}

type parquetFormat struct{}

func (parquetFormat) Name() string { return "parquet" }
func (parquetFormat) Ext() string  { return ".parquet" }

func (parquetFormat) Write(w io.Writer, results []classify.Result) error {
	return WriteParquet(w, results)
}

// resultRow is the Parquet schema of a classify.Result. Column names
// match classify.Header.
type resultRow struct {
	Name      string  `parquet:"Name"`
	Class     string  `parquet:"Class"`
	Cosine    float64 `parquet:"Cosine similarity"`
	Distance  float64 `parquet:"Euclidean distance"`
	Closeness float64 `parquet:"Closeness Percentage"`
}

// WriteParquet writes results as a Parquet file.
func WriteParquet(w io.Writer, results []classify.Result) error {
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = resultRow(r)
	}
	pw := parquet.NewGenericWriter[resultRow](w)
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads results written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]classify.Result, error) {
	rows, err := parquet.Read[resultRow](r, size)
	if err != nil {
		return nil, fmt.Errorf("reading parquet rows: %w", err)
	}
	results := make([]classify.Result, len(rows))
	for i, row := range rows {
		results[i] = classify.Result(row)
	}
	return results, nil
}
