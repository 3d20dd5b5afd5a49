// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"encoding/csv"
	"io"

	"github.com/hpcprof/wlclass/classify"
)

func init() {
	Register(csvFormat{})
}

type csvFormat struct{}

func (csvFormat) Name() string { return "csv" }
func (csvFormat) Ext() string  { return ".csv" }

func (csvFormat) Write(w io.Writer, results []classify.Result) error {
	return WriteCSV(w, classify.Header, results)
}

// WriteCSV writes header followed by one row per result.
func WriteCSV(w io.Writer, header []string, results []classify.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write(r.Row(formatFloat)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
