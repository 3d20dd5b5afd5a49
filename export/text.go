// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/hpcprof/wlclass/classify"
)

func init() {
	Register(textFormat{})
}

type textFormat struct{}

func (textFormat) Name() string { return "text" }
func (textFormat) Ext() string  { return ".txt" }

func (textFormat) Write(w io.Writer, results []classify.Result) error {
	return WriteText(w, results)
}

// WriteText writes results as a fixed-width table.
func WriteText(w io.Writer, results []classify.Result) error {
	rows := [][]string{classify.Header}
	for _, r := range results {
		rows = append(rows, []string{
			r.Name,
			r.Class,
			fmt.Sprintf("%.4f", r.Cosine),
			fmt.Sprintf("%.4g", r.Distance),
			fmt.Sprintf("%.2f%%", r.Closeness),
		})
	}
	return WriteTable(w, rows)
}

// WriteTable writes rows as a fixed-width table. The first row is a
// heading. The first column is left-aligned and every other data
// column is right-aligned.
func WriteTable(w io.Writer, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	var max []int
	for _, row := range rows {
		for len(max) < len(row) {
			max = append(max, 0)
		}
		for i, s := range row {
			if n := utf8.RuneCountInString(s); max[i] < n {
				max[i] = n
			}
		}
	}

	bw := bufio.NewWriter(w)
	// headings
	heading := rows[0]
	for i, s := range heading {
		switch i {
		case 0:
			fmt.Fprintf(bw, "%-*s", max[i], s)
		default:
			fmt.Fprintf(bw, "  %-*s", max[i], s)
		case len(heading) - 1:
			fmt.Fprintf(bw, "  %s", s)
		}
	}
	fmt.Fprintf(bw, "\n")

	// data
	for _, row := range rows[1:] {
		for i, s := range row {
			if i == 0 {
				fmt.Fprintf(bw, "%-*s", max[i], s)
			} else {
				fmt.Fprintf(bw, "  %*s", max[i], s)
			}
		}
		fmt.Fprintf(bw, "\n")
	}
	return bw.Flush()
}
