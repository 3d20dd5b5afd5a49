// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMetadataKeys lists the columns papiex writes that describe a
// process rather than measure it. Cells in these columns are always
// read as metadata, even when they look numeric.
func DefaultMetadataKeys() []string {
	return []string{
		KeyPID,
		KeyPPID,
		KeyArguments,
		"Executable",
		"Path",
		"Hostname",
		"Thread id",
	}
}

// A Reader reads counter records from a CSV file whose first row
// names the fields. Each subsequent row becomes one Record.
//
// Its API is modeled on bufio.Scanner. Every Record returned is
// freshly allocated and may be retained.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	cr       *csv.Reader
	fileName string
	err      error

	header []string
	meta   []bool // per column, whether it is a metadata column
	done   bool

	// MetadataKeys, if non-nil, overrides DefaultMetadataKeys.
	// It takes effect on the next Reset.
	MetadataKeys []string

	cur Entry
}

// An Entry is a single entry read from a counter file. It is either
// a *Record or a *SyntaxError.
type Entry interface {
	// Pos returns the position of this entry as a file name and a
	// 1-based line number within that file.
	Pos() (fileName string, line int)
}

var _ Entry = (*Record)(nil)
var _ Entry = (*SyntaxError)(nil)

// A SyntaxError represents a syntax error on a particular line of a
// counter file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noEntry = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// NewReader constructs a reader to parse counter records from r.
// fileName is used in error messages and record positions.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.cr = csv.NewReader(ior)
	// Row length is checked by hand so a short row is a
	// non-fatal SyntaxError rather than a stopped Reader.
	r.cr.FieldsPerRecord = -1
	r.cr.TrimLeadingSpace = true
	r.cr.ReuseRecord = true
	r.fileName = fileName
	r.err = nil
	r.header = nil
	r.meta = nil
	r.done = false
	r.cur = nil
}

// Header returns the field names of the current input. It is nil
// until the first call to Scan.
func (r *Reader) Header() []string {
	return r.header
}

func (r *Reader) readHeader() bool {
	row, err := r.cr.Read()
	if err == io.EOF {
		r.done = true
		return false
	}
	if err != nil {
		r.err = fmt.Errorf("%s: reading header: %w", r.fileName, err)
		return false
	}
	keys := r.MetadataKeys
	if keys == nil {
		keys = DefaultMetadataKeys()
	}
	isMeta := make(map[string]bool, len(keys))
	for _, k := range keys {
		isMeta[k] = true
	}
	seen := make(map[string]bool, len(row))
	r.header = make([]string, len(row))
	r.meta = make([]bool, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if seen[name] {
			r.err = fmt.Errorf("%s:1: duplicate field %q", r.fileName, name)
			return false
		}
		seen[name] = true
		r.header[i] = name
		r.meta[i] = isMeta[name]
	}
	return true
}

// Scan advances the reader to the next entry and reports whether an
// entry was read. The caller should use the Result method to get the
// entry. If Scan reaches EOF or an I/O error occurs, it returns false,
// in which case the caller should use the Err method to check for
// errors.
func (r *Reader) Scan() bool {
	if r.err != nil || r.done {
		return false
	}
	if r.header == nil && !r.readHeader() {
		return false
	}

	for {
		row, err := r.cr.Read()
		if err == io.EOF {
			r.done = true
			return false
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.cur = &SyntaxError{r.fileName, perr.Line, perr.Err.Error()}
			return true
		}
		if err != nil {
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
			return false
		}
		line, _ := r.cr.FieldPos(0)
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			// Blank line.
			continue
		}
		if len(row) != len(r.header) {
			r.cur = &SyntaxError{r.fileName, line, fmt.Sprintf("expected %d fields, got %d", len(r.header), len(row))}
			return true
		}
		r.cur = r.parseRow(row, line)
		return true
	}
}

func (r *Reader) parseRow(row []string, line int) *Record {
	rec := &Record{
		Fields:   make([]Field, len(row)),
		fileName: r.fileName,
		line:     line,
	}
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		f := Field{Name: r.header[i]}
		if r.meta[i] {
			f.Value = MetaValue(cell)
		} else if x, err := strconv.ParseFloat(cell, 64); err == nil {
			f.Value = NumericValue(x)
		} else {
			f.Value = MetaValue(cell)
		}
		rec.Fields[i] = f
	}
	return rec
}

// Result returns the entry that was just read by Scan. This is
// either a *Record or a *SyntaxError indicating a malformed row.
//
// Syntax errors are non-fatal, so the caller can continue to call
// Scan.
func (r *Reader) Result() Entry {
	if r.cur == nil {
		return noEntry
	}
	return r.cur
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every record from r. Syntax errors are collected
// separately so the caller can decide whether they are fatal.
func ReadAll(r io.Reader, fileName string) ([]*Record, []*SyntaxError, error) {
	var recs []*Record
	var bad []*SyntaxError
	reader := NewReader(r, fileName)
	for reader.Scan() {
		switch e := reader.Result().(type) {
		case *Record:
			recs = append(recs, e)
		case *SyntaxError:
			bad = append(bad, e)
		}
	}
	return recs, bad, reader.Err()
}
