// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctrfmt

import (
	"os"
	"path/filepath"
	"strings"
)

// A Files reads counter records from a sequence of raw run files.
//
// Each file's header applies only to that file, so files with
// different counter sets may be mixed. A caller that needs to treat
// each file as one benchmark run can group consecutive records by the
// file name reported by Record.Pos.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// MetadataKeys, if non-nil, overrides DefaultMetadataKeys for
	// every file.
	MetadataKeys []string

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet. Note that this distinguishes nil
	// from length 0.
	inputs []string

	reader  Reader
	file    *os.File
	isStdin bool
	err     error
}

// init does first-use initialization of f.
func (f *Files) init() {
	f.inputs = []string{}
	if f.AllowStdin && len(f.Paths) == 0 {
		f.inputs = append(f.inputs, "-")
	}
	f.inputs = append(f.inputs, f.Paths...)
}

// Scan advances the reader to the next entry in the sequence of
// files and reports whether an entry was read. The caller should use
// the Result method to get the entry. If Scan reaches the end of the
// file sequence, or if an I/O error occurs, it returns false. In this
// case, the caller should use the Err method to check for errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}

	if f.inputs == nil {
		f.init()
	}

	for {
		if f.file == nil {
			// Open the next file.
			if len(f.inputs) == 0 {
				return false
			}
			path := f.inputs[0]
			f.inputs = f.inputs[1:]

			if f.AllowStdin && path == "-" {
				f.isStdin, f.file = true, os.Stdin
			} else {
				file, err := os.Open(path)
				if err != nil {
					f.err = err
					return false
				}
				f.isStdin, f.file = false, file
			}
			f.reader.MetadataKeys = f.MetadataKeys
			f.reader.Reset(f.file, path)
		}

		if f.reader.Scan() {
			return true
		}
		err := f.reader.Err()
		if !f.isStdin {
			f.file.Close()
		}
		f.file = nil
		if err != nil {
			f.err = err
			return false
		}
	}
}

// Result returns the entry that was just read by Scan.
// See Reader.Result.
func (f *Files) Result() Entry {
	return f.reader.Result()
}

// Err returns the I/O error that stopped Scan, if any.
// If Scan stopped because it read each file to completion,
// or if Scan has not yet returned false, Err returns nil.
func (f *Files) Err() error {
	return f.err
}

// Glob expands each pattern with filepath.Glob. A pattern that
// matches nothing is kept as is, so opening it reports a useful
// error.
func Glob(patterns ...string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		m, err := filepath.Glob(p)
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			m = []string{p}
		}
		paths = append(paths, m...)
	}
	return paths, nil
}

// WorkloadName derives a workload name from the path of a counter
// file. The name is the underscore-separated token that carries the
// ".csv" suffix in the last path element that mentions ".csv", with
// the suffix removed. For example, "collected/data_matrixprod.csv"
// names the workload "matrixprod".
//
// If no element mentions ".csv", WorkloadName returns the base name
// of path without its extension.
func WorkloadName(path string) string {
	name := ""
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if !strings.Contains(elem, ".csv") {
			continue
		}
		for _, tok := range strings.Split(elem, "_") {
			if strings.Contains(tok, ".csv") {
				name = strings.TrimSuffix(tok, ".csv")
			}
		}
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return name
}
