// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export writes classification results in the formats
// supported by ctrclass.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hpcprof/wlclass/classify"
)

// A Format serializes classification results.
type Format interface {
	// Name is the name users select the format by.
	Name() string
	// Ext is the file name extension, including the dot.
	Ext() string
	// Write writes results to w.
	Write(w io.Writer, results []classify.Result) error
}

var registry = make(map[string]Format)

// Register adds f to the set of formats returned by Get.
func Register(f Format) {
	registry[strings.ToLower(f.Name())] = f
}

// Get returns the format called name.
func Get(name string) (Format, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the names of all registered formats, sorted.
func Names() []string {
	var names []string
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FileName returns the name of the file results for the unknown
// workload name are written to in format f.
func FileName(f Format, name string) string {
	return "similarities_" + name + f.Ext()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
