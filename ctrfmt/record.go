// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctrfmt provides a reader and writer for hardware
// performance counter measurements in the CSV layouts produced by
// papiex, along with the ordered record model shared by the rest of
// this module.
//
// Two layouts are supported. A raw run file holds one row per
// process of a single benchmark run. An aggregated file holds one row
// per sample of a single workload, typically the leaf processes of
// many runs concatenated together; ReadAggregated collapses such a
// file into one Record whose counter fields carry every sample.
//
// This package is designed to be used with the higher-level packages
// proctree, scrub, profile, and classify.
package ctrfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known metadata field names written by papiex.
const (
	KeyPID       = "Process id"
	KeyPPID      = "Parent process id"
	KeyArguments = "Arguments"
)

// A Value is the value of one field of a Record. It is either a
// scalar metadata value or a sequence of numeric samples.
type Value struct {
	// Samples holds the numeric samples of a counter field, in the
	// order they were read. It is nil for metadata.
	Samples []float64

	// Meta is the value of a metadata field.
	Meta string

	// IsMeta is set if this is a metadata value.
	IsMeta bool
}

// NumericValue returns a Value holding the samples xs.
func NumericValue(xs ...float64) Value {
	return Value{Samples: xs}
}

// MetaValue returns a metadata Value.
func MetaValue(s string) Value {
	return Value{Meta: s, IsMeta: true}
}

func (v Value) clone() Value {
	if v.IsMeta {
		return v
	}
	return Value{Samples: append([]float64(nil), v.Samples...)}
}

// A Field is a single named value of a Record.
type Field struct {
	Name  string
	Value Value
}

// A Record is an ordered mapping from field names to values. It
// represents either one process of one run or an aggregated workload.
//
// Field order is significant: it is the column order of the file the
// record was read from, and it is the order of the record's median
// vector. Records maintain an index from names to positions, so
// callers must use Set, Delete, Rename, and Retain to change the set
// of fields, but may modify values in place. A new Record may also
// be initialized directly with a struct literal.
type Record struct {
	Fields []Field

	// pos maps from Field.Name to index in Fields. A nil pos
	// means the index must be rebuilt.
	pos map[string]int

	// fileName and line record where this Record was read from.
	fileName string
	line     int
}

// NewRecord returns a Record holding fields. Later fields override
// earlier fields with the same name.
func NewRecord(fields ...Field) *Record {
	r := new(Record)
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Pos returns the file name and line number of a Record that was
// read by a Reader. For Records that were not read from a file, it
// returns "", 0.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Len returns the number of fields in r.
func (r *Record) Len() int {
	return len(r.Fields)
}

func (r *Record) index(name string) (int, bool) {
	if r.pos == nil {
		r.pos = make(map[string]int, len(r.Fields))
		for i, f := range r.Fields {
			r.pos[f.Name] = i
		}
	}
	i, ok := r.pos[name]
	return i, ok
}

// Get returns the value of field name.
func (r *Record) Get(name string) (Value, bool) {
	i, ok := r.index(name)
	if !ok {
		return Value{}, false
	}
	return r.Fields[i].Value, true
}

// Set sets field name to v, replacing the existing value in place or
// appending a new field.
func (r *Record) Set(name string, v Value) {
	if i, ok := r.index(name); ok {
		r.Fields[i].Value = v
		return
	}
	r.pos[name] = len(r.Fields)
	r.Fields = append(r.Fields, Field{name, v})
}

// Delete removes field name, preserving the order of the remaining
// fields.
func (r *Record) Delete(name string) {
	i, ok := r.index(name)
	if !ok {
		return
	}
	copy(r.Fields[i:], r.Fields[i+1:])
	r.Fields = r.Fields[:len(r.Fields)-1]
	r.pos = nil
}

// Retain keeps only the fields for which keep returns true,
// preserving their order.
func (r *Record) Retain(keep func(f *Field) bool) {
	out := r.Fields[:0]
	for i := range r.Fields {
		if keep(&r.Fields[i]) {
			out = append(out, r.Fields[i])
		}
	}
	for i := len(out); i < len(r.Fields); i++ {
		r.Fields[i] = Field{}
	}
	r.Fields = out
	r.pos = nil
}

// Rename renames field oldName to newName, keeping its position. If
// a different field named newName already exists, it is removed. It
// reports whether oldName was present.
func (r *Record) Rename(oldName, newName string) bool {
	if oldName == newName {
		_, ok := r.index(oldName)
		return ok
	}
	if _, ok := r.index(oldName); !ok {
		return false
	}
	r.Delete(newName)
	i, _ := r.index(oldName)
	r.Fields[i].Name = newName
	delete(r.pos, oldName)
	r.pos[newName] = i
	return true
}

// Names returns the names of all fields of r, in order.
func (r *Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// NumericNames returns the names of the sample-valued fields of r, in
// order.
func (r *Record) NumericNames() []string {
	var names []string
	for _, f := range r.Fields {
		if !f.Value.IsMeta {
			names = append(names, f.Name)
		}
	}
	return names
}

// Meta returns the value of metadata field name.
func (r *Record) Meta(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok || !v.IsMeta {
		return "", false
	}
	return v.Meta, true
}

// Clone makes a copy of r that shares no state with r.
func (r *Record) Clone() *Record {
	r2 := &Record{
		Fields:   make([]Field, len(r.Fields)),
		fileName: r.fileName,
		line:     r.line,
	}
	for i, f := range r.Fields {
		r2.Fields[i] = Field{f.Name, f.Value.clone()}
	}
	return r2
}

// PID returns the process id of a process record.
func (r *Record) PID() (int, error) {
	return r.intMeta(KeyPID)
}

// PPID returns the parent process id of a process record.
func (r *Record) PPID() (int, error) {
	return r.intMeta(KeyPPID)
}

func (r *Record) intMeta(key string) (int, error) {
	v, ok := r.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	if !v.IsMeta {
		// Tolerate ids that were read as a single numeric sample.
		if len(v.Samples) != 1 {
			return 0, fmt.Errorf("%q has %d values, want 1", key, len(v.Samples))
		}
		return int(v.Samples[0]), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.Meta))
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", key, err)
	}
	return n, nil
}

// A FieldSet is an ordered list of unique field names. It defines the
// column order of a sample matrix and the component order of median
// vectors.
type FieldSet []string

// NewFieldSet returns names as a FieldSet, or an error if a name
// appears more than once.
func NewFieldSet(names []string) (FieldSet, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, fmt.Errorf("duplicate field %q", n)
		}
		seen[n] = true
	}
	return append(FieldSet(nil), names...), nil
}

// Index returns the position of name in fs, or -1.
func (fs FieldSet) Index(name string) int {
	for i, n := range fs {
		if n == name {
			return i
		}
	}
	return -1
}

// Equal reports whether fs and other list the same names in the same
// order.
func (fs FieldSet) Equal(other FieldSet) bool {
	if len(fs) != len(other) {
		return false
	}
	for i := range fs {
		if fs[i] != other[i] {
			return false
		}
	}
	return true
}
