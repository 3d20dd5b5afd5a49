// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scrub reduces counter records to a clean numeric schema
// that can be compared across workloads.
//
// Scrubbing drops metadata fields, drops a configurable set of noisy
// or redundant counters, and strips the "[PROCESS] " scope marker
// papiex puts on process-level fields.
package scrub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hpcprof/wlclass/ctrfmt"
	"go.uber.org/zap"
)

// ProcessPrefix marks papiex fields measured for the whole process
// rather than a single thread.
const ProcessPrefix = "[PROCESS] "

// A Set is a set of field names.
type Set map[string]struct{}

// NewSet returns a Set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	s.Add(names...)
	return s
}

// Add adds names to s.
func (s Set) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// Has reports whether name is in s.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in s in sorted order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type options struct {
	log        *zap.Logger
	unprefixed bool
}

// An Option configures Scrub.
type Option func(*options)

// WithLogger makes Scrub log the exclusion list to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// MatchUnprefixed makes a name in the exclusion set also match the
// field with that name plus ProcessPrefix. With this option, scrubbing
// an already scrubbed record drops nothing more, even when the set
// names process-level counters without their prefix.
func MatchUnprefixed() Option {
	return func(o *options) { o.unprefixed = true }
}

// Scrub returns cleaned copies of records and the field names of the
// first cleaned record. The input records are not modified.
//
// For each record, every metadata field is dropped. If enabled is
// set, every field whose name is in exclude is dropped too. Names
// match exactly unless the MatchUnprefixed option is given. The
// ProcessPrefix is stripped from the names of the remaining
// fields.
//
// The returned field names describe every record only if the inputs
// share one schema. Callers that need that guarantee should check it,
// for example with profile.CheckSchema.
func Scrub(records []*ctrfmt.Record, exclude Set, enabled bool, opts ...Option) ([]*ctrfmt.Record, ctrfmt.FieldSet, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("scrub: no records")
	}
	if enabled {
		o.log.Info("scrubbing fields", zap.Strings("exclude", exclude.Sorted()))
	}

	out := make([]*ctrfmt.Record, len(records))
	for i, rec := range records {
		out[i] = scrubOne(rec, exclude, enabled, o.unprefixed)
	}
	fields, err := ctrfmt.NewFieldSet(out[0].Names())
	if err != nil {
		return nil, nil, fmt.Errorf("scrub: %w", err)
	}
	return out, fields, nil
}

func scrubOne(rec *ctrfmt.Record, exclude Set, enabled, unprefixed bool) *ctrfmt.Record {
	c := rec.Clone()
	c.Retain(func(f *ctrfmt.Field) bool {
		if f.Value.IsMeta {
			return false
		}
		if !enabled {
			return true
		}
		if exclude.Has(f.Name) {
			return false
		}
		return !(unprefixed && exclude.Has(strings.TrimPrefix(f.Name, ProcessPrefix)))
	})
	for _, name := range c.Names() {
		if short := strings.TrimPrefix(name, ProcessPrefix); short != name {
			c.Rename(name, short)
		}
	}
	return c
}
