// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrub

import (
	"fmt"
	"io"
	"strings"

	"github.com/lars-t-hansen/ini"
)

// A Level selects how much of a record Scrub removes.
type Level int

const (
	// None removes only metadata.
	None Level = iota
	// Basic also removes counters that are always zero or never vary.
	Basic
	// Full also removes redundant counters: those that vary only in
	// discrete jumps, depend on wall-clock time, or are strongly
	// correlated with another counter.
	Full
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Basic:
		return "basic"
	case Full:
		return "full"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses a level name ("none", "basic", "full") or number
// ("0", "1", "2").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "0":
		return None, nil
	case "basic", "1":
		return Basic, nil
	case "full", "2":
		return Full, nil
	}
	return 0, fmt.Errorf("unknown scrub level %q", s)
}

// Presets holds the field lists behind each Level.
type Presets struct {
	// Basic lists counters that carry no information.
	Basic Set
	// Redundant lists the counters Full removes on top of Basic.
	Redundant Set
}

// DefaultPresets returns the field lists for papiex counters on the
// systems this tool was calibrated on. Each call returns fresh sets.
func DefaultPresets() Presets {
	return Presets{
		Basic: NewSet(
			// Always zero.
			"[PROCESS] Memory locked (at exit) KB",
			// Zero variance.
			"[PROCESS] Memory library (at exit) KB",
			"[PROCESS] Memory text (at exit) KB",
		),
		Redundant: NewSet(
			// Varies discretely between a few page counts.
			"[PROCESS] Memory stack (at exit) KB",
			// Correlated with PAPI_L1_ICM.
			"PAPI_L2_ICA",
			// Correlated with virtual cycles.
			"Virtual usecs",
			// Depend on wall-clock time.
			"[PROCESS] Wallclock usecs",
			"Real cycles",
			"Real usecs",
		),
	}
}

// Exclusions returns the exclusion set for level plus extra. The
// result is a new set; p is not modified.
func (p Presets) Exclusions(level Level, extra ...string) Set {
	s := NewSet(extra...)
	if level >= Basic {
		for n := range p.Basic {
			s.Add(n)
		}
	}
	if level >= Full {
		for n := range p.Redundant {
			s.Add(n)
		}
	}
	return s
}

// LoadPresets reads preset overrides from an INI file of the form
//
//	[presets]
//	basic = [PROCESS] Memory locked (at exit) KB, ...
//	full = PAPI_L2_ICA, Real usecs, ...
//
// where basic lists the Basic set and full lists the counters Full
// removes in addition to it. Keys that are absent keep their default
// values.
func LoadPresets(r io.Reader) (Presets, error) {
	p := ini.NewParser()
	sec := p.AddSection("presets")
	basic := sec.AddString("basic")
	full := sec.AddString("full")
	store, err := p.Parse(r)
	if err != nil {
		return Presets{}, fmt.Errorf("reading presets: %w", err)
	}
	presets := DefaultPresets()
	if basic.Present(store) {
		presets.Basic = NewSet(SplitList(basic.StringVal(store))...)
	}
	if full.Present(store) {
		presets.Redundant = NewSet(SplitList(full.StringVal(store))...)
	}
	return presets, nil
}

// SplitList splits a comma-separated list of field names, dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
