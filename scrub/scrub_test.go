// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrub

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hpcprof/wlclass/ctrfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func workload(args string, ins float64) *ctrfmt.Record {
	return ctrfmt.NewRecord(
		ctrfmt.Field{Name: ctrfmt.KeyPID, Value: ctrfmt.MetaValue("10")},
		ctrfmt.Field{Name: ctrfmt.KeyArguments, Value: ctrfmt.MetaValue(args)},
		ctrfmt.Field{Name: "PAPI_TOT_INS", Value: ctrfmt.NumericValue(ins, ins+1)},
		ctrfmt.Field{Name: "[PROCESS] Memory locked (at exit) KB", Value: ctrfmt.NumericValue(0, 0)},
		ctrfmt.Field{Name: "[PROCESS] Memory heap (at exit) KB", Value: ctrfmt.NumericValue(512, 520)},
		ctrfmt.Field{Name: "Real usecs", Value: ctrfmt.NumericValue(30, 31)},
	)
}

func TestScrub(t *testing.T) {
	in := []*ctrfmt.Record{workload("a", 1), workload("b", 2)}
	exclude := DefaultPresets().Exclusions(Full)

	out, fields, err := Scrub(in, exclude, true)
	if err != nil {
		t.Fatal(err)
	}
	want := ctrfmt.FieldSet{"PAPI_TOT_INS", "Memory heap (at exit) KB"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields differ (-want +got):\n%s", diff)
	}
	for i, rec := range out {
		if diff := cmp.Diff([]string(want), rec.Names()); diff != "" {
			t.Errorf("record %d names differ (-want +got):\n%s", i, diff)
		}
	}
	heap, _ := out[1].Get("Memory heap (at exit) KB")
	if diff := cmp.Diff([]float64{512, 520}, heap.Samples); diff != "" {
		t.Errorf("renamed value differs (-want +got):\n%s", diff)
	}

	// The inputs are untouched.
	if in[0].Len() != 6 {
		t.Errorf("input record modified: %v", in[0].Names())
	}
}

func TestScrubDisabled(t *testing.T) {
	out, fields, err := Scrub([]*ctrfmt.Record{workload("a", 1)}, NewSet("PAPI_TOT_INS"), false)
	if err != nil {
		t.Fatal(err)
	}
	want := ctrfmt.FieldSet{"PAPI_TOT_INS", "Memory locked (at exit) KB", "Memory heap (at exit) KB", "Real usecs"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields differ (-want +got):\n%s", diff)
	}
	if len(out) != 1 {
		t.Errorf("got %d records, want 1", len(out))
	}
}

func TestScrubExcludesCommonField(t *testing.T) {
	in := []*ctrfmt.Record{workload("a", 1), workload("b", 2), workload("c", 3)}
	_, base, err := Scrub(in, NewSet(), true)
	if err != nil {
		t.Fatal(err)
	}
	out, _, err := Scrub(in, NewSet("PAPI_TOT_INS"), true)
	if err != nil {
		t.Fatal(err)
	}
	for i, rec := range out {
		want := []string{}
		for _, n := range base {
			if n != "PAPI_TOT_INS" {
				want = append(want, n)
			}
		}
		if diff := cmp.Diff(want, rec.Names()); diff != "" {
			t.Errorf("record %d names differ (-want +got):\n%s", i, diff)
		}
	}
}

func TestScrubExactNames(t *testing.T) {
	in := []*ctrfmt.Record{workload("a", 1)}
	exclude := NewSet("Memory heap (at exit) KB")

	// By default only the name as written matches.
	_, fields, err := Scrub(in, exclude, true)
	if err != nil {
		t.Fatal(err)
	}
	want := ctrfmt.FieldSet{"PAPI_TOT_INS", "Memory locked (at exit) KB", "Memory heap (at exit) KB", "Real usecs"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields differ (-want +got):\n%s", diff)
	}

	_, fields, err = Scrub(in, exclude, true, MatchUnprefixed())
	if err != nil {
		t.Fatal(err)
	}
	want = ctrfmt.FieldSet{"PAPI_TOT_INS", "Memory locked (at exit) KB", "Real usecs"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("MatchUnprefixed fields differ (-want +got):\n%s", diff)
	}

	// A second pass with the option drops nothing more.
	once, f1, err := Scrub(in, exclude, true, MatchUnprefixed())
	if err != nil {
		t.Fatal(err)
	}
	_, f2, err := Scrub(once, exclude, true, MatchUnprefixed())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(f1, f2); diff != "" {
		t.Errorf("second scrub changed fields (-first +second):\n%s", diff)
	}
}

func TestScrubIdempotent(t *testing.T) {
	in := []*ctrfmt.Record{workload("a", 1), workload("b", 2)}
	for _, level := range []Level{None, Basic, Full} {
		exclude := DefaultPresets().Exclusions(level)
		once, f1, err := Scrub(in, exclude, true)
		if err != nil {
			t.Fatal(err)
		}
		_, f2, err := Scrub(once, exclude, true)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(f1, f2); diff != "" {
			t.Errorf("%s: second scrub changed fields (-first +second):\n%s", level, diff)
		}
	}
}

func TestScrubEmpty(t *testing.T) {
	if _, _, err := Scrub(nil, nil, true); err == nil {
		t.Error("want error for no records")
	}
}

func TestScrubLogsExclusions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, _, err := Scrub([]*ctrfmt.Record{workload("a", 1)}, NewSet("b", "a"), true, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	got := entries[0].ContextMap()["exclude"]
	if diff := cmp.Diff([]interface{}{"a", "b"}, got); diff != "" {
		t.Errorf("logged exclusions differ (-want +got):\n%s", diff)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"none": None, "0": None, "Basic": Basic, "1": Basic, "full": Full, " 2 ": Full} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, nil", in, got, err, want)
		}
	}
	if _, err := ParseLevel("extreme"); err == nil {
		t.Error("ParseLevel(extreme): want error")
	}
}

func TestExclusions(t *testing.T) {
	p := DefaultPresets()
	if got := p.Exclusions(None); len(got) != 0 {
		t.Errorf("None excludes %v", got.Sorted())
	}
	basic := p.Exclusions(Basic, "PAPI_BR_MSP")
	if !basic.Has("PAPI_BR_MSP") || !basic.Has("[PROCESS] Memory locked (at exit) KB") || basic.Has("Real usecs") {
		t.Errorf("Basic exclusions wrong: %v", basic.Sorted())
	}
	full := p.Exclusions(Full)
	for n := range p.Basic {
		if !full.Has(n) {
			t.Errorf("Full exclusions missing basic field %q", n)
		}
	}
	if p.Basic.Has("PAPI_BR_MSP") {
		t.Error("Exclusions modified the preset")
	}
}

func TestLoadPresets(t *testing.T) {
	const file = `
[presets]
basic = Zero one, Zero two,
`
	p, err := LoadPresets(strings.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Zero one", "Zero two"}, p.Basic.Sorted()); diff != "" {
		t.Errorf("basic differs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultPresets().Redundant.Sorted(), p.Redundant.Sorted()); diff != "" {
		t.Errorf("full should keep its default (-want +got):\n%s", diff)
	}
}
