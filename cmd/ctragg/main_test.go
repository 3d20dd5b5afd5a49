// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpcprof/wlclass/ctrfmt"
	"github.com/hpcprof/wlclass/internal/diff"
	"github.com/hpcprof/wlclass/proctree"
)

func TestPPX(t *testing.T) {
	golden(t, "ppx", "data_cpu.csv", "-o", "cpu", "cpu/*")
}

func TestAgg(t *testing.T) {
	golden(t, "agg", "data_mix.csv", "-mode", "agg", "-o", "mix.csv", "-i", "agg/data_cpu.csv", "-i", "agg/data_io.csv")
}

func TestBadRun(t *testing.T) {
	chdir(t, "testdata")
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := ctragg(&stdout, &stderr, []string{"-dir", out, "-o", "bad", "bad/*", "missing"})
	var se *proctree.StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want *proctree.StructuralError", err)
	}
	if !strings.Contains(err.Error(), "missing: no counter files") {
		t.Errorf("error %q does not report every bad run", err)
	}
	if _, err := os.Stat(filepath.Join(out, "data_bad.csv")); !os.IsNotExist(err) {
		t.Errorf("output written despite error: %v", err)
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"cpu"},
		{"-o", "x"},
		{"-o", "x", "-mode", "box", "cpu"},
		{"-nosuchflag"},
	} {
		var stdout, stderr bytes.Buffer
		if err := ctragg(&stdout, &stderr, args); !errors.Is(err, errUsage) {
			t.Errorf("ctragg %q: got %v, want usage error", args, err)
		}
		if !strings.Contains(stderr.String(), "usage: ctragg") {
			t.Errorf("ctragg %q: no usage message", args)
		}
	}
}

func TestOutputName(t *testing.T) {
	for in, want := range map[string]string{"cpu": "data_cpu.csv", "cpu.csv": "data_cpu.csv"} {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAggStdin(t *testing.T) {
	chdir(t, "testdata")
	f, err := os.Open("agg/data_io.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	stdin := os.Stdin
	os.Stdin = f
	t.Cleanup(func() { os.Stdin = stdin })

	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	if err := ctragg(&stdout, &stderr, []string{"-dir", out, "-mode", "agg", "-o", "mix", "-i", "agg/data_cpu.csv", "-i", "-"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "data_mix.csv"))
	if err != nil {
		t.Fatal(err)
	}
	compare(t, "agg.data", string(data))
}

func TestMeta(t *testing.T) {
	chdir(t, "testdata")
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	args := []string{"-dir", out, "-mode", "agg", "-meta", "[PROCESS] Wallclock usecs", "-o", "mix", "agg/data_cpu.csv", "agg/data_io.csv"}
	if err := ctragg(&stdout, &stderr, args); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(out, "data_mix.csv"))
	if err != nil {
		t.Fatal(err)
	}
	// A metadata column keeps the first row's value.
	want := `Process id,Parent process id,Arguments,PAPI_TOT_INS,[PROCESS] Wallclock usecs
101,100,--job cpu io,2000,900
101,100,--job cpu io,2100,900
101,100,--job cpu io,2200,900
101,100,--job cpu io,2300,900
301,300,stress-ng --job ../jobfiles/io,50,700
301,300,stress-ng --job ../jobfiles/io,60,700
`
	if d := diff.Diff("want", want, "got", string(data)); d != "" {
		t.Errorf("output differs:\n%s", d)
	}
}

func TestAppend(t *testing.T) {
	chdir(t, "testdata")
	out := t.TempDir()
	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		if err := ctragg(&stdout, &stderr, []string{"-dir", out, "-append", "-o", "cpu", "cpu/*"}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	once, err := os.ReadFile("ppx.data")
	if err != nil {
		t.Fatal(err)
	}
	header, rows, _ := strings.Cut(string(once), "\n")
	want := header + "\n" + rows + rows
	got, err := os.ReadFile(filepath.Join(out, "data_cpu.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if d := diff.Diff("want", want, "got", string(got)); d != "" {
		t.Errorf("appended output differs:\n%s", d)
	}
}

func TestAppendMismatch(t *testing.T) {
	chdir(t, "testdata")
	out := t.TempDir()
	path := filepath.Join(out, "data_cpu.csv")
	const old = "a,b\n1,2\n"
	if err := os.WriteFile(path, []byte(old), 0666); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	err := ctragg(&stdout, &stderr, []string{"-dir", out, "-append", "-o", "cpu", "cpu/*"})
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Errorf("got %v, want header mismatch error", err)
	}
	if got, _ := os.ReadFile(path); string(got) != old {
		t.Errorf("output changed despite error:\n%s", got)
	}
}

func TestJobFile(t *testing.T) {
	for _, test := range []struct {
		args, want string
	}{
		{"stress-ng --job ../jobfiles/cpu", "cpu"},
		{"--job ../jobfiles/io", "io"},
		{"stress-ng --metrics --job mix", "mix"},
		{"run ../jobfiles/fft", "fft"},
	} {
		rec := ctrfmt.NewRecord(ctrfmt.Field{Name: ctrfmt.KeyArguments, Value: ctrfmt.MetaValue(test.args)})
		got, err := jobFile(rec)
		if err != nil || got != test.want {
			t.Errorf("jobFile(%q) = %q, %v; want %q, nil", test.args, got, err, test.want)
		}
	}
	for _, args := range []string{"stress-ng", "stress-ng --job", ""} {
		rec := ctrfmt.NewRecord(ctrfmt.Field{Name: ctrfmt.KeyArguments, Value: ctrfmt.MetaValue(args)})
		if got, err := jobFile(rec); err == nil {
			t.Errorf("jobFile(%q) = %q, want error", args, got)
		}
	}
	if _, err := jobFile(ctrfmt.NewRecord()); err == nil {
		t.Error("jobFile of record without Arguments: want error")
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

// golden runs ctragg with args and compares the file it writes and
// its log output to testdata/name.data and testdata/name.stderr.
func golden(t *testing.T, name, outFile string, args ...string) {
	t.Helper()
	chdir(t, "testdata")
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	t.Logf("ctragg %s", strings.Join(args, " "))
	if err := ctragg(&stdout, &stderr, append([]string{"-dir", out}, args...)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got, want := strings.TrimSpace(stdout.String()), filepath.Join(out, outFile); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	data, err := os.ReadFile(filepath.Join(out, outFile))
	if err != nil {
		t.Fatal(err)
	}
	compare(t, name+".data", string(data))
	compare(t, name+".stderr", strings.ReplaceAll(stderr.String(), out, "$TMP"))
}

func compare(t *testing.T, wantPath, got string) {
	t.Helper()
	want, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff.Diff(wantPath, string(want), "got", got); d != "" {
		t.Errorf("%s differs:\n%s", wantPath, d)
	}
}
