// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ctragg aggregates papiex counter files into a single aggregated CSV
// file.
//
// Usage:
//
//	ctragg [options] -o name input...
//
// In ppx mode (the default), each input is a directory holding the
// papiex files of one benchmark run. Ctragg reads every file in the
// directory, keeps only the leaf processes of the run's process tree,
// and appends them to the output, one row per process.
//
// In agg mode, each input is an aggregated CSV file, typically the
// output of an earlier ppx-mode run for one job. Ctragg concatenates
// them and rewrites the Arguments of the first row to "--job" followed
// by the job file of each input, so the combined file describes a mix
// of jobs. The input "-" reads an aggregated file from standard input.
//
// The output is written to data_<name>.csv in the directory given by
// -dir. Inputs may be glob patterns. With -append, an existing output
// file keeps its contents and the new rows are added below its header.
//
// Columns named by -meta are read as metadata, like Process id and
// Arguments, and are copied through without being treated as counters.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpcprof/wlclass/ctrfmt"
	"github.com/hpcprof/wlclass/internal/logutil"
	"github.com/hpcprof/wlclass/proctree"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var exit = os.Exit // replaced during testing

var errUsage = errors.New("usage error")

func main() {
	err := ctragg(os.Stdout, os.Stderr, os.Args[1:])
	if errors.Is(err, errUsage) {
		exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctragg: %s\n", err)
		exit(1)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func ctragg(stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("ctragg", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: ctragg [options] -o name input...\n")
		fmt.Fprintf(stderr, "options:\n")
		flags.PrintDefaults()
	}
	var inputs stringList
	flags.Var(&inputs, "i", "aggregate `input` directory or file (may be repeated; may be a glob)")
	flagOut := flags.String("o", "", "write output to data_`name`.csv")
	flagMode := flags.String("mode", "ppx", "input `mode`: ppx (papiex run directories) or agg (aggregated files)")
	flagDir := flags.String("dir", ".", "write output to `directory`")
	flagAppend := flags.Bool("append", false, "append to an existing output file with the same header")
	flagMeta := flags.String("meta", "", "comma-separated `columns` to read as metadata in addition to the papiex defaults")
	flagVerbose := flags.Bool("v", false, "log each file read")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	inputs = append(inputs, flags.Args()...)
	if *flagOut == "" || len(inputs) == 0 {
		flags.Usage()
		return errUsage
	}
	log := logutil.New(stderr, *flagVerbose)
	defer log.Sync()

	paths, err := ctrfmt.Glob(inputs...)
	if err != nil {
		return err
	}
	keys := metadataKeys(*flagMeta)

	var records []*ctrfmt.Record
	switch *flagMode {
	case "ppx":
		records, err = readRuns(log, paths, keys)
	case "agg":
		records, err = readAggregated(log, paths, keys)
	default:
		fmt.Fprintf(stderr, "unknown mode %q\n", *flagMode)
		flags.Usage()
		return errUsage
	}
	if err != nil {
		return err
	}

	out := filepath.Join(*flagDir, OutputName(*flagOut))
	if err := writeRecords(out, records, *flagAppend); err != nil {
		return err
	}
	log.Info("wrote aggregated data", zap.String("file", out), zap.Int("records", len(records)))
	fmt.Fprintln(stdout, out)
	return nil
}

// OutputName returns the output file name for name.
func OutputName(name string) string {
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	return "data_" + name
}

// metadataKeys returns the metadata columns for a -meta value, or nil
// for the defaults.
func metadataKeys(extra string) []string {
	var keys []string
	for _, k := range strings.Split(extra, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if keys == nil {
		return nil
	}
	return append(ctrfmt.DefaultMetadataKeys(), keys...)
}

// readRuns reads each run directory and returns the leaf processes of
// all runs, in order. It reports every bad run, not just the first.
func readRuns(log *zap.Logger, dirs []string, keys []string) ([]*ctrfmt.Record, error) {
	var leaves []*ctrfmt.Record
	var errs error
	for _, dir := range dirs {
		run, err := readRun(log, dir, keys)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		l, err := proctree.ExtractLeaves(run)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", dir, err))
			continue
		}
		log.Debug("extracted leaves", zap.String("run", dir), zap.Int("processes", len(run)), zap.Int("leaves", len(l)))
		leaves = append(leaves, l...)
	}
	if errs != nil {
		return nil, errs
	}
	return leaves, nil
}

func readRun(log *zap.Logger, dir string, keys []string) ([]*ctrfmt.Record, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no counter files", dir)
	}
	var recs []*ctrfmt.Record
	files := ctrfmt.Files{Paths: paths, MetadataKeys: keys}
	for files.Scan() {
		switch rec := files.Result().(type) {
		case *ctrfmt.SyntaxError:
			// Non-fatal result parse error. Warn
			// but keep going.
			log.Warn("skipping malformed row", zap.Error(rec))
		case *ctrfmt.Record:
			recs = append(recs, rec)
		}
	}
	if err := files.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// readAggregated reads aggregated files and labels the first record
// with the combined job list. The path "-" reads standard input.
func readAggregated(log *zap.Logger, paths []string, keys []string) ([]*ctrfmt.Record, error) {
	var recs []*ctrfmt.Record
	var errs error
	for _, path := range paths {
		rec, err := readAggregatedFile(path, keys)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debug("read aggregated file", zap.String("file", path))
		recs = append(recs, rec)
	}
	if errs != nil {
		return nil, errs
	}

	jobs := []string{"--job"}
	for i, rec := range recs {
		job, err := jobFile(rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
		jobs = append(jobs, job)
	}
	recs[0].Set(ctrfmt.KeyArguments, ctrfmt.MetaValue(strings.Join(jobs, " ")))
	return recs, nil
}

func readAggregatedFile(path string, keys []string) (*ctrfmt.Record, error) {
	var rows []*ctrfmt.Record
	files := ctrfmt.Files{Paths: []string{path}, AllowStdin: true, MetadataKeys: keys}
	for files.Scan() {
		switch rec := files.Result().(type) {
		case *ctrfmt.SyntaxError:
			// Aggregated files are written by ctragg, so a
			// malformed row means the file is damaged.
			return nil, rec
		case *ctrfmt.Record:
			rows = append(rows, rec)
		}
	}
	if err := files.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no samples", path)
	}
	return ctrfmt.Aggregate(rows)
}

// jobFile returns the job file named by rec's Arguments, without its
// directory prefix. The job file is the word after "--job", or the
// second word if there is no "--job".
func jobFile(rec *ctrfmt.Record) (string, error) {
	args, ok := rec.Meta(ctrfmt.KeyArguments)
	if !ok {
		return "", fmt.Errorf("no %s field", ctrfmt.KeyArguments)
	}
	words := strings.Fields(args)
	i := 1
	for j, w := range words {
		if w == "--job" {
			i = j + 1
			break
		}
	}
	if i >= len(words) {
		return "", fmt.Errorf("%s %q names no job file", ctrfmt.KeyArguments, args)
	}
	return strings.TrimPrefix(words[i], "../jobfiles/"), nil
}

// writeRecords writes records to path. Nothing is written if any
// record does not fit the first record's header.
//
// If appendOut is set and path already has a header, the records are
// appended without a header, and their fields must match it.
func writeRecords(path string, records []*ctrfmt.Record, appendOut bool) error {
	var buf strings.Builder
	w := ctrfmt.NewWriter(&buf)
	mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendOut {
		header, err := existingHeader(path)
		if err != nil {
			return err
		}
		if header != nil {
			if len(records) > 0 && !ctrfmt.FieldSet(header).Equal(records[0].Names()) {
				return fmt.Errorf("%s: header %q does not match fields %q", path, header, records[0].Names())
			}
			w.NoHeader = true
			mode = os.O_WRONLY | os.O_APPEND
		}
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			file, line := rec.Pos()
			return fmt.Errorf("%s:%d: %w", file, line, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, mode, 0666)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(buf.String()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// existingHeader returns the header of the counter file at path, or
// nil if there is no such file or it is empty.
func existingHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := ctrfmt.NewReader(f, path)
	r.Scan()
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r.Header(), nil
}
