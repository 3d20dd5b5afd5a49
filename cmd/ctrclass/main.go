// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ctrclass classifies workloads by their hardware counter profiles.
//
// Usage:
//
//	ctrclass [options] -i class.csv... -o unknown.csv...
//
// Each input is an aggregated CSV file as written by ctragg. The
// workload name of a file is taken from its name: data_matrixprod.csv
// names the workload "matrixprod".
//
// In cmp-raw mode (the default), ctrclass compares each unknown
// workload with every class by the median of each counter. For each
// unknown it writes similarities_<name>.csv (or another format chosen
// with -format) and prints a table of cosine similarity, Euclidean
// distance and closeness percentage per class. With -db it also
// records the results in a SQL database given as driver:dsn, for
// example sqlite3:results.db.
//
// In stats mode, ctrclass prints summary statistics for each counter
// across the class inputs and the Spearman rank correlation between
// every pair of counters. Highly correlated counters are candidates
// for the scrub presets.
//
// Counters are scrubbed before comparison. The -scrub level selects a
// preset: none keeps every counter, basic drops counters that carry no
// information, and full also drops redundant ones. -presets loads the
// preset lists from an INI file, and -exclude adds counters to drop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hpcprof/wlclass/classify"
	"github.com/hpcprof/wlclass/ctrfmt"
	"github.com/hpcprof/wlclass/export"
	"github.com/hpcprof/wlclass/internal/logutil"
	"github.com/hpcprof/wlclass/profile"
	"github.com/hpcprof/wlclass/scrub"
	"github.com/hpcprof/wlclass/store"
	_ "github.com/hpcprof/wlclass/store/sqlite3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var exit = os.Exit // replaced during testing

var errUsage = errors.New("usage error")

func main() {
	err := ctrclass(os.Stdout, os.Stderr, os.Args[1:])
	if errors.Is(err, errUsage) {
		exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctrclass: %s\n", err)
		exit(1)
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

// defaultClasses is where class files are looked for if no -i flag is
// given.
const defaultClasses = "collected_classes/*"

type config struct {
	log     *zap.Logger
	stdout  io.Writer
	exclude scrub.Set
	enabled bool
	format  export.Format
	dir     string
	db      string
}

func ctrclass(stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("ctrclass", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: ctrclass [options] [-i class.csv...] -o unknown.csv...\n")
		fmt.Fprintf(stderr, "options:\n")
		flags.PrintDefaults()
	}
	var classPats, unknownPats stringList
	flags.Var(&classPats, "i", "class data `file` (may be repeated; may be a glob; default "+defaultClasses+")")
	flags.Var(&unknownPats, "o", "unknown data `file` to classify (may be repeated; may be a glob)")
	flagMode := flags.String("mode", "cmp-raw", "processing `mode`: cmp-raw or stats")
	flagScrub := flags.String("scrub", "", "scrub `level`: none, basic or full (default full for cmp-raw, basic for stats)")
	flagExclude := flags.String("exclude", "", "comma-separated `counters` to drop in addition to the scrub preset")
	flagPresets := flags.String("presets", "", "read scrub presets from INI `file`")
	flagFormat := flags.String("format", "csv", "similarities file `format`: "+strings.Join(export.Names(), ", "))
	flagDir := flags.String("dir", ".", "write similarities files to `directory`")
	flagDB := flags.String("db", "", "also store results in the database `driver:dsn`")
	flagVerbose := flags.Bool("v", false, "log progress")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
		flags.Usage()
		return errUsage
	}
	log := logutil.New(stderr, *flagVerbose)
	defer log.Sync()

	mode := *flagMode
	switch mode {
	case "cmp-raw", "stats":
	case "box", "logbox":
		fmt.Fprintf(stderr, "mode %s draws charts, which ctrclass does not support\n", mode)
		flags.Usage()
		return errUsage
	default:
		fmt.Fprintf(stderr, "unknown mode %q\n", mode)
		flags.Usage()
		return errUsage
	}
	if strings.HasPrefix(mode, "cmp") && len(unknownPats) == 0 {
		log.Warn("no unknown dataset given for comparison, defaulting to stats mode")
		mode = "stats"
	}

	cfg := config{log: log, stdout: stdout, dir: *flagDir, db: *flagDB}
	var err error
	if cfg.exclude, cfg.enabled, err = exclusions(mode, *flagScrub, *flagPresets, *flagExclude); err != nil {
		fmt.Fprintln(stderr, err)
		flags.Usage()
		return errUsage
	}
	if cfg.format, err = export.Get(*flagFormat); err != nil {
		fmt.Fprintln(stderr, err)
		flags.Usage()
		return errUsage
	}

	if len(classPats) == 0 {
		classPats = stringList{defaultClasses}
	}
	classes, classNames, err := readFiles(log, classPats)
	if err != nil {
		return err
	}
	if mode == "stats" {
		return cfg.stats(classes)
	}
	unknowns, unknownNames, err := readFiles(log, unknownPats)
	if err != nil {
		return err
	}
	return cfg.compare(classes, classNames, unknowns, unknownNames)
}

// exclusions returns the counters to drop and whether dropping is
// enabled.
func exclusions(mode, level, presetsFile, extra string) (scrub.Set, bool, error) {
	if level == "" {
		level = "full"
		if mode == "stats" {
			level = "basic"
		}
	}
	l, err := scrub.ParseLevel(level)
	if err != nil {
		return nil, false, err
	}
	presets := scrub.DefaultPresets()
	if presetsFile != "" {
		f, err := os.Open(presetsFile)
		if err != nil {
			return nil, false, err
		}
		defer f.Close()
		if presets, err = scrub.LoadPresets(f); err != nil {
			return nil, false, fmt.Errorf("%s: %w", presetsFile, err)
		}
	}
	more := scrub.SplitList(extra)
	return presets.Exclusions(l, more...), l != scrub.None || len(more) > 0, nil
}

// readFiles reads each aggregated file matched by patterns and returns
// the records with their workload names. It reports every bad file,
// not just the first.
func readFiles(log *zap.Logger, patterns []string) ([]*ctrfmt.Record, []string, error) {
	paths, err := ctrfmt.Glob(patterns...)
	if err != nil {
		return nil, nil, err
	}
	var recs []*ctrfmt.Record
	var names []string
	var errs error
	for _, path := range paths {
		rec, err := readFile(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		name := ctrfmt.WorkloadName(path)
		log.Debug("read workload", zap.String("file", path), zap.String("name", name), zap.Int("fields", rec.Len()))
		recs = append(recs, rec)
		names = append(names, name)
	}
	if errs != nil {
		return nil, nil, errs
	}
	return recs, names, nil
}

func readFile(path string) (*ctrfmt.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ctrfmt.ReadAggregated(f, path)
}

func (c *config) scrub(recs []*ctrfmt.Record) ([]*ctrfmt.Record, ctrfmt.FieldSet, error) {
	return scrub.Scrub(recs, c.exclude, c.enabled, scrub.MatchUnprefixed(), scrub.WithLogger(c.log.Named("scrub")))
}

func (c *config) compare(classes []*ctrfmt.Record, classNames []string, unknowns []*ctrfmt.Record, unknownNames []string) error {
	classes, _, err := c.scrub(classes)
	if err != nil {
		return err
	}
	unknowns, _, err = scrub.Scrub(unknowns, c.exclude, c.enabled, scrub.MatchUnprefixed())
	if err != nil {
		return err
	}
	all, err := classify.ClassifyAll(classes, unknowns, classNames, unknownNames)
	if err != nil {
		return err
	}

	for i, results := range all {
		path := filepath.Join(c.dir, export.FileName(c.format, unknownNames[i]))
		if err := writeFile(path, c.format, results); err != nil {
			return err
		}
		c.log.Debug("wrote similarities", zap.String("file", path))
		if i > 0 {
			fmt.Fprintln(c.stdout)
		}
		if err := export.WriteText(c.stdout, results); err != nil {
			return err
		}
	}

	if c.db != "" {
		return c.record(all, classNames)
	}
	return nil
}

func writeFile(path string, format export.Format, results []classify.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := format.Write(f, results); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// record stores all results as a single run.
func (c *config) record(all [][]classify.Result, classNames []string) error {
	driver, dsn, err := store.ParseDSN(c.db)
	if err != nil {
		return err
	}
	db, err := store.OpenSQL(driver, dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	run, err := db.NewRun(ctx, strings.Join(classNames, ","))
	if err != nil {
		return err
	}
	for _, results := range all {
		if err := run.InsertResults(ctx, results); err != nil {
			return err
		}
	}
	c.log.Info("stored results", zap.String("run", run.ID))
	return nil
}

func (c *config) stats(classes []*ctrfmt.Record) error {
	scrubbed, fields, err := c.scrub(classes)
	if err != nil {
		return err
	}
	if err := profile.CheckSchema(scrubbed, fields); err != nil {
		return err
	}
	m, err := profile.BuildMatrix(scrubbed, fields)
	if err != nil {
		return err
	}

	rows := [][]string{{"counter", "mean", "variance", "min", "max"}}
	for _, s := range profile.FieldStats(m) {
		rows = append(rows, []string{s.Field, num(s.Mean), num(s.Variance), num(s.Min), num(s.Max)})
	}
	if err := export.WriteTable(c.stdout, rows); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout)

	corr := profile.Spearman(m)
	heading := []string{"spearman"}
	for j := range fields {
		heading = append(heading, fmt.Sprintf("[%d]", j))
	}
	rows = [][]string{heading}
	for i, name := range fields {
		row := []string{fmt.Sprintf("[%d] %s", i, name)}
		for j := range fields {
			row = append(row, fmt.Sprintf("%.2f", corr.At(i, j)))
		}
		rows = append(rows, row)
	}
	return export.WriteTable(c.stdout, rows)
}

func num(x float64) string {
	return fmt.Sprintf("%.4g", x)
}
