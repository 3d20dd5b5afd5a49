// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classify assigns an unknown counter profile to the nearest
// known workload class.
//
// Each class and the unknown are reduced to a median vector. The
// unknown is compared to every class by cosine similarity and
// Euclidean distance, and the distances are turned into closeness
// percentages that sum to 100.
package classify

import (
	"fmt"
	"sync"

	"github.com/hpcprof/wlclass/ctrfmt"
	"github.com/hpcprof/wlclass/ctrmath"
	"github.com/hpcprof/wlclass/profile"
	"go.uber.org/multierr"
)

// Header lists the output columns of a Result, in order.
var Header = []string{"Name", "Class", "Cosine similarity", "Euclidean distance", "Closeness Percentage"}

// A Result compares one unknown profile with one class.
type Result struct {
	Name      string // unknown workload
	Class     string
	Cosine    float64
	Distance  float64
	Closeness float64 // percent
}

// Row returns r formatted as strings in Header order.
func (r Result) Row(format func(float64) string) []string {
	return []string{r.Name, r.Class, format(r.Cosine), format(r.Distance), format(r.Closeness)}
}

// Classify compares unknown with each class and returns one Result per
// class, in class order, along with the output header.
//
// All records must have the numeric fields of classes[0] in the same
// order; scrub.Scrub produces such records from consistent inputs.
func Classify(classes []*ctrfmt.Record, unknown *ctrfmt.Record, classNames []string, unknownName string) ([]Result, []string, error) {
	fields, err := checkClasses(classes, classNames)
	if err != nil {
		return nil, nil, err
	}
	return classify(profile.MedianVectors(classes), fields, unknown, classNames, unknownName)
}

func checkClasses(classes []*ctrfmt.Record, classNames []string) (ctrfmt.FieldSet, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("classify: no classes")
	}
	if len(classNames) != len(classes) {
		return nil, fmt.Errorf("classify: %d class names for %d classes", len(classNames), len(classes))
	}
	fields := ctrfmt.FieldSet(classes[0].NumericNames())
	if len(fields) == 0 {
		return nil, fmt.Errorf("classify: class %q has no numeric fields", classNames[0])
	}
	if err := profile.CheckSchema(classes, fields); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return fields, nil
}

func classify(centroids []ctrmath.Vector, fields ctrfmt.FieldSet, unknown *ctrfmt.Record, classNames []string, unknownName string) ([]Result, []string, error) {
	if err := profile.CheckSchema([]*ctrfmt.Record{unknown}, fields); err != nil {
		return nil, nil, fmt.Errorf("classify: unknown %q: %w", unknownName, err)
	}
	u := profile.MedianVector(unknown)

	results := make([]Result, len(centroids))
	distances := make([]float64, len(centroids))
	for i, c := range centroids {
		cos, err := ctrmath.Cosine(u, c)
		if err != nil {
			return nil, nil, fmt.Errorf("classify: unknown %q, class %q: %w", unknownName, classNames[i], err)
		}
		dist, err := ctrmath.Euclidean(u, c)
		if err != nil {
			return nil, nil, fmt.Errorf("classify: unknown %q, class %q: %w", unknownName, classNames[i], err)
		}
		results[i] = Result{Name: unknownName, Class: classNames[i], Cosine: cos, Distance: dist}
		distances[i] = dist
	}
	closeness, err := ctrmath.Closeness(distances)
	if err != nil {
		return nil, nil, fmt.Errorf("classify: unknown %q: %w", unknownName, err)
	}
	for i := range results {
		results[i].Closeness = closeness[i]
	}
	return results, append([]string(nil), Header...), nil
}

// ClassifyAll classifies each unknown against classes concurrently.
// The i'th element of the result holds the results for unknowns[i].
// If any classification fails, ClassifyAll returns every failure and
// no results.
func ClassifyAll(classes []*ctrfmt.Record, unknowns []*ctrfmt.Record, classNames, unknownNames []string) ([][]Result, error) {
	if len(unknownNames) != len(unknowns) {
		return nil, fmt.Errorf("classify: %d unknown names for %d unknowns", len(unknownNames), len(unknowns))
	}
	fields, err := checkClasses(classes, classNames)
	if err != nil {
		return nil, err
	}
	centroids := profile.MedianVectors(classes)

	out := make([][]Result, len(unknowns))
	errs := make([]error, len(unknowns))
	var wg sync.WaitGroup
	for i := range unknowns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i], _, errs[i] = classify(centroids, fields, unknowns[i], classNames, unknownNames[i])
		}(i)
	}
	wg.Wait()
	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Best returns the index of the result with the highest closeness.
func Best(results []Result) int {
	best := -1
	for i, r := range results {
		if best < 0 || r.Closeness > results[best].Closeness {
			best = i
		}
	}
	return best
}
