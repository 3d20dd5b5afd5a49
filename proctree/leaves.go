// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proctree selects the processes of a benchmark run that did
// the measured work.
//
// A load generator such as stress-ng runs as a small tree of
// processes: a top-level spawner forks workers, and some stress
// methods have the workers fork another layer of children. Only the
// leaves of that tree carry a meaningful counter profile.
package proctree

import (
	"fmt"
	"sort"

	"github.com/hpcprof/wlclass/ctrfmt"
)

// A StructuralError reports a set of process records whose parent ids
// do not describe a spawn tree that leaves can be extracted from.
type StructuralError struct {
	// Records is the number of input records.
	Records int
	Msg     string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%d process records: %s", e.Records, e.Msg)
}

// ExtractLeaves returns the leaf process records of one benchmark run,
// in input order.
//
// It counts records per parent process id and ignores the smallest
// parent id, which belongs to the spawner. If exactly one parent id
// remains, every record with that parent is a leaf. If several remain,
// a record is a leaf if its parent id occurs exactly once in the
// input. If none remain, the run has no identifiable workers and
// ExtractLeaves returns a *StructuralError.
//
// This heuristic assumes a spawn tree of at most two levels below the
// spawner. In a deeper tree where intermediate processes also do
// measured work, those intermediate records are dropped.
func ExtractLeaves(records []*ctrfmt.Record) ([]*ctrfmt.Record, error) {
	if len(records) == 0 {
		return nil, &StructuralError{0, "no records"}
	}
	ppids := make([]int, len(records))
	count := make(map[int]int)
	for i, rec := range records {
		ppid, err := rec.PPID()
		if err != nil {
			return nil, &StructuralError{len(records), fmt.Sprintf("record %d: %v", i, describe(rec, err))}
		}
		ppids[i] = ppid
		count[ppid]++
	}

	ids := make([]int, 0, len(count))
	for id := range count {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	// Drop the spawner.
	delete(count, ids[0])
	ids = ids[1:]

	var keep func(ppid int) bool
	switch len(ids) {
	case 0:
		return nil, &StructuralError{len(records), fmt.Sprintf("all records share parent id %d", ppids[0])}
	case 1:
		keep = func(ppid int) bool { return ppid == ids[0] }
	default:
		keep = func(ppid int) bool { return count[ppid] == 1 }
	}

	var leaves []*ctrfmt.Record
	for i, rec := range records {
		if keep(ppids[i]) {
			leaves = append(leaves, rec)
		}
	}
	return leaves, nil
}

func describe(rec *ctrfmt.Record, err error) string {
	if file, line := rec.Pos(); file != "" {
		return fmt.Sprintf("%s:%d: %v", file, line, err)
	}
	return err.Error()
}
