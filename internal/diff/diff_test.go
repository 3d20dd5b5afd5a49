// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import (
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	if d := Diff("want", "a\nb\n", "got", "a\nb\n"); d != "" {
		t.Errorf("equal inputs produced diff %q", d)
	}
	if d := Diff("want", "a\nb\n", "got", "a\nc\n"); d == "" {
		t.Error("different inputs produced no diff")
	}
}

func TestFirstDifference(t *testing.T) {
	d := firstDifference("want", "a\nb\nc", "got", "a\nb")
	if !strings.HasPrefix(d, "line 3:") || !strings.Contains(d, `want: "c"`) {
		t.Errorf("got %q", d)
	}
}
