// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logutil

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	var buf strings.Builder
	log := New(&buf, false)
	log.Debug("hidden")
	log.Info("reading", zap.String("file", "a.csv"))
	if got, want := buf.String(), "INFO\treading\t{\"file\": \"a.csv\"}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "DEBUG\tshown") {
		t.Errorf("verbose logger dropped debug message: %q", buf.String())
	}
}
