// Copyright 2026 The wlclass Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff compares command output with golden files.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Diff returns a human-readable description of the differences
// between want and got. If the "diff" command is available, it
// returns a unified diff labeled with the two names. Otherwise it
// reports the first line that differs. If the result is non-empty,
// the strings differ or the diff command failed.
func Diff(wantName, want, gotName, got string) string {
	if want == got {
		return ""
	}
	if _, err := exec.LookPath("diff"); err != nil {
		return firstDifference(wantName, want, gotName, got)
	}
	f1, err := writeTemp(want)
	if err != nil {
		return err.Error()
	}
	defer os.Remove(f1)
	f2, err := writeTemp(got)
	if err != nil {
		return err.Error()
	}
	defer os.Remove(f2)

	data, err := exec.Command("diff", "-u", "--label", wantName, "--label", gotName, f1, f2).CombinedOutput()
	if len(data) > 0 {
		// diff exits with a non-zero status when the files don't match.
		// Ignore that failure as long as we get output.
		err = nil
	}
	if err != nil {
		data = append(data, []byte(err.Error())...)
	}
	return string(data)
}

func writeTemp(s string) (string, error) {
	f, err := os.CreateTemp("", "wlclass-diff")
	if err != nil {
		return "", err
	}
	_, err = f.WriteString(s)
	if err1 := f.Close(); err == nil {
		err = err1
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func firstDifference(wantName, want, gotName, got string) string {
	wl, gl := strings.Split(want, "\n"), strings.Split(got, "\n")
	for i := 0; ; i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g || i >= len(wl) || i >= len(gl) {
			return fmt.Sprintf("line %d:\n%s: %q\n%s: %q\n", i+1, wantName, w, gotName, g)
		}
	}
}
