// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package testutil holds small helpers shared by the core packages' test
// suites: writing sample FortiGate config files to a temp dir (used by the
// cmd/fwpolicy tests) and slice comparisons (used by the internal/fgconfig
// tests).
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTempFile writes contents to a file named name under a fresh temp
// directory and returns its path.
func WriteTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("testutil: failed to write %s: %v", path, err)
	}
	return path
}

// AssertStringSliceEqual fails the test unless got and want are identical,
// element-for-element, in order. Used where insertion order is a
// correctness property (e.g. dedup-preserving-order group flattening).
func AssertStringSliceEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %v (len %d), want %v (len %d)", got, len(got), want, len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("mismatch at index %d: got %q, want %q (got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}
