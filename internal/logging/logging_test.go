// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: LevelInfo, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected log output to contain message, got: %s", buf.String())
	}
}

func TestNewJSONLoggerWithJobAndStage(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: LevelInfo, JSON: true, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	scoped := l.WithJob("job-1").WithStage("FLATTEN")
	scoped.Info("flattening policies")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected valid JSON log line, got %q: %v", buf.String(), err)
	}
	if record["job_id"] != "job-1" {
		t.Fatalf("expected job_id=job-1, got %v", record["job_id"])
	}
	if record["stage"] != "FLATTEN" {
		t.Fatalf("expected stage=FLATTEN, got %v", record["stage"])
	}
}

func TestDefaultLogger(t *testing.T) {
	l := Default()
	if l == nil || l.Logger == nil {
		t.Fatalf("expected a usable default logger")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close on a syslog-less logger should be a no-op, got: %v", err)
	}
}

func TestNewRejectsBadSyslogConfig(t *testing.T) {
	cfg := DefaultSyslogConfig()
	cfg.Enabled = true
	cfg.Host = ""

	if _, err := New(Options{Syslog: &cfg}); err == nil {
		t.Fatalf("expected New to reject a syslog config with no host")
	}
}
