// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the structured logger used across the pipeline,
// CLI, and HTTP API. It wraps log/slog with an optional remote syslog sink
// so operators can mirror pipeline activity off-host without standing up a
// log-shipping agent.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level mirrors slog.Level for callers that don't want to import log/slog
// directly.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps *slog.Logger, adding a Close method for the optional syslog
// connection and a handful of job/stage-scoped constructors used by
// internal/pipeline.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// Options configures New.
type Options struct {
	Level  Level
	JSON   bool
	Output io.Writer // defaults to os.Stderr
	Syslog *SyslogConfig
}

// New builds a Logger per opts. When opts.Syslog is enabled, log records are
// written to both opts.Output (or stderr) and the remote syslog sink.
func New(opts Options) (*Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer
	if opts.Syslog != nil && opts.Syslog.Enabled {
		sw, err := NewSyslogWriter(*opts.Syslog)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(out, sw)
		closer = sw
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler), closer: closer}, nil
}

// Default returns a Logger writing human-readable text to stderr at info
// level, with no syslog sink. Used when the CLI is run without -settings.
func Default() *Logger {
	l, _ := New(Options{Level: LevelInfo})
	return l
}

// WithJob returns a child logger tagged with a pipeline job ID, so every
// record a stage emits for that job can be grepped or filtered together.
func (l *Logger) WithJob(jobID string) *Logger {
	return &Logger{Logger: l.Logger.With("job_id", jobID), closer: l.closer}
}

// WithStage returns a child logger additionally tagged with the current
// pipeline stage name ("MAKE_LIST", "NORMALIZE", "FLATTEN", "LOOKUP").
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{Logger: l.Logger.With("stage", stage), closer: l.closer}
}

// Close releases the syslog connection, if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
