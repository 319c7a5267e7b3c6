// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package logging

import (
	"fmt"
	"net"
	"os"
	"time"

	"grimm.is/fwpolicy/internal/errors"
)

// SyslogConfig describes an optional remote syslog sink for the pipeline's
// logger. It is dial-based rather than using the standard library's
// log/syslog package, which only talks to a local Unix socket.
type SyslogConfig struct {
	Enabled  bool   `hcl:"enabled,optional" json:"enabled"`
	Host     string `hcl:"host,optional" json:"host,omitempty"`
	Port     int    `hcl:"port,optional" json:"port,omitempty"`
	Protocol string `hcl:"protocol,optional" json:"protocol,omitempty"` // "udp" or "tcp"
	Tag      string `hcl:"tag,optional" json:"tag,omitempty"`
	Facility int    `hcl:"facility,optional" json:"facility,omitempty"`
}

// DefaultSyslogConfig returns a disabled config with RFC 5424-ish defaults
// (facility 1 is "user-level messages").
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "fwpolicy",
		Facility: 1,
	}
}

// syslogWriter is an io.Writer that frames each Write as one RFC 3164
// syslog message and sends it over a persistent UDP or TCP connection.
type syslogWriter struct {
	conn     net.Conn
	tag      string
	facility int
	hostname string
}

// NewSyslogWriter dials the configured syslog host and returns a writer
// that forwards log output to it. Missing Port/Protocol/Tag are defaulted.
func NewSyslogWriter(cfg SyslogConfig) (*syslogWriter, error) {
	if cfg.Host == "" {
		return nil, errors.New(errors.KindValidation, "syslog host cannot be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = 514
	}
	if cfg.Protocol == "" {
		cfg.Protocol = "udp"
	}
	if cfg.Tag == "" {
		cfg.Tag = "fwpolicy"
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	conn, err := net.DialTimeout(cfg.Protocol, addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindUnavailable, "failed to dial syslog server")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	return &syslogWriter{
		conn:     conn,
		tag:      cfg.Tag,
		facility: cfg.Facility,
		hostname: hostname,
	}, nil
}

// Write sends p as a single syslog message at severity "informational" (6).
func (w *syslogWriter) Write(p []byte) (int, error) {
	const severity = 6
	priority := w.facility*8 + severity
	msg := fmt.Sprintf("<%d>%s %s %s[%d]: %s",
		priority,
		time.Now().Format(time.Stamp),
		w.hostname,
		w.tag,
		os.Getpid(),
		p,
	)
	if _, err := w.conn.Write([]byte(msg)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close releases the underlying connection.
func (w *syslogWriter) Close() error {
	return w.conn.Close()
}
