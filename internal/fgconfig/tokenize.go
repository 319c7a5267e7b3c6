// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package fgconfig implements the stack-based `config/edit/set/unset/
// next/end` reader for FortiGate CLI-dump syntax (SPEC_FULL.md §4.2) and
// the per-stanza handlers that populate a store.Store from it.
package fgconfig

import "strings"

// tokenize splits a config line into whitespace-separated fields,
// stripping at most one pair of matching `"`/`'` quotes from each field
// so a quoted value may contain embedded spaces (SPEC_FULL.md §4.2).
func tokenize(line string) []string {
	var out []string
	var buf []rune
	var quote rune

	flush := func() {
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = nil
		}
	}

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				buf = append(buf, r)
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

// splitLines normalizes CR/LF/CRLF line endings and drops blank or
// comment (`#`) lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
