// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package csvout assembles the CRLF-joined CSV text the pipeline hands
// back to its front end (SPEC_FULL.md §4.7): flattened policy rows,
// address/service listings, and lookup match rows. It is the only place
// in the module that knows the wire quoting rules, grounded on the
// teacher's encoding/csv export path (internal/ebpf/socket/device_database.go).
package csvout

import (
	"bytes"
	"encoding/csv"

	"grimm.is/fwpolicy/internal/store"
)

// joinCSV renders rows as CRLF-terminated CSV lines, trimming the final
// line ending so the result can itself be CRLF-joined with other blocks
// by a caller without producing a blank trailing line.
func joinCSV(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	for _, row := range rows {
		// encoding/csv's own quoting already covers embedded commas,
		// quotes, and line endings; nothing here needs escaping by hand.
		_ = w.Write(row)
	}
	w.Flush()
	out := buf.String()
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == '\r') {
		out = out[:len(out)-1]
	}
	return out
}

// FormatPolicyRows renders the 22-column flattened/normalized policy CSV
// of SPEC_FULL.md §3/§6.
func FormatPolicyRows(rows []*store.PolicyRow) string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Columns()
	}
	return joinCSV(out)
}

// FormatListings renders one address/service listing line per stored
// value, `<vdom>,<tableTag>,<name>,<value>,<comment>` (SPEC_FULL.md §4.7).
func FormatListings(dom *store.Domain) string {
	return FormatListingsFiltered(dom, nil)
}

// FormatListingsFiltered is FormatListings restricted to the table tags
// named in allow; a nil or empty allow renders every table, matching
// FormatListings.
func FormatListingsFiltered(dom *store.Domain, allow map[store.TableTag]bool) string {
	var out [][]string
	for _, table := range dom.Tables() {
		if len(allow) > 0 && !allow[table.Tag] {
			continue
		}
		for _, name := range sortedKeys(table.Table) {
			ts := table.Table[name]
			for _, v := range ts.Strings() {
				out = append(out, []string{dom.Name, string(table.Tag), ts.Name, v, ts.Comment})
			}
		}
	}
	return joinCSV(out)
}

// sortedKeys returns a table's names in a deterministic order. The
// normalized store is a map, so listings output would otherwise vary
// run to run.
func sortedKeys(table map[string]*store.TokenSet) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func insertionSort(keys []string) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
}

// FormatLookupRows renders lookup matches, each prefixed with its
// synthetic query column ahead of the full 22-column row (SPEC_FULL.md
// §4.6/§6).
func FormatLookupRows(prefixes []string, rows []*store.PolicyRow) string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string{prefixes[i]}, r.Columns()...)
	}
	return joinCSV(out)
}
