// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lookup

import (
	"strings"

	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/token"
)

// Match pairs a matched row with its synthetic query prefix column
// (§4.6 "Result emission").
type Match struct {
	Prefix string
	Row    *store.PolicyRow
}

// queryLine is one parsed "SRC,DST[,comment]" lookup-list entry
// (SPEC_FULL.md §6).
type queryLine struct {
	src, dst string
}

// ParseQueryLines splits a lookup-list text blob into SRC/DST pairs,
// skipping blank lines and lines beginning with '#' or '!' (§6).
func ParseQueryLines(text string) []queryLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []queryLine
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		src := fields[0]
		dst := ""
		if len(fields) > 1 {
			dst = fields[1]
		}
		out = append(out, queryLine{src: strings.TrimSpace(src), dst: strings.TrimSpace(dst)})
	}
	return out
}

// Run evaluates every line of listText against rows (a single
// type-mode's normalized or flattened policy list, per §4.6) and returns
// both the all-matches and without-ineffectual result sets, in row scan
// order within each query line.
func Run(rows []*store.PolicyRow, listText string, fqdnGeoMatchAll bool) (all, withoutIneffectual []Match) {
	for _, qline := range ParseQueryLines(listText) {
		var srcQ, dstQ Query
		var hasSrc, hasDst bool
		if qline.src != "" {
			srcQ, hasSrc = ClassifyQuery(qline.src)
			if !hasSrc {
				continue
			}
		}
		if qline.dst != "" {
			dstQ, hasDst = ClassifyQuery(qline.dst)
			if !hasDst {
				continue
			}
		}
		if !hasSrc && !hasDst {
			continue
		}

		prefix := resultPrefix(hasSrc, hasDst, srcQ, dstQ)
		seen := make(map[string]bool)

		for _, row := range rows {
			if hasSrc && !matchStoredValue(row.SAddr, srcQ, negateColumn(row.SANeg), fqdnGeoMatchAll) {
				continue
			}
			if hasDst {
				if !matchStoredValue(row.DAddr, dstQ, negateColumn(row.DANeg), fqdnGeoMatchAll) {
					continue
				}
				if !narrowServiceDestination(row, dstQ, fqdnGeoMatchAll) {
					continue
				}
			}

			m := Match{Prefix: prefix, Row: row}
			all = append(all, m)

			key := ineffectualKey(row)
			if seen[key] {
				continue
			}
			withoutIneffectual = append(withoutIneffectual, m)
			if isCatchAllDenyTrigger(row, hasSrc, hasDst) {
				seen[key] = true
			}
		}
	}
	return all, withoutIneffectual
}

// kindLabel renders a Kind as the lowercase metrics label the HTTP API
// uses for its per-kind lookup-query counter.
func kindLabel(k Kind) string {
	switch k {
	case KindIPv4:
		return "ipv4"
	case KindIPv6:
		return "ipv6"
	case KindFQDN:
		return "fqdn"
	case KindGeo:
		return "geo"
	default:
		return "unknown"
	}
}

// ClassifyKinds classifies every SRC/DST query in listText and tallies
// them by kind label, for the HTTP API's lookup_queries_total counter. A
// side that fails to classify is tallied as "unknown" rather than
// dropped, unlike Run's stricter per-line skip.
func ClassifyKinds(listText string) map[string]int {
	counts := make(map[string]int)
	for _, qline := range ParseQueryLines(listText) {
		for _, side := range []string{qline.src, qline.dst} {
			if side == "" {
				continue
			}
			q, ok := ClassifyQuery(side)
			if !ok {
				counts["unknown"]++
				continue
			}
			counts[kindLabel(q.Kind)]++
		}
	}
	return counts
}

func resultPrefix(hasSrc, hasDst bool, srcQ, dstQ Query) string {
	switch {
	case hasSrc && hasDst:
		return "from_" + srcQ.Display() + "_to_" + dstQ.Display()
	case hasSrc:
		return "from_" + srcQ.Display()
	default:
		return "to_" + dstQ.Display()
	}
}

// narrowServiceDestination implements the "service-destination
// narrowing" AND condition of §4.6: SD_ADDR, when it names anything
// other than the universal or absent sentinel, further restricts the
// destination under SVNEG.
func narrowServiceDestination(row *store.PolicyRow, dstQ Query, fqdnGeoMatchAll bool) bool {
	if row.SDAddr == "0/0" || row.SDAddr == "-" {
		return true
	}
	return matchStoredValue(row.SDAddr, dstQ, negateColumn(row.SVNeg), fqdnGeoMatchAll)
}

func ineffectualKey(row *store.PolicyRow) string {
	return row.PolType + "|" + row.SIntf + "|" + row.DIntf
}

// isCatchAllDenyTrigger implements the ineffectual-rule trigger table of
// §4.6. Suppression only fires for a default-deny-ip row whose addresses
// are the family catch-all; which catch-all combination qualifies
// depends on POLTYPE and whether the query that produced this match had
// a destination side at all. 6to4 has no listed trigger in §4.6's table
// and so never suppresses, matching that table literally.
func isCatchAllDenyTrigger(row *store.PolicyRow, hasSrc, hasDst bool) bool {
	if row.Action != "deny" || row.Status != "enable" || row.Prot != "ip" {
		return false
	}

	polType := store.TypeMode(row.PolType)
	switch {
	case hasSrc && hasDst:
		switch polType {
		case store.TypeMode4to4:
			return row.SAddr == token.AllV4 && row.DAddr == token.AllV4
		case store.TypeMode6to6:
			return row.SAddr == token.AllV6 && row.DAddr == token.AllV6
		case store.TypeMode4to6:
			return row.SAddr == token.AllV4 && row.DAddr == token.AllV6
		default:
			return false
		}

	case hasDst:
		switch polType {
		case store.TypeMode4to4:
			return row.DAddr == token.AllV4
		case store.TypeMode4to6, store.TypeMode6to6:
			return row.DAddr == token.AllV6
		default:
			return false
		}

	default:
		// Source-only query: §4.6's trigger table defines no case for
		// this, so no row ever suppresses a later one.
		return false
	}
}
