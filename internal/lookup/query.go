// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package lookup implements the containment oracle of SPEC_FULL.md §4.6:
// classifying a query address, deciding whether a stored token matches
// it, and assembling the result set (including ineffectual-rule
// suppression) against a flattened or normalized policy list.
package lookup

import (
	"regexp"
	"strings"

	"grimm.is/fwpolicy/internal/ipaddr"
)

// Kind is the classification a query address string resolves to.
type Kind int

const (
	KindUnknown Kind = iota
	KindIPv4
	KindIPv6
	KindFQDN
	KindGeo
)

// Query is one side (source or destination) of a parsed lookup line,
// already classified and, for address kinds, parsed into arithmetic
// form.
type Query struct {
	Kind    Kind
	V4      ipaddr.V4Prefix
	V6      ipaddr.V6Prefix
	Pattern string // literal hostname (FQDN) or country code (Geo)
}

var (
	ipv4Pattern     = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+(/\d+)?$`)
	hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)
)

// ClassifyQuery implements the query classification rule of §4.6: IPv4
// by regex (a bare host gets /32), IPv6 by containing a colon (invalid
// forms are rejected, not defaulted), FQDN by explicit "fqdn:" prefix or
// a syntactically valid hostname, geography by explicit "geo:" prefix,
// otherwise unknown. The bool return reports whether s classified at
// all; a false result means "skip the whole row".
func ClassifyQuery(s string) (Query, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, false
	}

	if code, ok := strings.CutPrefix(s, "geo:"); ok {
		return Query{Kind: KindGeo, Pattern: code}, true
	}
	if host, ok := strings.CutPrefix(s, "fqdn:"); ok {
		return Query{Kind: KindFQDN, Pattern: host}, true
	}

	if ipv4Pattern.MatchString(s) {
		p, ok := ipaddr.ParseV4CIDR(s)
		if !ok {
			return Query{}, false
		}
		return Query{Kind: KindIPv4, V4: p}, true
	}

	if strings.Contains(s, ":") {
		p, ok := ipaddr.ParseV6CIDR(s)
		if !ok {
			return Query{}, false
		}
		return Query{Kind: KindIPv6, V6: p}, true
	}

	if hostnamePattern.MatchString(s) {
		return Query{Kind: KindFQDN, Pattern: s}, true
	}

	return Query{}, false
}

// Display renders the query's canonical text for the synthetic result
// prefix (§4.6 "from_<q>"/"to_<q>"), retaining the fqdn:/geo: prefixes
// for those classes.
func (q Query) Display() string {
	switch q.Kind {
	case KindIPv4:
		return q.V4.String()
	case KindIPv6:
		return q.V6.String()
	case KindFQDN:
		return "fqdn:" + q.Pattern
	case KindGeo:
		return "geo:" + q.Pattern
	default:
		return ""
	}
}

func (q Query) isAllV4() bool {
	return q.Kind == KindIPv4 && q.V4.Addr == 0 && q.V4.Len == 0
}

func (q Query) isAllV6() bool {
	return q.Kind == KindIPv6 && q.V6.Addr.IsZero() && q.V6.Len == 0
}

// fqdnPatternMatches translates a stored FQDN pattern into an anchored
// regex — each literal '.' stays literal, each '*' becomes a single
// non-dot wildcard segment — and tests it against the literal query
// hostname (§4.6 step 3).
func fqdnPatternMatches(pattern, host string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '.':
			b.WriteString(`\.`)
		case '*':
			b.WriteString(`[^.]*`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(host)
}
