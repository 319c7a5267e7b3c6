// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package lookup

import (
	"strings"

	"grimm.is/fwpolicy/internal/ipaddr"
)

// storedShape is the syntactic family of a canonical stored token
// string, re-derived from its text since a PolicyRow column holds a bare
// string rather than a token.Token.
type storedShape int

const (
	shapeUnknown storedShape = iota
	shapeGeo
	shapeFQDN
	shapeV4Cidr
	shapeV4Range
	shapeV4Wildcard
	shapeV6Cidr
	shapeV6Range
)

func classifyStoredShape(v string) storedShape {
	switch {
	case strings.HasPrefix(v, "geo:"):
		return shapeGeo
	case strings.HasPrefix(v, "fqdn:"):
		return shapeFQDN
	case strings.Contains(v, ":"):
		if strings.Contains(v, "-") {
			return shapeV6Range
		}
		return shapeV6Cidr
	case strings.Contains(v, "."):
		if idx := strings.Index(v, "/"); idx >= 0 {
			if isAllDigits(v[idx+1:]) {
				return shapeV4Cidr
			}
			return shapeV4Wildcard
		}
		if strings.Contains(v, "-") {
			return shapeV4Range
		}
		return shapeUnknown
	default:
		return shapeUnknown
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isV4FamilyShape(s storedShape) bool {
	return s == shapeV4Cidr || s == shapeV4Range || s == shapeV4Wildcard
}

func isV6FamilyShape(s storedShape) bool {
	return s == shapeV6Cidr || s == shapeV6Range
}

// matchStoredValue implements the per-stored-value decision tree of
// SPEC_FULL.md §4.6. negate is the row's SANEG/DANEG/SVNEG column,
// already reduced to a bool by negateColumn.
func matchStoredValue(stored string, q Query, negate, fqdnGeoMatchAll bool) bool {
	shape := classifyStoredShape(stored)

	switch {
	case q.isAllV4() && isV4FamilyShape(shape):
		return !negate
	case q.isAllV6() && isV6FamilyShape(shape):
		return !negate
	}

	switch q.Kind {
	case KindGeo:
		if shape == shapeGeo {
			matched := strings.TrimPrefix(stored, "geo:") == q.Pattern
			return matched != negate
		}
		return negate != fqdnGeoMatchAll

	case KindFQDN:
		if shape == shapeFQDN {
			matched := fqdnPatternMatches(strings.TrimPrefix(stored, "fqdn:"), q.Pattern)
			return matched != negate
		}
		return negate != fqdnGeoMatchAll

	case KindIPv4:
		switch shape {
		case shapeGeo, shapeFQDN, shapeV6Cidr, shapeV6Range:
			return negate != fqdnGeoMatchAll
		case shapeV4Range:
			r, ok := ipaddr.ParseV4Range(stored)
			if !ok {
				return negate
			}
			return ipaddr.V4HostOrPrefixInRange(q.V4, r) != negate
		case shapeV4Cidr:
			c, ok := ipaddr.ParseV4CIDR(stored)
			if !ok {
				return negate
			}
			return ipaddr.V4HostOrPrefixInCidr(q.V4, c) != negate
		case shapeV4Wildcard:
			w, ok := ipaddr.ParseV4Wildcard(stored)
			if !ok {
				return negate
			}
			return ipaddr.V4HostOrPrefixInWildcard(q.V4, w) != negate
		default:
			return negate
		}

	case KindIPv6:
		switch shape {
		case shapeGeo, shapeFQDN, shapeV4Cidr, shapeV4Range, shapeV4Wildcard:
			return negate != fqdnGeoMatchAll
		case shapeV6Range:
			r, ok := ipaddr.ParseV6Range(stored)
			if !ok {
				return negate
			}
			return ipaddr.V6HostOrPrefixInRange(q.V6, r) != negate
		case shapeV6Cidr:
			c, ok := ipaddr.ParseV6CIDR(stored)
			if !ok {
				return negate
			}
			return ipaddr.V6HostOrPrefixInCidr(q.V6, c) != negate
		default:
			return negate
		}

	default:
		return negate
	}
}

// negateColumn reduces a SANEG/DANEG/SVNEG column ("true"/"false"/"-")
// to a bool; "-" (the cross-family placeholder) behaves as not-negated.
func negateColumn(v string) bool {
	return v == "true"
}
