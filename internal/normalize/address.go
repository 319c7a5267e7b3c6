// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package normalize converts the raw `set key value` fields a stanza
// handler accumulates for one address/service/multicast-address object
// into the canonical token forms of SPEC_FULL.md §3/§4.3. Every function
// here is pure: given the same fields map it always produces the same
// token, never failing — unparseable input degrades to the Undefined
// token rather than returning an error (SPEC_FULL.md §7).
package normalize

import (
	"strings"

	"grimm.is/fwpolicy/internal/ipaddr"
	"grimm.is/fwpolicy/internal/token"
)

// V4Address normalizes a `firewall address` edit block. fields holds the
// raw set values keyed by their FortiGate key name (e.g. "subnet",
// "start-ip", "wildcard", "type"). typ defaults to "ipmask" when absent.
func V4Address(fields map[string]string) token.Token {
	typ := fields["type"]
	if typ == "" {
		typ = "ipmask"
	}

	switch typ {
	case "ipmask":
		subnet := fields["subnet"]
		addrStr, maskStr := splitTwoFields(subnet, "0.0.0.0", "255.255.255.255")
		addr, ok1 := ipaddr.ParseV4(addrStr)
		mask, ok2 := ipaddr.ParseV4(maskStr)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		prefixLen, ok := ipaddr.MaskToPrefixLenV4(mask)
		if !ok {
			return token.UndefinedToken()
		}
		return token.New(token.KindCidrV4, ipaddr.V4Prefix{Addr: addr, Len: prefixLen}.String())

	case "iprange":
		start := orDefault(fields["start-ip"], "0.0.0.0")
		end := orDefault(fields["end-ip"], "0.0.0.0")
		startAddr, ok1 := ipaddr.ParseV4(start)
		endAddr, ok2 := ipaddr.ParseV4(end)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		return token.New(token.KindRangeV4, ipaddr.V4Range{Start: startAddr, End: endAddr}.String())

	case "wildcard":
		raw := orDefault(fields["wildcard"], "0.0.0.0 0.0.0.0")
		addrStr, maskStr := splitTwoFields(raw, "0.0.0.0", "0.0.0.0")
		addr, ok1 := ipaddr.ParseV4(addrStr)
		mask, ok2 := ipaddr.ParseV4(maskStr)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		return token.New(token.KindWildcardV4, ipaddr.V4Wildcard{Addr: addr, Mask: mask}.String())

	case "fqdn", "wildcard-fqdn":
		pattern := fields["fqdn"]
		if pattern == "" {
			return token.UndefinedToken()
		}
		return token.New(token.KindFqdn, "fqdn:"+pattern)

	case "geography":
		code := fields["country"]
		if code == "" {
			return token.UndefinedToken()
		}
		return token.New(token.KindGeo, "geo:"+code)

	default:
		return token.UndefinedToken()
	}
}

// V6Address normalizes a `firewall address6` edit block. typ defaults to
// "ipprefix" when absent.
func V6Address(fields map[string]string) token.Token {
	typ := fields["type"]
	if typ == "" {
		typ = "ipprefix"
	}

	switch typ {
	case "ipprefix":
		raw := orDefault(fields["ip6"], "::/0")
		p, ok := ipaddr.ParseV6CIDR(raw)
		if !ok {
			return token.UndefinedToken()
		}
		return token.New(token.KindCidrV6, p.String())

	case "iprange":
		start := orDefault(fields["start-ip"], "::")
		end := orDefault(fields["end-ip"], "::")
		startAddr, ok1 := ipaddr.ParseV6(start)
		endAddr, ok2 := ipaddr.ParseV6(end)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		return token.New(token.KindRangeV6, ipaddr.V6Range{Start: startAddr, End: endAddr}.String())

	case "fqdn":
		pattern := fields["fqdn"]
		if pattern == "" {
			return token.UndefinedToken()
		}
		return token.New(token.KindFqdn, "fqdn:"+pattern)

	default:
		return token.UndefinedToken()
	}
}

// MulticastV4Address normalizes a `firewall multicast-address` edit
// block. typ defaults to "multicastrange".
func MulticastV4Address(fields map[string]string) token.Token {
	typ := fields["type"]
	if typ == "" {
		typ = "multicastrange"
	}

	switch typ {
	case "broadcastmask":
		subnet := fields["subnet"]
		addrStr, maskStr := splitTwoFields(subnet, "0.0.0.0", "255.255.255.255")
		addr, ok1 := ipaddr.ParseV4(addrStr)
		mask, ok2 := ipaddr.ParseV4(maskStr)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		prefixLen, ok := ipaddr.MaskToPrefixLenV4(mask)
		if !ok {
			return token.UndefinedToken()
		}
		return token.New(token.KindCidrV4, ipaddr.V4Prefix{Addr: addr, Len: prefixLen}.String())

	case "multicastrange":
		start := orDefault(fields["start-ip"], "0.0.0.0")
		end := orDefault(fields["end-ip"], "0.0.0.0")
		startAddr, ok1 := ipaddr.ParseV4(start)
		endAddr, ok2 := ipaddr.ParseV4(end)
		if !ok1 || !ok2 {
			return token.UndefinedToken()
		}
		return token.New(token.KindRangeV4, ipaddr.V4Range{Start: startAddr, End: endAddr}.String())

	default:
		return token.UndefinedToken()
	}
}

// MulticastV6Address normalizes a `firewall multicast-address6` edit
// block: a single ip6-prefix value, defaulting to "::/0".
func MulticastV6Address(fields map[string]string) token.Token {
	raw := orDefault(fields["ip6"], "::/0")
	p, ok := ipaddr.ParseV6CIDR(raw)
	if !ok {
		return token.UndefinedToken()
	}
	return token.New(token.KindCidrV6, p.String())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// splitTwoFields splits a "set subnet A.B.C.D M.M.M.M" style value on
// whitespace into its address and mask components, substituting defaults
// for whichever side is missing.
func splitTwoFields(raw, defAddr, defMask string) (string, string) {
	fields := strings.Fields(raw)
	addr, mask := defAddr, defMask
	if len(fields) > 0 && fields[0] != "" {
		addr = fields[0]
	}
	if len(fields) > 1 && fields[1] != "" {
		mask = fields[1]
	}
	return addr, mask
}
