// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"grimm.is/fwpolicy/internal/ipaddr"
	"grimm.is/fwpolicy/internal/token"
)

// serviceCustomProtoNumbers maps the three port-range protocol keys to
// their service token's leading protocol-number field.
var serviceCustomProtoNumbers = []struct {
	field string
	pn    string
}{
	{"tcp-portrange", "6"},
	{"udp-portrange", "17"},
	{"sctp-portrange", "132"},
}

// Service normalizes a `firewall service custom` edit block into its
// value tokens and protocol-class mask (SPEC_FULL.md §4.3). fieldsSet
// reports which keys were ever explicitly assigned by a `set` line,
// distinguishing "absent" (use the TCP/UDP/SCTP default) from
// "explicitly set to empty" (the "empty protocol" branch).
func Service(fields map[string]string, fieldsSet map[string]bool) ([]token.Token, token.ProtoClass) {
	protocol, wasSet := fields["protocol"], fieldsSet["protocol"]
	if !wasSet {
		protocol = "TCP/UDP/SCTP"
	}

	switch {
	case wasSet && protocol == "":
		return []token.Token{token.New(token.KindPassThrough, "undefined;-")}, token.ClassifyProtoToken("undefined")

	case protocol == "IP":
		pn := fields["protocol-number"]
		if pn == "" || pn == "0" {
			pn = "ip"
		}
		v := fmt.Sprintf("%s;-", pn)
		return []token.Token{token.New(token.KindPassThrough, v)}, token.ClassifyProtoToken(pn)

	case protocol == "ICMP":
		t, c := orAny(fields["icmptype"]), orAny(fields["icmpcode"])
		v := fmt.Sprintf("1/%s/%s;-", t, c)
		return []token.Token{token.New(token.KindPassThrough, v)}, token.ClassifyProtoToken("1")

	case protocol == "ICMP6":
		t, c := orAny(fields["icmptype"]), orAny(fields["icmpcode"])
		v := fmt.Sprintf("58/%s/%s;-", t, c)
		return []token.Token{token.New(token.KindPassThrough, v)}, token.ClassifyProtoToken("58")

	case protocol == "TCP/UDP/SCTP":
		return portRangeTokens(fields)

	default:
		v := fmt.Sprintf("%s;%s", protocol, protocol)
		return []token.Token{token.New(token.KindPassThrough, v)}, token.ProtoClassUnsupported
	}
}

func portRangeTokens(fields map[string]string) ([]token.Token, token.ProtoClass) {
	sda := computeSDA(fields)

	var values []token.Token
	for _, pr := range serviceCustomProtoNumbers {
		raw := fields[pr.field]
		if raw == "" {
			continue
		}
		seen := make(map[string]bool)
		for _, elem := range strings.Fields(raw) {
			if seen[elem] {
				continue
			}
			seen[elem] = true

			dstPart, srcPart, hasSrc := strings.Cut(elem, ":")
			dstOp := parsePortOp(dstPart)
			srcOp := "eq/any"
			if hasSrc {
				srcOp = parsePortOp(srcPart)
			}
			v := fmt.Sprintf("%s/%s/%s;%s", pr.pn, srcOp, dstOp, sda)
			values = append(values, token.New(token.KindPassThrough, v))
		}
	}

	if len(values) == 0 {
		// No port ranges were configured at all; still a well-formed
		// TCP/UDP/SCTP service with no ports specified.
		return nil, token.ProtoClassTCPUDPSCTP
	}
	return values, token.ProtoClassTCPUDPSCTP
}

func parsePortOp(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		return "eq/any"
	}
	if start, end, ok := strings.Cut(s, "-"); ok {
		a, erra := strconv.Atoi(start)
		b, errb := strconv.Atoi(end)
		if erra != nil || errb != nil {
			return "range/undefined-undefined"
		}
		return fmt.Sprintf("range/%d-%d", a, b)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return "eq/undefined"
	}
	return fmt.Sprintf("eq/%d", n)
}

func computeSDA(fields map[string]string) string {
	if fqdn := fields["fqdn"]; fqdn != "" {
		return "fqdn:" + fqdn
	}

	raw := strings.TrimSpace(fields["iprange"])
	if raw == "" || raw == "0.0.0.0" {
		return "0/0"
	}

	start, end, isRange := strings.Cut(raw, "-")
	if !isRange {
		if addr, ok := ipaddr.ParseV4(raw); ok {
			return ipaddr.V4Prefix{Addr: addr, Len: 32}.String()
		}
		return raw + "/32"
	}

	if start == end {
		if addr, ok := ipaddr.ParseV4(start); ok {
			return ipaddr.V4Prefix{Addr: addr, Len: 32}.String()
		}
		return start + "/32"
	}
	startAddr, ok1 := ipaddr.ParseV4(start)
	endAddr, ok2 := ipaddr.ParseV4(end)
	if !ok1 || !ok2 {
		return raw
	}
	return ipaddr.V4Range{Start: startAddr, End: endAddr}.String()
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
