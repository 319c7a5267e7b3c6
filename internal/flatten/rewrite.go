// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package flatten

import (
	"strings"

	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/token"
)

// FlattenPolicies applies the two independent flattener toggles of
// SPEC_FULL.md §4.5 to every normalized row of typeMode, returning the
// (possibly multiplied) result. Neither toggle mutates dom.Policies.
func FlattenPolicies(dom *store.Domain, typeMode store.TypeMode, flattenAddresses, flattenServices bool) []*store.PolicyRow {
	rows := dom.Policies[typeMode]
	current := make([]*store.PolicyRow, len(rows))
	copy(current, rows)

	if flattenAddresses {
		var next []*store.PolicyRow
		for _, r := range current {
			next = append(next, rewriteAddresses(dom, r)...)
		}
		current = next
	}
	if flattenServices {
		var next []*store.PolicyRow
		for _, r := range current {
			next = append(next, rewriteServices(dom, r)...)
		}
		current = next
	}
	return current
}

// addressTables returns the priority-ordered lookup tables for one side
// of a policy row, per the POLTYPE-driven family rule of SPEC_FULL.md
// §4.5.
func addressTables(dom *store.Domain, typeMode store.TypeMode, forSource bool) []map[string]*store.TokenSet {
	s := string(typeMode)

	var family byte
	if forSource {
		family = s[0]
	} else {
		idx := strings.Index(s, "to")
		family = s[idx+2]
	}

	if forSource {
		if family == '4' {
			return []map[string]*store.TokenSet{dom.Address4, dom.Addrgrp4}
		}
		return []map[string]*store.TokenSet{dom.Address6, dom.Addrgrp6}
	}

	if typeMode.IsMulticast() {
		if family == '4' {
			return []map[string]*store.TokenSet{dom.MulticastAddress4}
		}
		return []map[string]*store.TokenSet{dom.MulticastAddress6}
	}
	if family == '4' {
		return []map[string]*store.TokenSet{dom.Address4, dom.Addrgrp4}
	}
	return []map[string]*store.TokenSet{dom.Address6, dom.Addrgrp6}
}

func lookupAddressValues(name string, tables ...map[string]*store.TokenSet) []string {
	for _, t := range tables {
		if ts, ok := t[name]; ok {
			return ts.Strings()
		}
	}
	return []string{name}
}

func rewriteAddresses(dom *store.Domain, row *store.PolicyRow) []*store.PolicyRow {
	typeMode := store.TypeMode(row.PolType)
	srcValues := lookupAddressValues(row.SAddr, addressTables(dom, typeMode, true)...)
	dstValues := lookupAddressValues(row.DAddr, addressTables(dom, typeMode, false)...)

	out := make([]*store.PolicyRow, 0, len(srcValues)*len(dstValues))
	for _, sv := range srcValues {
		for _, dv := range dstValues {
			clone := *row
			clone.SAddr = sv
			clone.DAddr = dv
			out = append(out, &clone)
		}
	}
	return out
}

func rewriteServices(dom *store.Domain, row *store.PolicyRow) []*store.PolicyRow {
	ts, ok := lookupService(dom, row.Prot)
	if !ok {
		return []*store.PolicyRow{row}
	}

	out := make([]*store.PolicyRow, 0, len(ts.Values))
	for _, v := range ts.Strings() {
		clone := *row
		fillServiceValue(&clone, v)
		out = append(out, &clone)
	}
	return out
}

// fillServiceValue implements the "service expansion" column fill of
// SPEC_FULL.md §4.5 for one flattened service token PROTO[/...];SDA.
func fillServiceValue(row *store.PolicyRow, value string) {
	head, sda, hasSDA := strings.Cut(value, ";")
	if !hasSDA {
		sda = "-"
	}
	parts := strings.Split(head, "/")
	pn := parts[0]
	class := token.ClassifyProtoToken(pn)

	switch {
	case class == token.ProtoClassICMP && len(parts) == 3:
		row.Prot = pn
		row.SPort, row.DPort = "-/-", "-/-"
		row.ITpcd = parts[1] + "/" + parts[2]
		row.SDAddr = "-"

	case class == token.ProtoClassTCPUDPSCTP && len(parts) == 5:
		row.Prot = pn
		row.SPort = parts[1] + "/" + parts[2]
		row.DPort = parts[3] + "/" + parts[4]
		row.SDAddr = sda
		row.ITpcd = "-/-"

	case class == token.ProtoClassIP && len(parts) == 1:
		row.Prot = pn
		row.SPort, row.DPort = "-/-", "-/-"
		row.ITpcd = "-/-"
		row.SDAddr = "-"

	default:
		row.Prot = value
		row.SPort, row.DPort = value, value
		row.ITpcd = value
		row.SDAddr = "-"
	}
}
