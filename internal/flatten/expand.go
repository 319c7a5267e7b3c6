// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package flatten implements the policy expander (SPEC_FULL.md §4.4) and
// the policy flattener (§4.5): the Cartesian-product row emission that
// turns one accumulated policy edit into normalized rows, and the later
// address/service rewrite pass that replaces named columns with leaf
// values.
package flatten

import (
	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/token"
)

// RawPolicy is the field set a policy stanza handler accumulates across
// its `set` lines before calling ExpandPolicy at `next`.
type RawPolicy struct {
	PolID   string
	PolName string

	SrcIntf []string
	DstIntf []string
	SrcAddr []string
	DstAddr []string
	Service []string // non-multicast only

	Action    string
	ActionSet bool
	Status    string
	StatusSet bool

	SrcAddrNegate string // "enable"/"disable"/missing
	DstAddrNegate string
	ServiceNegate string

	Schedule string
	Comment  string

	// Multicast-only: the policy's scalar protocol/port spec.
	Protocol    string
	ProtocolSet bool
	StartPort   string
	EndPort     string
}

// ExpandPolicy normalizes one accumulated policy record into its
// Cartesian-product rows and appends them to dom's list for typeMode,
// assigning each row the next sequential POLLINE for that list.
func ExpandPolicy(dom *store.Domain, typeMode store.TypeMode, raw RawPolicy) {
	if typeMode.IsMulticast() {
		expandMulticastPolicy(dom, typeMode, raw)
		return
	}
	expandPolicy(dom, typeMode, raw)
}

func negateBool(v string) string {
	if v == "enable" {
		return "true"
	}
	return "false"
}

func expandPolicy(dom *store.Domain, typeMode store.TypeMode, raw RawPolicy) {
	action := raw.Action
	if !raw.ActionSet || action == "" {
		action = "deny"
	}
	status := raw.Status
	if !raw.StatusSet || status == "" {
		status = "enable"
	}

	name := raw.PolName
	if name == "" {
		name = "-"
	}
	saNeg, daNeg, svNeg := negateBool(raw.SrcAddrNegate), negateBool(raw.DstAddrNegate), negateBool(raw.ServiceNegate)

	// 4to6/6to4 cross-family policies force name and negation columns to
	// the "-" placeholder regardless of the accumulated fields.
	if typeMode == store.TypeMode4to6 || typeMode == store.TypeMode6to4 {
		name, saNeg, daNeg, svNeg = "-", "-", "-", "-"
	}

	polID := raw.PolID
	if polID == "" {
		polID = "-"
	}

	srcIntfs := orDash(raw.SrcIntf)
	dstIntfs := orDash(raw.DstIntf)
	srcAddrs := orDash(raw.SrcAddr)
	dstAddrs := orDash(raw.DstAddr)
	services := orDash(raw.Service)

	for _, si := range srcIntfs {
		for _, di := range dstIntfs {
			for _, sa := range srcAddrs {
				for _, da := range dstAddrs {
					for _, sv := range services {
						row := &store.PolicyRow{
							Dom: dom.Name, SIntf: si, DIntf: di,
							PolType: string(typeMode), PolID: polID, PolName: name,
							Action: action, SAddr: sa, DAddr: da,
							SANeg: saNeg, DANeg: daNeg, SVNeg: svNeg,
							Status: status, Log: "-", Schedule: orDashScalar(raw.Schedule),
							Comment: raw.Comment,
						}
						fillServiceColumns(dom, row, sv)
						appendRow(dom, typeMode, row)
					}
				}
			}
		}
	}
}

// fillServiceColumns implements the "per-service column fill
// (non-multicast)" rule of SPEC_FULL.md §4.4.
func fillServiceColumns(dom *store.Domain, row *store.PolicyRow, serviceName string) {
	row.Prot = serviceName

	ts, ok := lookupService(dom, serviceName)
	if !ok {
		row.SPort, row.DPort, row.SDAddr, row.ITpcd = serviceName, serviceName, serviceName, serviceName
		return
	}

	if ts.ProtoClass.Has(token.ProtoClassICMP) || ts.ProtoClass.Has(token.ProtoClassUnsupported) {
		row.ITpcd = serviceName
	} else {
		row.ITpcd = "-/-"
	}

	if ts.ProtoClass.Has(token.ProtoClassTCPUDPSCTP) || ts.ProtoClass.Has(token.ProtoClassUnsupported) {
		row.SPort, row.DPort, row.SDAddr = serviceName, serviceName, serviceName
	} else {
		row.SPort, row.DPort = "-/-", "-/-"
		row.SDAddr = "-"
	}
}

func lookupService(dom *store.Domain, name string) (*store.TokenSet, bool) {
	if ts, ok := dom.ServiceCustom[name]; ok {
		return ts, true
	}
	if ts, ok := dom.ServiceGroup[name]; ok {
		return ts, true
	}
	return nil, false
}

func expandMulticastPolicy(dom *store.Domain, typeMode store.TypeMode, raw RawPolicy) {
	polID := raw.PolID
	if polID == "" {
		polID = "-"
	}
	status := raw.Status
	if !raw.StatusSet || status == "" {
		status = "enable"
	}

	prot, sport, dport, sdaddr, itpcd := multicastProtocolColumns(raw)

	srcIntfs := orDash(raw.SrcIntf)
	dstIntfs := orDash(raw.DstIntf)
	srcAddrs := orDash(raw.SrcAddr)
	dstAddrs := orDash(raw.DstAddr)

	for _, si := range srcIntfs {
		for _, di := range dstIntfs {
			for _, sa := range srcAddrs {
				for _, da := range dstAddrs {
					row := &store.PolicyRow{
						Dom: dom.Name, SIntf: si, DIntf: di,
						PolType: string(typeMode), PolID: polID, PolName: "-",
						Action: "accept", Prot: prot, SAddr: sa, DAddr: da,
						SPort: sport, DPort: dport, SDAddr: sdaddr, ITpcd: itpcd,
						SANeg: "-", DANeg: "-", SVNeg: "-",
						Status: status, Log: "-", Schedule: orDashScalar(raw.Schedule),
						Comment: raw.Comment,
					}
					appendRow(dom, typeMode, row)
				}
			}
		}
	}
}

// multicastProtocolColumns implements the "per-policy columns
// (multicast)" rule of SPEC_FULL.md §4.4: the protocol number is
// interpreted directly rather than looked up in a service table.
func multicastProtocolColumns(raw RawPolicy) (prot, sport, dport, sdaddr, itpcd string) {
	switch raw.Protocol {
	case "1", "58":
		return raw.Protocol, "-/-", "-/-", "-", "any/any"
	case "6", "17", "132":
		d := "eq/any"
		switch {
		case raw.StartPort == "":
		case raw.EndPort == "":
			d = "eq/" + raw.StartPort
		default:
			d = "range/" + raw.StartPort + "-" + raw.EndPort
		}
		return raw.Protocol, "eq/any", d, "0/0", "-/-"
	case "", "0":
		return "ip", "-/-", "-/-", "-", "-/-"
	default:
		return raw.Protocol, raw.Protocol, raw.Protocol, "-", raw.Protocol
	}
}

func appendRow(dom *store.Domain, typeMode store.TypeMode, row *store.PolicyRow) {
	row.PolLine = len(dom.Policies[typeMode]) + 1
	dom.Policies[typeMode] = append(dom.Policies[typeMode], row)
}

func orDash(vs []string) []string {
	if len(vs) == 0 {
		return []string{"-"}
	}
	return vs
}

func orDashScalar(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
