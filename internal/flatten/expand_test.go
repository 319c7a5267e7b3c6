// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package flatten

import (
	"testing"

	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/token"
)

func TestExpandPolicyDefaultsAndCartesian(t *testing.T) {
	dom := store.NewDomain("")
	raw := RawPolicy{
		PolID:   "101",
		PolName: "p1",
		SrcIntf: []string{"internal1"},
		DstIntf: []string{"wan1", "wan2"},
		SrcAddr: []string{"OBJ1"},
		DstAddr: []string{"OGRP1"},
		Service: []string{"ALL"},
	}
	ExpandPolicy(dom, store.TypeMode4to4, raw)

	rows := dom.Policies[store.TypeMode4to4]
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (1*2*1*1*1), got %d", len(rows))
	}
	if rows[0].Action != "deny" {
		t.Errorf("expected default action deny, got %s", rows[0].Action)
	}
	if rows[0].Status != "enable" {
		t.Errorf("expected default status enable, got %s", rows[0].Status)
	}
	if rows[0].SANeg != "false" || rows[0].DANeg != "false" {
		t.Errorf("expected negate defaults false, got %s/%s", rows[0].SANeg, rows[0].DANeg)
	}
	if rows[0].PolLine != 1 || rows[1].PolLine != 2 {
		t.Errorf("expected sequential POLLINE, got %d, %d", rows[0].PolLine, rows[1].PolLine)
	}
	if rows[0].Prot != "ALL" || rows[0].SPort != "ALL" {
		t.Errorf("expected unknown service to pass through verbatim, got Prot=%s SPort=%s", rows[0].Prot, rows[0].SPort)
	}
}

func TestExpandPolicyCrossFamilyForcesPlaceholders(t *testing.T) {
	dom := store.NewDomain("")
	raw := RawPolicy{
		PolName:       "p1",
		SrcIntf:       []string{"internal1"},
		DstIntf:       []string{"wan1"},
		SrcAddr:       []string{"OBJ1"},
		DstAddr:       []string{"OBJ2"},
		Service:       []string{"ALL"},
		SrcAddrNegate: "enable",
	}
	ExpandPolicy(dom, store.TypeMode4to6, raw)

	row := dom.Policies[store.TypeMode4to6][0]
	if row.PolName != "-" || row.SANeg != "-" || row.DANeg != "-" || row.SVNeg != "-" {
		t.Errorf("expected 4to6 to force name/negate placeholders, got name=%s saneg=%s daneg=%s svneg=%s",
			row.PolName, row.SANeg, row.DANeg, row.SVNeg)
	}
}

func TestExpandPolicyServiceColumnsICMP(t *testing.T) {
	dom := store.NewDomain("")
	dom.ServiceCustom["PING"] = &store.TokenSet{
		Name:       "PING",
		ProtoClass: token.ProtoClassICMP,
		Values:     []token.Token{token.New(token.KindPassThrough, "1/8/any;-")},
	}
	raw := RawPolicy{
		SrcIntf: []string{"any"}, DstIntf: []string{"any"},
		SrcAddr: []string{"all"}, DstAddr: []string{"all"},
		Service: []string{"PING"},
	}
	ExpandPolicy(dom, store.TypeMode4to4, raw)

	row := dom.Policies[store.TypeMode4to4][0]
	if row.ITpcd != "PING" {
		t.Errorf("expected ITPCD to hold the service name at the normalized stage, got %s", row.ITpcd)
	}
	if row.SPort != "-/-" || row.DPort != "-/-" || row.SDAddr != "-" {
		t.Errorf("expected ICMP service to leave port columns as -/-, got sport=%s dport=%s sdaddr=%s", row.SPort, row.DPort, row.SDAddr)
	}
}

func TestExpandMulticastPolicyProtocolColumns(t *testing.T) {
	dom := store.NewDomain("")
	raw := RawPolicy{
		SrcIntf: []string{"internal1"}, DstIntf: []string{"wan1"},
		SrcAddr: []string{"all"}, DstAddr: []string{"MCGRP"},
		Protocol: "17", StartPort: "5000", EndPort: "5010",
	}
	ExpandPolicy(dom, store.TypeMode4to4M, raw)

	row := dom.Policies[store.TypeMode4to4M][0]
	if row.Action != "accept" {
		t.Errorf("expected multicast default action accept, got %s", row.Action)
	}
	if row.DPort != "range/5000-5010" {
		t.Errorf("expected range port, got %s", row.DPort)
	}
	if row.SDAddr != "0/0" {
		t.Errorf("expected SDADDR=0/0 for udp multicast, got %s", row.SDAddr)
	}
}

func TestExpandMulticastPolicyEmptyProtocolRewritesToIP(t *testing.T) {
	dom := store.NewDomain("")
	raw := RawPolicy{
		SrcIntf: []string{"internal1"}, DstIntf: []string{"wan1"},
		SrcAddr: []string{"all"}, DstAddr: []string{"MCGRP"},
	}
	ExpandPolicy(dom, store.TypeMode6to6M, raw)

	row := dom.Policies[store.TypeMode6to6M][0]
	if row.Prot != "ip" {
		t.Errorf("expected empty protocol to rewrite to ip, got %s", row.Prot)
	}
}
