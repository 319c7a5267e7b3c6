// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package store

import (
	"testing"

	"grimm.is/fwpolicy/internal/token"
)

func TestTokenSetDedupPreservesOrder(t *testing.T) {
	ts := &TokenSet{Name: "OGRP1"}
	ts.Add(token.New(token.KindCidrV4, "10.0.0.1/32"))
	ts.Add(token.New(token.KindCidrV4, "10.1.1.1/32"))
	ts.Add(token.New(token.KindCidrV4, "10.0.0.1/32")) // duplicate, must be dropped

	got := ts.Strings()
	want := []string{"10.0.0.1/32", "10.1.1.1/32"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDomainLookupByTag(t *testing.T) {
	d := NewDomain("")
	d.Address4["OBJ1"] = &TokenSet{Name: "OBJ1", Values: []token.Token{token.New(token.KindCidrV4, "192.168.0.1/32")}}

	ts, ok := d.Lookup(TableAddress4, "OBJ1")
	if !ok || ts.Strings()[0] != "192.168.0.1/32" {
		t.Fatalf("expected to find OBJ1 in address4 table")
	}

	if _, ok := d.Lookup(TableAddress4, "MISSING"); ok {
		t.Fatalf("expected MISSING to be absent")
	}
	if _, ok := d.Lookup(TableTag("bogus"), "OBJ1"); ok {
		t.Fatalf("expected an unknown table tag to return false")
	}
}

func TestStoreDomainOrder(t *testing.T) {
	s := New()
	s.Domain("root")
	s.Domain("branch")
	s.Domain("root") // re-fetch, should not duplicate in order

	got := s.DomainNames()
	want := []string{"root", "branch"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPolicyRowColumns(t *testing.T) {
	row := PolicyRow{
		Dom: "", SIntf: "internal1", DIntf: "wan2", PolType: "4to4", PolID: "101",
		PolName: "-", PolLine: 1, Action: "accept", Prot: "HTTP",
		SAddr: "OBJ1", SPort: "-/-", DAddr: "OGRP1", DPort: "-/-", SDAddr: "-",
		ITpcd: "-/-", SANeg: "false", DANeg: "false", SVNeg: "false",
		Status: "enable", Log: "-", Schedule: "always", Comment: "",
	}
	cols := row.Columns()
	if len(cols) != 22 {
		t.Fatalf("expected 22 columns, got %d", len(cols))
	}
	if cols[6] != "1" {
		t.Errorf("expected POLLINE column to be \"1\", got %q", cols[6])
	}
	if cols[19] != "-" {
		t.Errorf("expected LOG column to be literal \"-\", got %q", cols[19])
	}
}
