// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pipeline

import (
	"strings"
	"testing"
)

const testConfig = `
config firewall address
edit "OBJ1"
set subnet 192.168.0.1 255.255.255.255
next
edit "OBJ2"
set subnet 10.0.0.1 255.255.255.255
next
edit "OBJ3"
set subnet 10.1.1.1 255.255.255.255
next
end
config firewall addrgrp
edit "OGRP1"
set member "OBJ2" "OBJ3"
next
end
config firewall policy
edit 101
set srcintf "internal1"
set dstintf "wan2"
set srcaddr "OBJ1"
set dstaddr "OGRP1"
set action accept
set service "HTTP"
next
end
`

func TestSessionMakeListProducesListings(t *testing.T) {
	s := New(nil)
	resp := s.MakeList(MakeListRequest{ConfigText: testConfig})
	if !strings.Contains(resp.AddrList, "OBJ1") || !strings.Contains(resp.AddrList, "OGRP1") {
		t.Fatalf("expected address listing to include OBJ1 and OGRP1, got %q", resp.AddrList)
	}
	if resp.SvcList != "" {
		t.Errorf("expected no service listing for a config with no service objects, got %q", resp.SvcList)
	}
}

func TestSessionFlattenProducesTwoRowsForScenarioS1(t *testing.T) {
	s := New(nil)
	s.MakeList(MakeListRequest{ConfigText: testConfig})
	resp := s.Flatten(FlattenRequest{FlattenAddresses: true, FlattenServices: true})

	lines := strings.Split(resp.Text, "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 flattened rows, got %d: %q", len(lines), resp.Text)
	}
}

func TestSessionLookupAfterFlatten(t *testing.T) {
	// HTTP must be a defined service here: an unknown service name stays in
	// SD_ADDR after flattening, and the lookup then requires the destination
	// to lie within it, which no address does.
	const httpService = `
config firewall service custom
edit "HTTP"
set tcp-portrange 80
next
end
`
	s := New(nil)
	s.MakeList(MakeListRequest{ConfigText: httpService + testConfig})
	s.Flatten(FlattenRequest{FlattenAddresses: true, FlattenServices: true})

	resp := s.Lookup(LookupRequest{ListText: "192.168.0.1,10.0.0.1"})
	if resp.AllText == "" {
		t.Fatalf("expected a lookup match for the known source/destination pair")
	}
}

func TestSessionLookupBeforeFlattenMatchesNothing(t *testing.T) {
	s := New(nil)
	s.MakeList(MakeListRequest{ConfigText: testConfig})

	resp := s.Lookup(LookupRequest{ListText: "192.168.0.1,10.0.0.1"})
	if resp.AllText != "" {
		t.Fatalf("expected lookup-before-flatten to match nothing, got %q", resp.AllText)
	}
}
