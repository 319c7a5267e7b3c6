// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import "grimm.is/fwpolicy/internal/store"

// newRegistry builds the stanza-path → handler lookup table of
// SPEC_FULL.md §4.2. One handler instance per stanza type is created and
// reused across every edit block of that type within a single Parse
// call; Begin resets its in-progress state for each new edit.
func newRegistry() map[string]StanzaHandler {
	return map[string]StanzaHandler{
		"firewall address":            &address4Handler{},
		"firewall address6":           &address6Handler{},
		"firewall addrgrp":            &addrgrp4Handler{},
		"firewall addrgrp6":           &addrgrp6Handler{},
		"firewall multicast-address":  &multicastAddress4Handler{},
		"firewall multicast-address6": &multicastAddress6Handler{},
		"firewall service custom":     &serviceCustomHandler{},
		"firewall service group":      &serviceGroupHandler{},
		"firewall policy":             &policyHandler{typeMode: store.TypeMode4to4},
		"firewall policy6":            &policyHandler{typeMode: store.TypeMode6to6},
		"firewall policy64":           &policyHandler{typeMode: store.TypeMode6to4},
		"firewall policy46":           &policyHandler{typeMode: store.TypeMode4to6},
		"firewall multicast-policy":   &multicastPolicyHandler{typeMode: store.TypeMode4to4M},
		"firewall multicast-policy6":  &multicastPolicyHandler{typeMode: store.TypeMode6to6M},
	}
}
