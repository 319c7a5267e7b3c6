// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"grimm.is/fwpolicy/internal/flatten"
	"grimm.is/fwpolicy/internal/store"
)

// policyHandler handles the four non-multicast policy stanzas
// (`policy`, `policy6`, `policy64`, `policy46`). typeMode fixes which of
// the four type-mode lists an instance installs into.
type policyHandler struct {
	baseHandler
	typeMode store.TypeMode
}

func (h *policyHandler) End() {
	raw := flatten.RawPolicy{
		PolID:         h.field("policyid"),
		PolName:       h.field("name"),
		SrcIntf:       h.list("srcintf"),
		DstIntf:       h.list("dstintf"),
		SrcAddr:       h.list("srcaddr"),
		DstAddr:       h.list("dstaddr"),
		Service:       h.list("service"),
		Action:        h.field("action"),
		ActionSet:     h.wasSet("action"),
		Status:        h.field("status"),
		StatusSet:     h.wasSet("status"),
		SrcAddrNegate: h.field("srcaddr-negate"),
		DstAddrNegate: h.field("dstaddr-negate"),
		ServiceNegate: h.field("service-negate"),
		Schedule:      h.field("schedule"),
		Comment:       h.field("comments"),
	}
	flatten.ExpandPolicy(h.Dom, h.typeMode, raw)
}

// multicastPolicyHandler handles `multicast-policy`/`multicast-policy6`.
type multicastPolicyHandler struct {
	baseHandler
	typeMode store.TypeMode
}

func (h *multicastPolicyHandler) End() {
	raw := flatten.RawPolicy{
		PolID:       h.field("id"),
		SrcIntf:     h.list("srcintf"),
		DstIntf:     h.list("dstintf"),
		SrcAddr:     h.list("srcaddr"),
		DstAddr:     h.list("dstaddr"),
		Status:      h.field("status"),
		StatusSet:   h.wasSet("status"),
		Schedule:    "always",
		Comment:     h.field("comments"),
		Protocol:    h.field("protocol"),
		ProtocolSet: h.wasSet("protocol"),
		StartPort:   h.field("start-port"),
		EndPort:     h.field("end-port"),
	}
	flatten.ExpandPolicy(h.Dom, h.typeMode, raw)
}
