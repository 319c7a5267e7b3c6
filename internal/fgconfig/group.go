// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"grimm.is/fwpolicy/internal/store"
	"grimm.is/fwpolicy/internal/token"
)

// flattenGroup resolves a `member` list against a priority-ordered list
// of same-family tables (SPEC_FULL.md §4.3 "Group flatteners"). A member
// name is looked up in the first table that contains it; its stored
// values are appended to the result, de-duplicated against everything
// already collected, and its protocol-class mask (if any) is OR'd into
// the returned mask. A member that names nothing in any table —
// including a forward reference to a group not yet installed —
// contributes nothing.
func flattenGroup(members []string, tables ...map[string]*store.TokenSet) ([]token.Token, token.ProtoClass) {
	var values []token.Token
	var mask token.ProtoClass
	seen := make(map[string]bool)

	for _, name := range members {
		for _, table := range tables {
			ts, ok := table[name]
			if !ok {
				continue
			}
			mask |= ts.ProtoClass
			for _, v := range ts.Values {
				if seen[v.Value] {
					continue
				}
				seen[v.Value] = true
				values = append(values, v)
			}
			break
		}
	}
	return values, mask
}

// addrgrp4Handler handles `config firewall addrgrp`.
type addrgrp4Handler struct{ baseHandler }

func (h *addrgrp4Handler) End() {
	values, _ := flattenGroup(h.list("member"), h.Dom.Address4, h.Dom.Addrgrp4)
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.AddAll(values)
	h.Dom.Addrgrp4[h.EditName] = ts
}

// addrgrp6Handler handles `config firewall addrgrp6`.
type addrgrp6Handler struct{ baseHandler }

func (h *addrgrp6Handler) End() {
	values, _ := flattenGroup(h.list("member"), h.Dom.Address6, h.Dom.Addrgrp6)
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.AddAll(values)
	h.Dom.Addrgrp6[h.EditName] = ts
}
