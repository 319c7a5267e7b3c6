// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"grimm.is/fwpolicy/internal/normalize"
	"grimm.is/fwpolicy/internal/store"
)

// serviceCustomHandler handles `config firewall service custom`.
type serviceCustomHandler struct{ baseHandler }

func (h *serviceCustomHandler) End() {
	values, mask := normalize.Service(h.fields, h.fieldsSet)
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.ProtoClass = mask
	ts.AddAll(values)
	h.Dom.ServiceCustom[h.EditName] = ts
}

// serviceGroupHandler handles `config firewall service group`.
type serviceGroupHandler struct{ baseHandler }

func (h *serviceGroupHandler) End() {
	values, mask := flattenGroup(h.list("member"), h.Dom.ServiceCustom, h.Dom.ServiceGroup)
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.ProtoClass = mask
	ts.AddAll(values)
	h.Dom.ServiceGroup[h.EditName] = ts
}
