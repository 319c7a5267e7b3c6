// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"grimm.is/fwpolicy/internal/normalize"
	"grimm.is/fwpolicy/internal/store"
)

// address4Handler handles `config firewall address`.
type address4Handler struct{ baseHandler }

func (h *address4Handler) End() {
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.Add(normalize.V4Address(h.fields))
	h.Dom.Address4[h.EditName] = ts
}

// address6Handler handles `config firewall address6`.
type address6Handler struct{ baseHandler }

func (h *address6Handler) End() {
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.Add(normalize.V6Address(h.fields))
	h.Dom.Address6[h.EditName] = ts
}

// multicastAddress4Handler handles `config firewall multicast-address`.
type multicastAddress4Handler struct{ baseHandler }

func (h *multicastAddress4Handler) End() {
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.Add(normalize.MulticastV4Address(h.fields))
	h.Dom.MulticastAddress4[h.EditName] = ts
}

// multicastAddress6Handler handles `config firewall multicast-address6`.
type multicastAddress6Handler struct{ baseHandler }

func (h *multicastAddress6Handler) End() {
	ts := store.NewTokenSet(h.EditName, h.field("comment"))
	ts.Add(normalize.MulticastV6Address(h.fields))
	h.Dom.MulticastAddress6[h.EditName] = ts
}
