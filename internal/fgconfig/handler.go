// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"strings"

	"grimm.is/fwpolicy/internal/store"
)

// StanzaHandler is the three-method contract SPEC_FULL.md §4.3 assigns to
// every recognized stanza (SPEC_FULL.md §9 "Dynamic dispatch of stanza
// handlers"): begin initializes a fresh in-progress record, set/unset
// assign or clear recognized fields, and end runs the normalizer and
// installs the result into the domain record captured at begin. One
// handler instance per stanza type is reused across every edit block of
// that type within a parse pass.
type StanzaHandler interface {
	Begin(dom *store.Domain, editName string)
	Set(key string, tokens []string)
	Unset(key string)
	End()
}

// baseHandler accumulates the raw `set key value...` fields for one
// in-progress edit block. fields holds each key's value tokens rejoined
// by a single space (adequate for scalar and multi-field values whose
// components never contain embedded spaces); fieldLists preserves the
// original token slice for keys whose values are themselves a list of
// possibly-quoted, space-containing names (e.g. "member").
type baseHandler struct {
	Dom      *store.Domain
	EditName string

	fields     map[string]string
	fieldsSet  map[string]bool
	fieldLists map[string][]string
}

func (h *baseHandler) Begin(dom *store.Domain, editName string) {
	h.Dom = dom
	h.EditName = editName
	h.fields = make(map[string]string)
	h.fieldsSet = make(map[string]bool)
	h.fieldLists = make(map[string][]string)
}

func (h *baseHandler) Set(key string, tokens []string) {
	h.fields[key] = strings.Join(tokens, " ")
	h.fieldsSet[key] = true
	h.fieldLists[key] = append([]string(nil), tokens...)
}

func (h *baseHandler) Unset(key string) {
	delete(h.fields, key)
	delete(h.fieldLists, key)
	h.fieldsSet[key] = false
}

// field returns the joined value for key, or "" if never set.
func (h *baseHandler) field(key string) string {
	return h.fields[key]
}

// list returns the raw token list recorded for key, preserving
// quoted-and-spaced entries verbatim.
func (h *baseHandler) list(key string) []string {
	return h.fieldLists[key]
}

// wasSet reports whether key was ever assigned by an explicit `set`
// line, distinguishing "absent" from "set to the empty string".
func (h *baseHandler) wasSet(key string) bool {
	return h.fieldsSet[key]
}
