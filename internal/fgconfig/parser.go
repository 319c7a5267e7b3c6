// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package fgconfig

import (
	"strings"

	"grimm.is/fwpolicy/internal/store"
)

type frame struct {
	path []string
}

// Parse reads configText (SPEC_FULL.md §4.2 grammar) and populates st.
// Unrecognized stanzas are silently skipped: their edit/set/unset/next
// lines never reach a handler. Parse never fails — malformed lines are
// ignored per SPEC_FULL.md §7.
func Parse(configText string, st *store.Store) {
	registry := newRegistry()

	var stack []frame
	currentVDOM := ""
	var currentHandler StanzaHandler

	for _, line := range splitLines(configText) {
		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		switch tokens[0] {
		case "config":
			stack = append(stack, frame{path: tokens[1:]})

		case "edit":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			name := ""
			if len(tokens) > 1 {
				name = tokens[1]
			}

			if strings.Join(top.path, " ") == "vdom" {
				currentVDOM = name
				st.Domain(currentVDOM)
				currentHandler = nil
				continue
			}

			if h, ok := registry[strings.Join(top.path, " ")]; ok {
				currentHandler = h
				h.Begin(st.Domain(currentVDOM), name)
			} else {
				currentHandler = nil
			}

		case "set":
			if currentHandler == nil || len(tokens) < 2 {
				continue
			}
			currentHandler.Set(tokens[1], tokens[2:])

		case "unset":
			if currentHandler == nil || len(tokens) < 2 {
				continue
			}
			currentHandler.Unset(tokens[1])

		case "next":
			if currentHandler != nil {
				currentHandler.End()
				currentHandler = nil
			}

		case "end":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if strings.Join(top.path, " ") == "vdom" {
				currentVDOM = ""
			}
			currentHandler = nil
		}
	}
}
