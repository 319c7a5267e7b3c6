// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package pipeline implements the single-threaded cooperative staged
// execution model of SPEC_FULL.md §5: parse (MAKE_LIST) → normalize
// (NORMALIZE, a no-op pass-through that exists only to report the
// pre-flatten policy text — normalization already happened while parsing)
// → flatten (FLATTEN) → lookup (LOOKUP). A Runner owns the one mutable
// Store for a run; every stage is a Runner method that takes the stage's
// Request and returns its Response, grounded on the teacher's staged ConfigPipeline
// (internal/engine/pipeline.go) but built around this domain's four
// fixed stages instead of a configurable validator list.
package pipeline

import (
	"grimm.is/fwpolicy/internal/csvout"
	"grimm.is/fwpolicy/internal/fgconfig"
	"grimm.is/fwpolicy/internal/flatten"
	"grimm.is/fwpolicy/internal/logging"
	"grimm.is/fwpolicy/internal/lookup"
	"grimm.is/fwpolicy/internal/store"
)

// Stage names, used as the logging.Logger.WithStage tag.
const (
	StageMakeList  Stage = "MAKE_LIST"
	StageNormalize Stage = "NORMALIZE"
	StageFlatten   Stage = "FLATTEN"
	StageLookup    Stage = "LOOKUP"
)

// Stage identifies one of the four pipeline message types.
type Stage string

// MakeListRequest carries the raw config text for the MAKE_LIST stage.
type MakeListRequest struct {
	ConfigText string
}

// MakeListResponse reports the address/service listings produced by
// parsing (SPEC_FULL.md §5 "{MADE_LIST,addrList,svcList}").
type MakeListResponse struct {
	AddrList string
	SvcList  string
}

// NormalizeResponse carries the normalized (pre-flatten) policy text for
// every domain and type-mode (SPEC_FULL.md §5 "{NORMALIZED,text}").
type NormalizeResponse struct {
	Text string
}

// FlattenRequest carries the two independent flattener toggles.
type FlattenRequest struct {
	FlattenAddresses bool
	FlattenServices  bool
}

// FlattenResponse carries the flattened policy CSV text (SPEC_FULL.md §5
// "{FLATTENED,text}").
type FlattenResponse struct {
	Text string
}

// LookupRequest carries a lookup-list text blob and the fqdnGeoMatchAll
// knob.
type LookupRequest struct {
	ListText        string
	FQDNGeoMatchAll bool
}

// LookupResponse carries both lookup result sets (SPEC_FULL.md §5
// "{LOOKEDUP,allText,withoutIneffectualText}").
type LookupResponse struct {
	AllText                string
	WithoutIneffectualText string
}

// Runner is the one mutable store a run's stages share, threaded
// explicitly rather than held in any package-level state (SPEC_FULL.md
// §5 "no shared mutable state across tasks"). A fresh Runner must be
// created for each run; there is no incremental re-parse.
type Runner struct {
	log *logging.Logger

	store    *store.Store
	lastFlat map[flatKey][]*store.PolicyRow
}

type flatKey struct {
	domain   string
	typeMode store.TypeMode
}

// New returns an empty Runner. log may be nil, in which case
// logging.Default() is used.
func New(log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Default()
	}
	return &Runner{log: log, lastFlat: make(map[flatKey][]*store.PolicyRow)}
}

// MakeList runs the MAKE_LIST stage: parses req.ConfigText into a fresh
// store and reports the resulting address/service listings. A later call
// replaces the Runner's store wholesale, matching the "fresh parse
// replaces the store" design note.
func (s *Runner) MakeList(req MakeListRequest) MakeListResponse {
	stageLog := s.log.WithStage(string(StageMakeList))
	s.store = store.New()
	fgconfig.Parse(req.ConfigText, s.store)
	s.lastFlat = make(map[flatKey][]*store.PolicyRow)

	var addrBlocks, svcBlocks []string
	for _, name := range s.store.DomainNames() {
		dom := s.store.Domains[name]
		addrBlocks = append(addrBlocks, csvout.FormatListingsFiltered(dom, addressTags))
		svcBlocks = append(svcBlocks, csvout.FormatListingsFiltered(dom, serviceTags))
	}
	stageLog.Info("parsed configuration", "vdoms", len(s.store.DomainNames()))

	return MakeListResponse{
		AddrList: joinCRLF(addrBlocks),
		SvcList:  joinCRLF(svcBlocks),
	}
}

var addressTags = map[store.TableTag]bool{
	store.TableAddress4: true, store.TableMulticastAddress4: true, store.TableAddrgrp4: true,
	store.TableAddress6: true, store.TableMulticastAddress6: true, store.TableAddrgrp6: true,
}

var serviceTags = map[store.TableTag]bool{
	store.TableServiceCustom: true, store.TableServiceGroup: true,
}

// Normalize runs the (no-op) NORMALIZE stage: the object tables and
// policy rows are already canonical once MAKE_LIST returns, so this
// stage only renders the pre-flatten policy CSV for every domain and
// type-mode, for a caller that wants to inspect normalized output before
// choosing flatten toggles.
func (s *Runner) Normalize() NormalizeResponse {
	stageLog := s.log.WithStage(string(StageNormalize))
	if s.store == nil {
		return NormalizeResponse{}
	}

	var blocks []string
	for _, name := range s.store.DomainNames() {
		dom := s.store.Domains[name]
		for _, tm := range store.AllTypeModes {
			rows := dom.Policies[tm]
			if len(rows) == 0 {
				continue
			}
			blocks = append(blocks, csvout.FormatPolicyRows(rows))
		}
	}
	stageLog.Info("normalized policy rows rendered")
	return NormalizeResponse{Text: joinCRLF(blocks)}
}

// Flatten runs the FLATTEN stage across every domain and type-mode,
// caching the per-(domain,type-mode) result for the subsequent LOOKUP
// stage.
func (s *Runner) Flatten(req FlattenRequest) FlattenResponse {
	stageLog := s.log.WithStage(string(StageFlatten))
	if s.store == nil {
		return FlattenResponse{}
	}

	var blocks []string
	for _, name := range s.store.DomainNames() {
		dom := s.store.Domains[name]
		for _, tm := range store.AllTypeModes {
			if len(dom.Policies[tm]) == 0 {
				continue
			}
			rows := flatten.FlattenPolicies(dom, tm, req.FlattenAddresses, req.FlattenServices)
			s.lastFlat[flatKey{domain: name, typeMode: tm}] = rows
			blocks = append(blocks, csvout.FormatPolicyRows(rows))
		}
	}
	stageLog.Info("flattened policy rows rendered", "addresses", req.FlattenAddresses, "services", req.FlattenServices)
	return FlattenResponse{Text: joinCRLF(blocks)}
}

// Lookup runs the LOOKUP stage against the flattened rows cached by the
// most recent Flatten call. Per §5, if Lookup is posted before Flatten
// the cache is empty and every query line matches nothing.
func (s *Runner) Lookup(req LookupRequest) LookupResponse {
	stageLog := s.log.WithStage(string(StageLookup))
	if s.store == nil {
		return LookupResponse{}
	}

	var allBlocks, withoutBlocks []string
	for _, name := range s.store.DomainNames() {
		for _, tm := range store.AllTypeModes {
			rows := s.lastFlat[flatKey{domain: name, typeMode: tm}]
			if len(rows) == 0 {
				continue
			}
			all, without := lookup.Run(rows, req.ListText, req.FQDNGeoMatchAll)
			allBlocks = append(allBlocks, formatMatches(all))
			withoutBlocks = append(withoutBlocks, formatMatches(without))
		}
	}
	stageLog.Info("lookup evaluated")
	return LookupResponse{
		AllText:                joinCRLF(allBlocks),
		WithoutIneffectualText: joinCRLF(withoutBlocks),
	}
}

func formatMatches(matches []lookup.Match) string {
	prefixes := make([]string, len(matches))
	rows := make([]*store.PolicyRow, len(matches))
	for i, m := range matches {
		prefixes[i] = m.Prefix
		rows[i] = m.Row
	}
	return csvout.FormatLookupRows(prefixes, rows)
}

// joinCRLF joins non-empty blocks with CRLF, dropping any empty ones so
// a domain/type-mode with no rows doesn't leave a blank line in the
// middle of the output.
func joinCRLF(blocks []string) string {
	var nonEmpty []string
	for _, b := range blocks {
		if b != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	out := ""
	for i, b := range nonEmpty {
		if i > 0 {
			out += "\r\n"
		}
		out += b
	}
	return out
}
