// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package api exposes the pipeline's MAKE_LIST/NORMALIZE/FLATTEN/LOOKUP
// stages as a small JSON/HTTP surface, grounded on the teacher's
// dns_blocklist API handler shape
// (internal/services/ebpf/dns_blocklist/api.go): a struct wrapping the
// underlying service, a RegisterRoutes(router *mux.Router) method, and
// JSON request/response helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"grimm.is/fwpolicy/internal/auth"
	"grimm.is/fwpolicy/internal/logging"
	"grimm.is/fwpolicy/internal/lookup"
	"grimm.is/fwpolicy/internal/pipeline"
	"grimm.is/fwpolicy/internal/validation"
)

// API handles the HTTP surface described in SPEC_FULL.md §4.8.
type API struct {
	log     *logging.Logger
	tokens  *auth.Store // nil means auth is disabled
	require bool
	metrics *Metrics
}

// New returns an API. tokens may be nil (no bearer-token auth configured).
// require forces a token even when tokens is empty, matching
// ServerSettings.RequireAuth. metrics may be nil, in which case stage
// timings and counters are simply not recorded.
func New(log *logging.Logger, tokens *auth.Store, require bool, metrics *Metrics) *API {
	if log == nil {
		log = logging.Default()
	}
	return &API{log: log, tokens: tokens, require: require, metrics: metrics}
}

// RegisterRoutes wires the job, health, and metrics endpoints onto router.
func (a *API) RegisterRoutes(router *mux.Router) {
	router.Handle("/v1/jobs", a.requireAuth(http.HandlerFunc(a.handleJob))).Methods(http.MethodPost)
	router.HandleFunc("/v1/healthz", a.handleHealthz).Methods(http.MethodGet)
	router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
}

// jobRequest is the body of POST /v1/jobs.
type jobRequest struct {
	Config           string `json:"config"`
	ListText         string `json:"listText"`
	FlattenAddresses bool   `json:"flattenAddresses"`
	FlattenServices  bool   `json:"flattenServices"`
	FQDNGeoMatchAll  bool   `json:"fqdnGeoMatchAll"`
}

// jobResponse mirrors the four pipeline stage outputs a single job posts
// through in sequence.
type jobResponse struct {
	JobID                    string `json:"jobId"`
	AddrList                 string `json:"addrList"`
	SvcList                  string `json:"svcList"`
	Normalized               string `json:"normalized"`
	Flattened                string `json:"flattened"`
	LookupAll                string `json:"lookupAll"`
	LookupWithoutIneffectual string `json:"lookupWithoutIneffectual"`
}

func (a *API) handleJob(w http.ResponseWriter, r *http.Request) {
	jobID := uuid.NewString()
	jobLog := a.log.WithJob(jobID)

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jobLog.Warn("rejected malformed job request", "error", validation.SanitizeString(err.Error()))
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	run := pipeline.New(jobLog)
	ctx := r.Context()

	var made pipeline.MakeListResponse
	if !a.runStage(ctx, w, "MAKE_LIST", func() {
		made = run.MakeList(pipeline.MakeListRequest{ConfigText: req.Config})
		a.metrics.AddStanzasParsed(countStanzas(req.Config))
	}) {
		return
	}

	var normalized pipeline.NormalizeResponse
	if !a.runStage(ctx, w, "NORMALIZE", func() {
		normalized = run.Normalize()
	}) {
		return
	}

	var flattened pipeline.FlattenResponse
	if !a.runStage(ctx, w, "FLATTEN", func() {
		flattened = run.Flatten(pipeline.FlattenRequest{
			FlattenAddresses: req.FlattenAddresses,
			FlattenServices:  req.FlattenServices,
		})
		a.metrics.AddRowsEmitted(countCSVLines(flattened.Text))
	}) {
		return
	}

	var looked pipeline.LookupResponse
	if !a.runStage(ctx, w, "LOOKUP", func() {
		looked = run.Lookup(pipeline.LookupRequest{
			ListText:        req.ListText,
			FQDNGeoMatchAll: req.FQDNGeoMatchAll,
		})
		for kind, n := range lookup.ClassifyKinds(req.ListText) {
			for i := 0; i < n; i++ {
				a.metrics.CountLookupQuery(kind)
			}
		}
	}) {
		return
	}

	writeJSON(w, http.StatusOK, jobResponse{
		JobID:                    jobID,
		AddrList:                 made.AddrList,
		SvcList:                  made.SvcList,
		Normalized:               normalized.Text,
		Flattened:                flattened.Text,
		LookupAll:                looked.AllText,
		LookupWithoutIneffectual: looked.WithoutIneffectualText,
	})
}

// runStage runs fn to completion in its own goroutine and waits on either
// its return or ctx.Done(), so a client disconnect aborts the job between
// stages (SPEC_FULL.md §5) instead of the handler blocking until the whole
// pipeline finishes regardless of whether anyone is still listening. The
// pipeline itself is never parallelized: only one stage's goroutine is ever
// in flight at a time, and fn still runs to completion against run's shared
// Store even after a cancellation, since Runner is not safe to abandon
// mid-stage.
func (a *API) runStage(ctx context.Context, w http.ResponseWriter, stage string, fn func()) bool {
	start := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
		a.metrics.ObserveStage(stage, time.Since(start))
		return true
	case <-ctx.Done():
		writeError(w, http.StatusRequestTimeout, "client disconnected during "+stage)
		return false
	}
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// requireAuth enforces a bearer token on /v1/jobs, unless the token store
// is both empty and not explicitly required (SPEC_FULL.md §4.8 "auth is
// optional").
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.tokens == nil || (a.tokens.IsEmpty() && !a.require) {
			next.ServeHTTP(w, r)
			return
		}

		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !a.tokens.Verify(header[len(prefix):]) {
			writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message, "status": status})
}

// countStanzas gives a rough "config/edit" stanza count for the
// stanzas-parsed counter — exact enough for a metric, not used for
// parsing itself.
func countStanzas(configText string) int {
	n := 0
	for _, line := range strings.Split(configText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "edit ") {
			n++
		}
	}
	return n
}

// countCSVLines counts non-empty CRLF-joined lines, for the
// rows-emitted counter.
func countCSVLines(csvText string) int {
	if csvText == "" {
		return 0
	}
	return len(strings.Split(csvText, "\r\n"))
}
