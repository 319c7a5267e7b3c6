// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the fwpolicy-specific counters and histogram, registered
// with a caller-supplied registry and served from that registry alone (Go
// runtime collectors appear only if the caller registered them there),
// grounded on the teacher pack's prometheus.NewCounterVec/NewHistogramVec
// registration idiom (els0r-goProbe's pkg/telemetry/metrics/middleware.go).
type Metrics struct {
	registry      *prometheus.Registry
	stanzasParsed prometheus.Counter
	rowsEmitted   prometheus.Counter
	lookupQueries *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewMetrics registers a fresh Metrics set with reg and returns it.
// RegisterRoutes serves /metrics through this Metrics' Handler, so
// /metrics exposes whatever is registered with reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		stanzasParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fwpolicy",
			Name:      "stanzas_parsed_total",
			Help:      "Number of config stanzas consumed by the MAKE_LIST stage.",
		}),
		rowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fwpolicy",
			Name:      "policy_rows_emitted_total",
			Help:      "Number of policy rows rendered by the FLATTEN stage.",
		}),
		lookupQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fwpolicy",
			Name:      "lookup_queries_total",
			Help:      "Number of lookup query lines classified, by kind.",
		}, []string{"kind"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fwpolicy",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage pipeline duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	reg.MustRegister(m.stanzasParsed, m.rowsEmitted, m.lookupQueries, m.stageDuration)
	return m
}

// Handler returns the /metrics exposition handler for this Metrics'
// registry, or the default global handler if m is nil (no metrics
// configured, but /metrics still exists and reports Go runtime stats).
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddStanzasParsed increments the stanza counter by n.
func (m *Metrics) AddStanzasParsed(n int) {
	if m == nil {
		return
	}
	m.stanzasParsed.Add(float64(n))
}

// AddRowsEmitted increments the row counter by n.
func (m *Metrics) AddRowsEmitted(n int) {
	if m == nil {
		return
	}
	m.rowsEmitted.Add(float64(n))
}

// CountLookupQuery increments the lookup-query counter for the given
// query kind label ("ipv4", "ipv6", "fqdn", "geo", "unknown").
func (m *Metrics) CountLookupQuery(kind string) {
	if m == nil {
		return
	}
	m.lookupQueries.WithLabelValues(kind).Inc()
}
