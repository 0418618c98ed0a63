// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exposed at /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcomes recorded by WebhookEvent.
const (
	WebhookHandled   = "handled"
	WebhookDuplicate = "duplicate"
	WebhookRejected  = "rejected"
	WebhookIgnored   = "ignored"
)

// Metrics registers the application's collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	draftsPublished *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	pageCache       *prometheus.CounterVec
}

// New creates the collectors and the /metrics handler.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	draftsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drafts_published_total",
		Help: "Drafts applied to live content, by draft type",
	}, []string{"type"})

	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Payment webhook deliveries, by outcome",
	}, []string{"outcome"})

	pageCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "page_cache_lookups_total",
		Help: "Public page cache lookups, by result",
	}, []string{"result"})

	registry.MustRegister(
		requestDuration, requestTotal, draftsPublished, webhookEvents, pageCache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		draftsPublished: draftsPublished,
		webhookEvents:   webhookEvents,
		pageCache:       pageCache,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	m.requestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}

// DraftPublished counts a successfully published draft.
func (m *Metrics) DraftPublished(draftType string) {
	if m == nil {
		return
	}
	m.draftsPublished.WithLabelValues(draftType).Inc()
}

// WebhookEvent counts a webhook delivery by outcome.
func (m *Metrics) WebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

// PageCacheLookup counts a public page cache hit or miss.
func (m *Metrics) PageCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.pageCache.WithLabelValues(result).Inc()
}
