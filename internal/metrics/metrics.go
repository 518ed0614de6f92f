// Package metrics holds Prometheus instruments that are used across the
// site host.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CachedDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitehost_cached_documents",
			Help: "Number of tenant content documents currently held in memory.",
		})

	ContentFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitehost_content_fetch_total",
			Help: "Content document lookups by outcome (hit, miss, not_found).",
		}, []string{"outcome"})

	ContentSaveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitehost_content_save_total",
			Help: "Content document writes by outcome (ok, conflict, invalid, error).",
		}, []string{"outcome"})

	CacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitehost_cache_evict_total",
			Help: "Cumulative number of documents evicted from the content cache.",
		})

	PreviewSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitehost_preview_sessions",
			Help: "Open live-preview event streams.",
		})

	PreviewMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitehost_preview_messages_total",
			Help: "Preview messages received by kind (contentUpdate, scrollToSection, ignored).",
		}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		CachedDocuments,
		ContentFetchTotal,
		ContentSaveTotal,
		CacheEvictTotal,
		PreviewSessions,
		PreviewMessagesTotal,
	)
}
