// Package metrics defines the Prometheus instrumentation for the editor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Loads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parqedit_loads_total",
		Help: "Total number of table load attempts by source and status.",
	}, []string{"source", "status"})

	Saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parqedit_saves_total",
		Help: "Total number of save attempts by destination and status.",
	}, []string{"destination", "status"})

	GateOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parqedit_gate_outcomes_total",
		Help: "Total number of deletion confirmation gate resolutions.",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parqedit_cache_hits_total",
		Help: "Total number of remote reads served from the memoization cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parqedit_cache_misses_total",
		Help: "Total number of remote reads that went to object storage.",
	})

	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parqedit_cache_invalidations_total",
		Help: "Total number of cache entries dropped after writes.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parqedit_sessions_active",
		Help: "Number of live edit sessions.",
	})
)
