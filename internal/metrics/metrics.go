// Package metrics provides Prometheus instrumentation for the session store.
// It exposes counters for state-store operations and session lifecycle
// events, and a histogram for store round-trip latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StoreOpsTotal counts state-store calls, labeled by op ("get", "setex",
	// "del") and result ("ok", "miss", "error").
	StoreOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessionstore_store_ops_total",
		Help: "Total number of state store operations",
	}, []string{"op", "result"})

	// StoreOpLatency records state-store round-trip latency in seconds.
	StoreOpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sessionstore_store_op_latency_seconds",
		Help:    "State store operation latency in seconds",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"op"})

	// SessionEventsTotal counts session lifecycle events handled by the
	// middleware: "created", "written", "destroyed", "regenerated", "gc".
	SessionEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessionstore_session_events_total",
		Help: "Total number of session lifecycle events",
	}, []string{"event"})

	// PurgedTotal counts expired rows removed by the Postgres janitor.
	PurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessionstore_purged_total",
		Help: "Total number of expired session states purged",
	})
)

func init() {
	prometheus.MustRegister(
		StoreOpsTotal,
		StoreOpLatency,
		SessionEventsTotal,
		PurgedTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
