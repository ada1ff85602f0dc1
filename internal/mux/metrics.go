package mux

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dnsclient_mux_queries_total", Help: "Total queries sent by the multiplexer, by outcome"},
		[]string{"outcome"},
	)
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "dnsclient_mux_query_duration_seconds", Help: "Time from SendQuery to resolution", Buckets: prometheus.DefBuckets},
		[]string{"outcome"},
	)
	inFlightGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "dnsclient_mux_in_flight_queries", Help: "Number of queries currently awaiting a response"},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal, queryDuration, inFlightGauge)
}

// recordOutcome is called once a pendingQuery resolves: by SendQuery for a
// success, a send error or a done ctx, by the timeout timer, or by failAll
// (CancelAll, Close, or a transport failure).
func recordOutcome(outcome string, start time.Time) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
