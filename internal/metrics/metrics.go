// Package metrics defines the Prometheus instrumentation for the PageTurn server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Reading session metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reading_sessions_started_total",
			Help: "Total number of reading sessions started",
		},
	)

	SessionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reading_sessions_ended_total",
			Help: "Total number of reading sessions ended",
		},
	)

	// Stats refresher metrics
	StatsRefreshRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_refresh_runs_total",
			Help: "Total number of stats refresh passes",
		},
	)

	StatsRefreshUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_refresh_users_total",
			Help: "Users processed by the stats refresher, by outcome",
		},
		[]string{"outcome"}, // refreshed | failed
	)

	StatsRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_refresh_duration_seconds",
			Help:    "Duration of one stats refresh pass",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
	)
)
