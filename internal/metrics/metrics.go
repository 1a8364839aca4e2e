// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package metrics provides Prometheus instrumentation for API latency,
// authentication outcomes, and sync/import row processing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Authentication metrics
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of authentication failures by reason",
		},
		[]string{"reason"}, // "invalid_credentials", "invalid_session", "session_expired", "two_factor_required", "invalid_code"
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of login sessions created",
		},
	)

	SessionsValidated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_validated_total",
			Help: "Total number of sessions that completed TOTP verification",
		},
	)

	// Sync/import metrics
	SyncRowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_rows_processed_total",
			Help: "Total number of reconciled rows by outcome",
		},
		[]string{"source", "outcome"}, // outcome: "added", "updated", "error"
	)

	SyncBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_batches_total",
			Help: "Total number of reconcile batches by source",
		},
		[]string{"source"},
	)

	// External source circuit breaker state: 0=closed, 1=half-open, 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthFailure records one authentication failure by reason.
func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// RecordSyncRow records one reconciled row outcome for a source.
func RecordSyncRow(source, outcome string) {
	SyncRowsProcessed.WithLabelValues(source, outcome).Inc()
}
