// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package sync

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/metrics"
	"github.com/opticus-project/opticus/internal/models"
)

// BreakerSource wraps a RowSource with a circuit breaker so a failing or
// slow external API stops receiving traffic instead of stalling every sync
// request behind timeouts.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should exercise the wrapped source directly or trip the breaker
// with deterministic failure counts.
type BreakerSource struct {
	source RowSource
	cb     *gobreaker.CircuitBreaker[[]models.CameraRow]
}

// NewBreakerSource wraps source with a circuit breaker named name.
// Configuration:
//   - 3 concurrent requests allowed in half-open state
//   - 1 minute measurement window while closed
//   - 2 minutes open before probing recovery
//   - opens at >= 60% failures over at least 10 requests
func NewBreakerSource(name string, source RowSource) *BreakerSource {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.CameraRow](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerSource{source: source, cb: cb}
}

// Fetch delegates to the wrapped source under circuit breaker protection.
// When the circuit is open the source is not called at all.
func (b *BreakerSource) Fetch(ctx context.Context, sourceID string) ([]models.CameraRow, error) {
	rows, err := b.cb.Execute(func() ([]models.CameraRow, error) {
		return b.source.Fetch(ctx, sourceID)
	})
	if err != nil {
		return nil, fmt.Errorf("breaker %s: %w", b.cb.Name(), err)
	}
	return rows, nil
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
