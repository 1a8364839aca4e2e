// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package middleware provides infrastructure HTTP middleware: request ID
// propagation, Prometheus request instrumentation, and gzip compression.
// All middleware uses the standard func(http.Handler) http.Handler shape so
// it composes with chi's Use.
//
// Authentication middleware lives in internal/auth next to the session
// state machine it enforces.
package middleware
