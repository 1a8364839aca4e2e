// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package sync reconciles externally sourced camera rows against the
// geometry store. The engine classifies each row as added, updated, or
// rejected, with partial-failure semantics: a bad row is counted and
// skipped, never aborting the batch.
//
// The external spreadsheet is a collaborator behind the RowSource
// capability interface, so the engine is testable with a fake source. The
// production source is a Google Sheets client wrapped in a circuit breaker
// and a rate limiter; source unavailability surfaces as a failure of the
// whole sync operation, never as per-row errors.
package sync
