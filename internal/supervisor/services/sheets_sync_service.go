// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package services

import (
	"context"
	"time"

	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/models"
)

// Syncer pulls camera rows from the configured source and reconciles them.
// Satisfied by *sync.Engine.
type Syncer interface {
	SyncFromSource(ctx context.Context, spreadsheetID string) (models.SyncSummary, error)
}

// SheetsSyncService periodically syncs the configured spreadsheet. One sync
// runs immediately on start, then one per interval. Sync failures are logged
// and the loop keeps running; the circuit breaker inside the row source
// shields the Sheets API from failure storms.
type SheetsSyncService struct {
	syncer        Syncer
	spreadsheetID string
	interval      time.Duration
	invalidate    func()
}

// NewSheetsSyncService wraps a sync engine as a supervised periodic service.
// invalidate runs after every successful sync so readers holding cached
// query results see the reconciled data; it may be nil.
func NewSheetsSyncService(syncer Syncer, spreadsheetID string, interval time.Duration, invalidate func()) *SheetsSyncService {
	return &SheetsSyncService{
		syncer:        syncer,
		spreadsheetID: spreadsheetID,
		interval:      interval,
		invalidate:    invalidate,
	}
}

// Serve implements suture.Service.
func (s *SheetsSyncService) Serve(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SheetsSyncService) runOnce(ctx context.Context) {
	summary, err := s.syncer.SyncFromSource(ctx, s.spreadsheetID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).Str("spreadsheet_id", s.spreadsheetID).Msg("Scheduled sheet sync failed")
		return
	}
	if s.invalidate != nil {
		s.invalidate()
	}
	logging.Info().
		Str("spreadsheet_id", s.spreadsheetID).
		Int("added", summary.Added).
		Int("updated", summary.Updated).
		Int("errors", summary.Errors).
		Msg("Scheduled sheet sync complete")
}

// String identifies the service in suture's event log.
func (s *SheetsSyncService) String() string {
	return "sheets-sync"
}
