// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/opticus-project/opticus/internal/database"
	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/metrics"
	"github.com/opticus-project/opticus/internal/models"
)

// Sync errors.
var (
	// ErrSourceUnavailable indicates the external row source is unreachable
	// or unauthorized. It fails the whole sync operation.
	ErrSourceUnavailable = errors.New("external row source unavailable")

	// ErrInvalidRow indicates a row with bad coordinates or a malformed
	// numeric field. Per-row only: counted and skipped.
	ErrInvalidRow = errors.New("invalid camera row")
)

// RowSource supplies loosely structured camera rows from an external
// source. Implementations synthesize a stable external row id per row when
// the source has one.
type RowSource interface {
	Fetch(ctx context.Context, sourceID string) ([]models.CameraRow, error)
}

// Store is the slice of the geometry store the engine needs.
// *database.DB satisfies it.
type Store interface {
	FindCameraByExternalRowID(ctx context.Context, externalRowID string) (*models.Camera, error)
	InsertCamera(ctx context.Context, cam *models.Camera) error
	UpdateCameraByExternalRowID(ctx context.Context, cam *models.Camera) error
}

// Engine reconciles camera row batches against the geometry store.
type Engine struct {
	store  Store
	source RowSource
}

// NewEngine creates a sync engine. The source may be nil when the engine is
// used only for direct imports.
func NewEngine(store Store, source RowSource) *Engine {
	return &Engine{store: store, source: source}
}

// SyncFromSource fetches all rows for the given source id and reconciles
// them. Source failures surface as ErrSourceUnavailable for the whole
// operation, never as per-row errors.
func (e *Engine) SyncFromSource(ctx context.Context, sourceID string) (models.SyncSummary, error) {
	if e.source == nil {
		return models.SyncSummary{}, fmt.Errorf("%w: no row source configured", ErrSourceUnavailable)
	}

	rows, err := e.source.Fetch(ctx, sourceID)
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return models.SyncSummary{}, fmt.Errorf("%w: no data retrieved", ErrSourceUnavailable)
	}

	return e.Reconcile(ctx, "sheets", rows), nil
}

// Reconcile processes a batch of rows with partial-failure semantics.
// Per row, in order: validate coordinates, apply defaults, then match on
// external row id (update when found, insert otherwise); rows without an
// external row id are always inserted. Failures are counted and skipped.
func (e *Engine) Reconcile(ctx context.Context, source string, rows []models.CameraRow) models.SyncSummary {
	var summary models.SyncSummary
	metrics.SyncBatches.WithLabelValues(source).Inc()

	for i := range rows {
		cam, err := cameraFromRow(&rows[i])
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("row", i).Msg("Row rejected")
			metrics.RecordSyncRow(source, "error")
			summary.Errors++
			continue
		}

		outcome, err := e.upsert(ctx, cam)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Int("row", i).Msg("Row persistence failed")
			metrics.RecordSyncRow(source, "error")
			summary.Errors++
			continue
		}

		metrics.RecordSyncRow(source, outcome)
		switch outcome {
		case "added":
			summary.Added++
		case "updated":
			summary.Updated++
		}
	}

	logging.Ctx(ctx).Info().
		Str("source", source).
		Int("added", summary.Added).
		Int("updated", summary.Updated).
		Int("errors", summary.Errors).
		Msg("Reconcile complete")

	return summary
}

// upsert persists one validated camera, matching on its external row id.
func (e *Engine) upsert(ctx context.Context, cam *models.Camera) (string, error) {
	if cam.ExternalRowID == "" {
		if err := e.store.InsertCamera(ctx, cam); err != nil {
			return "", err
		}
		return "added", nil
	}

	_, err := e.store.FindCameraByExternalRowID(ctx, cam.ExternalRowID)
	switch {
	case err == nil:
		if err := e.store.UpdateCameraByExternalRowID(ctx, cam); err != nil {
			return "", err
		}
		return "updated", nil
	case errors.Is(err, database.ErrCameraNotFound):
		if err := e.store.InsertCamera(ctx, cam); err != nil {
			return "", err
		}
		return "added", nil
	default:
		return "", err
	}
}

// cameraFromRow validates a raw row and maps it to a typed camera,
// applying the documented defaults for absent fields.
func cameraFromRow(row *models.CameraRow) (*models.Camera, error) {
	lat, err := parseCoordinate(row.Latitude, -90, 90)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", ErrInvalidRow, row.Latitude)
	}
	lon, err := parseCoordinate(row.Longitude, -180, 180)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", ErrInvalidRow, row.Longitude)
	}

	direction, err := parseFloatDefault(row.Direction, models.DefaultDirection)
	if err != nil {
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidRow, row.Direction)
	}
	fov, err := parseFloatDefault(row.FieldOfView, models.DefaultFieldOfView)
	if err != nil {
		return nil, fmt.Errorf("%w: field_of_view %q", ErrInvalidRow, row.FieldOfView)
	}

	cam := &models.Camera{
		ExternalRowID: row.ExternalRowID,
		Name:          row.Name,
		Status:        row.Status,
		CameraType:    row.CameraType,
		Description:   row.Description,
		Direction:     direction,
		FieldOfView:   fov,
		Latitude:      lat,
		Longitude:     lon,
	}
	if cam.Name == "" {
		cam.Name = "Unnamed Camera"
	}
	if cam.Status == "" {
		cam.Status = models.DefaultCameraStatus
	}
	if cam.CameraType == "" {
		cam.CameraType = models.DefaultCameraType
	}
	return cam, nil
}

// parseCoordinate parses a coordinate string and enforces its range.
func parseCoordinate(s string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, fmt.Errorf("coordinate %f outside [%f, %f]", v, min, max)
	}
	return v, nil
}

// parseFloatDefault parses an optional numeric field, returning the default
// for empty input and an error for non-numeric input.
func parseFloatDefault(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
