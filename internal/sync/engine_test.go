// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/opticus-project/opticus/internal/database"
	"github.com/opticus-project/opticus/internal/models"
)

// fakeStore is an in-memory Store keyed by external row id. Unkeyed inserts
// are appended to unkeyed.
type fakeStore struct {
	byRowID map[string]*models.Camera
	unkeyed []*models.Camera

	insertErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byRowID: make(map[string]*models.Camera)}
}

func (s *fakeStore) FindCameraByExternalRowID(_ context.Context, externalRowID string) (*models.Camera, error) {
	cam, ok := s.byRowID[externalRowID]
	if !ok {
		return nil, database.ErrCameraNotFound
	}
	return cam, nil
}

func (s *fakeStore) InsertCamera(_ context.Context, cam *models.Camera) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if cam.ExternalRowID == "" {
		s.unkeyed = append(s.unkeyed, cam)
		return nil
	}
	s.byRowID[cam.ExternalRowID] = cam
	return nil
}

func (s *fakeStore) UpdateCameraByExternalRowID(_ context.Context, cam *models.Camera) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.byRowID[cam.ExternalRowID]; !ok {
		return database.ErrCameraNotFound
	}
	s.byRowID[cam.ExternalRowID] = cam
	return nil
}

type fakeSource struct {
	rows []models.CameraRow
	err  error
}

func (s *fakeSource) Fetch(_ context.Context, _ string) ([]models.CameraRow, error) {
	return s.rows, s.err
}

func validRow(rowID string) models.CameraRow {
	return models.CameraRow{
		ExternalRowID: rowID,
		Name:          "Main St Camera",
		Status:        "Active",
		CameraType:    "Fixed",
		Direction:     "45",
		FieldOfView:   "90",
		Latitude:      "45.5",
		Longitude:     "-122.6",
	}
}

func TestReconcileInsertsAndUpdates(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)
	ctx := context.Background()

	summary := engine.Reconcile(ctx, "test", []models.CameraRow{validRow("sheet_2")})
	if summary.Added != 1 || summary.Updated != 0 || summary.Errors != 0 {
		t.Fatalf("first pass: got %+v, want 1 added", summary)
	}

	// Second pass with the same row id updates instead of duplicating.
	row := validRow("sheet_2")
	row.Name = "Main St Camera Renamed"
	summary = engine.Reconcile(ctx, "test", []models.CameraRow{row})
	if summary.Added != 0 || summary.Updated != 1 || summary.Errors != 0 {
		t.Fatalf("second pass: got %+v, want 1 updated", summary)
	}
	if got := store.byRowID["sheet_2"].Name; got != "Main St Camera Renamed" {
		t.Errorf("updated name = %q", got)
	}
	if len(store.byRowID) != 1 {
		t.Errorf("store has %d keyed cameras, want 1", len(store.byRowID))
	}
}

func TestReconcileUnkeyedRowsAlwaysInsert(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)
	ctx := context.Background()

	row := validRow("")
	engine.Reconcile(ctx, "upload", []models.CameraRow{row})
	engine.Reconcile(ctx, "upload", []models.CameraRow{row})

	if len(store.unkeyed) != 2 {
		t.Fatalf("got %d unkeyed cameras, want 2", len(store.unkeyed))
	}
}

func TestReconcileDefaults(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	row := models.CameraRow{
		ExternalRowID: "sheet_3",
		Latitude:      "10",
		Longitude:     "20",
	}
	summary := engine.Reconcile(context.Background(), "test", []models.CameraRow{row})
	if summary.Added != 1 {
		t.Fatalf("got %+v, want 1 added", summary)
	}

	cam := store.byRowID["sheet_3"]
	if cam.Name != "Unnamed Camera" {
		t.Errorf("Name = %q, want Unnamed Camera", cam.Name)
	}
	if cam.Status != models.DefaultCameraStatus {
		t.Errorf("Status = %q, want %q", cam.Status, models.DefaultCameraStatus)
	}
	if cam.CameraType != models.DefaultCameraType {
		t.Errorf("CameraType = %q, want %q", cam.CameraType, models.DefaultCameraType)
	}
	if cam.Direction != models.DefaultDirection {
		t.Errorf("Direction = %v, want %v", cam.Direction, float64(models.DefaultDirection))
	}
	if cam.FieldOfView != models.DefaultFieldOfView {
		t.Errorf("FieldOfView = %v, want %v", cam.FieldOfView, float64(models.DefaultFieldOfView))
	}
}

func TestReconcileRejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CameraRow)
	}{
		{"missing latitude", func(r *models.CameraRow) { r.Latitude = "" }},
		{"non-numeric latitude", func(r *models.CameraRow) { r.Latitude = "north" }},
		{"latitude out of range", func(r *models.CameraRow) { r.Latitude = "91" }},
		{"longitude out of range", func(r *models.CameraRow) { r.Longitude = "-180.5" }},
		{"non-numeric direction", func(r *models.CameraRow) { r.Direction = "NE" }},
		{"non-numeric field of view", func(r *models.CameraRow) { r.FieldOfView = "wide" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			engine := NewEngine(store, nil)

			row := validRow("sheet_2")
			tt.mutate(&row)

			summary := engine.Reconcile(context.Background(), "test", []models.CameraRow{row})
			if summary.Errors != 1 || summary.Added != 0 || summary.Updated != 0 {
				t.Errorf("got %+v, want 1 error", summary)
			}
			if len(store.byRowID) != 0 || len(store.unkeyed) != 0 {
				t.Errorf("bad row was persisted")
			}
		})
	}
}

func TestReconcileContinuesPastRowFailures(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, nil)

	bad := validRow("sheet_2")
	bad.Latitude = "not-a-number"
	rows := []models.CameraRow{bad, validRow("sheet_3"), validRow("sheet_4")}

	summary := engine.Reconcile(context.Background(), "test", rows)
	if summary.Added != 2 || summary.Errors != 1 {
		t.Fatalf("got %+v, want 2 added and 1 error", summary)
	}
}

func TestReconcileCountsPersistenceFailures(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	engine := NewEngine(store, nil)

	summary := engine.Reconcile(context.Background(), "test", []models.CameraRow{validRow("sheet_2")})
	if summary.Errors != 1 || summary.Added != 0 {
		t.Fatalf("got %+v, want 1 error", summary)
	}
}

func TestSyncFromSourceWrapsSourceFailure(t *testing.T) {
	engine := NewEngine(newFakeStore(), &fakeSource{err: errors.New("401 unauthorized")})

	_, err := engine.SyncFromSource(context.Background(), "sheet-id")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestSyncFromSourceEmptyBatchIsUnavailable(t *testing.T) {
	engine := NewEngine(newFakeStore(), &fakeSource{})

	_, err := engine.SyncFromSource(context.Background(), "sheet-id")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestSyncFromSourceNoSourceConfigured(t *testing.T) {
	engine := NewEngine(newFakeStore(), nil)

	_, err := engine.SyncFromSource(context.Background(), "sheet-id")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestSyncFromSourceReconciles(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{rows: []models.CameraRow{validRow("sheet_2"), validRow("sheet_3")}}
	engine := NewEngine(store, source)

	summary, err := engine.SyncFromSource(context.Background(), "sheet-id")
	if err != nil {
		t.Fatalf("SyncFromSource: %v", err)
	}
	if summary.Added != 2 {
		t.Fatalf("got %+v, want 2 added", summary)
	}
}
