// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opticus-project/opticus/internal/database/query"
	"github.com/opticus-project/opticus/internal/models"
)

// ErrCameraNotFound is returned when no camera matches the lookup.
var ErrCameraNotFound = errors.New("camera not found")

// CameraFilter holds the optional conjunctive predicates for camera queries.
// A nil BBox or empty string means the predicate is not applied.
type CameraFilter struct {
	// BBox is minLon, minLat, maxLon, maxLat.
	BBox *[4]float64

	Status     string
	CameraType string
}

// FindCameraByExternalRowID returns the camera matching the external row id.
// Returns ErrCameraNotFound when no row matches.
func (db *DB) FindCameraByExternalRowID(ctx context.Context, externalRowID string) (*models.Camera, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, COALESCE(external_row_id, ''), name, status, camera_type,
		        COALESCE(description, ''), direction, field_of_view,
		        latitude, longitude, created_at, updated_at
		 FROM cameras WHERE external_row_id = ?`, externalRowID)

	cam, err := scanCamera(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCameraNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select camera: %w", err)
	}
	return cam, nil
}

// InsertCamera persists a new camera and fills in its allocated ID and
// timestamps. The geom column is populated from the camera's coordinates.
func (db *DB) InsertCamera(ctx context.Context, cam *models.Camera) error {
	var externalRowID interface{}
	if cam.ExternalRowID != "" {
		externalRowID = cam.ExternalRowID
	}

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO cameras (id, external_row_id, name, status, camera_type,
		                      description, direction, field_of_view,
		                      latitude, longitude, geom)
		 SELECT COALESCE(MAX(id), 0) + 1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ST_Point(?, ?)
		 FROM cameras
		 RETURNING id, created_at, updated_at`,
		externalRowID, cam.Name, cam.Status, cam.CameraType, cam.Description,
		cam.Direction, cam.FieldOfView, cam.Latitude, cam.Longitude,
		cam.Longitude, cam.Latitude).
		Scan(&cam.ID, &cam.CreatedAt, &cam.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert camera: %w", err)
	}
	return nil
}

// UpdateCameraByExternalRowID updates all mutable fields and the geometry of
// the camera matching the external row id, refreshing updated_at.
// Returns ErrCameraNotFound when no row matches.
func (db *DB) UpdateCameraByExternalRowID(ctx context.Context, cam *models.Camera) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cameras
		 SET name = ?, status = ?, camera_type = ?, description = ?,
		     direction = ?, field_of_view = ?,
		     latitude = ?, longitude = ?, geom = ST_Point(?, ?),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE external_row_id = ?`,
		cam.Name, cam.Status, cam.CameraType, cam.Description,
		cam.Direction, cam.FieldOfView,
		cam.Latitude, cam.Longitude, cam.Longitude, cam.Latitude,
		cam.ExternalRowID)
	if err != nil {
		return fmt.Errorf("update camera: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update camera rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCameraNotFound
	}
	return nil
}

// QueryCameras returns cameras matching the filter in id order. Predicates
// compose conjunctively; each is applied only when supplied. The bounding
// box uses ST_Intersects so points on the rectangle boundary are included.
func (db *DB) QueryCameras(ctx context.Context, filter CameraFilter) ([]models.Camera, error) {
	where, args := query.NewWhereBuilder().
		AddBBox(filter.BBox).
		AddStatus(filter.Status).
		AddCameraType(filter.CameraType).
		BuildWithPrefix()

	stmt := `SELECT id, COALESCE(external_row_id, ''), name, status, camera_type,
	                COALESCE(description, ''), direction, field_of_view,
	                latitude, longitude, created_at, updated_at
	         FROM cameras ` + where + ` ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		cam, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, *cam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cameras: %w", err)
	}

	return cameras, nil
}

// CountCameras returns the total number of camera records.
func (db *DB) CountCameras(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cameras`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cameras: %w", err)
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCamera.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCamera(row rowScanner) (*models.Camera, error) {
	cam := &models.Camera{}
	var direction, fov sql.NullFloat64

	err := row.Scan(&cam.ID, &cam.ExternalRowID, &cam.Name, &cam.Status,
		&cam.CameraType, &cam.Description, &direction, &fov,
		&cam.Latitude, &cam.Longitude, &cam.CreatedAt, &cam.UpdatedAt)
	if err != nil {
		return nil, err
	}

	cam.Direction = direction.Float64
	cam.FieldOfView = fov.Float64
	return cam, nil
}
