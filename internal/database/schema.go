// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. All columns are defined in the
// initial CREATE TABLE statements; there is no migration layer.
//
// Note: integer IDs are allocated manually (COALESCE(MAX(id),0)+1 inside the
// INSERT) since DuckDB does not support IDENTITY with PRIMARY KEY.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			totp_secret TEXT,
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS sessions (
			session_token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			is_2fa_validated BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		// geom is a WGS84 (SRID 4326 by convention) point mirroring the
		// latitude/longitude columns; the plain columns keep reads cheap
		// while geom feeds the spatial containment predicate.
		`CREATE TABLE IF NOT EXISTS cameras (
			id INTEGER PRIMARY KEY,
			external_row_id TEXT UNIQUE,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Active',
			camera_type TEXT NOT NULL DEFAULT 'Fixed',
			description TEXT,
			direction DOUBLE,
			field_of_view DOUBLE,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			geom GEOMETRY NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates attribute indexes for the camera filter predicates.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_camera_status ON cameras(status);`,
		`CREATE INDEX IF NOT EXISTS idx_camera_type ON cameras(camera_type);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
