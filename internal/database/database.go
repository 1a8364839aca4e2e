// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package database wraps a DuckDB connection and provides the persistent
// store for users, sessions, and cameras. The spatial extension is a hard
// dependency: camera geometry is stored as a GEOMETRY point and every
// camera query can carry a bounding-box predicate, so a database without
// spatial support would be able to store cameras but never serve them.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
// All methods acquire a pooled connection per call and release it on every
// exit path; no connection is held across requests.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database, loads the spatial extension, and initializes the
// schema. It fails hard if the spatial extension cannot be installed or
// loaded.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	// DuckDB file databases allow one writer process; a small pool of
	// connections within this process shares the catalog.
	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(numThreads)
	conn.SetConnMaxLifetime(0)

	if err := db.loadSpatialExtension(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("spatial extension is required: %w", err)
	}

	if err := db.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := db.createIndexes(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database initialized")
	return db, nil
}

// loadSpatialExtension installs and loads the DuckDB spatial extension and
// verifies it answers a trivial geometry query.
func (db *DB) loadSpatialExtension() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "INSTALL spatial;"); err != nil {
		// INSTALL fails offline when the extension is already present;
		// LOAD below is the authoritative check.
		logging.Warn().Err(err).Msg("INSTALL spatial failed, attempting LOAD of cached extension")
	}
	if _, err := db.conn.ExecContext(ctx, "LOAD spatial;"); err != nil {
		return fmt.Errorf("failed to load spatial extension: %w", err)
	}

	var wkt string
	if err := db.conn.QueryRowContext(ctx, "SELECT ST_AsText(ST_Point(0, 0));").Scan(&wkt); err != nil {
		return fmt.Errorf("spatial extension verification failed: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// closeQuietly closes a connection, logging rather than returning errors.
// Used on initialization failure paths where another error is already
// propagating.
func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}
