// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package main is the entry point for the Opticus server.
//
// Opticus tracks a fleet of field cameras: records flow in from a Google
// Sheet or file uploads, land in DuckDB with point geometry, and come back
// out as GeoJSON through a session-authenticated REST API.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML file, env)
//  2. Logging: zerolog, configured from the loaded settings
//  3. Database: DuckDB with the spatial extension
//  4. Session authority: bcrypt credentials plus TOTP two-factor
//  5. Sync engine: Sheets client behind a circuit breaker
//  6. Supervisor tree: background sync loop and HTTP server under suture
//
// # Configuration
//
// Key environment variables (see internal/config for the full list):
//   - SERVER_HOST, SERVER_PORT: listen address (default 0.0.0.0:8000)
//   - DUCKDB_PATH: database file (default /data/opticus.duckdb)
//   - GOOGLE_OAUTH_ACCESS_TOKEN: bearer token for the Sheets API
//   - SHEETS_SPREADSHEET_ID, SHEETS_SYNC_INTERVAL: background sync loop
//   - TOTP_ISSUER, SESSION_TTL, BCRYPT_COST: authentication parameters
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops
// accepting connections, in-flight requests get the configured grace
// period, then the sync loop and database are closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opticus-project/opticus/internal/api"
	"github.com/opticus-project/opticus/internal/auth"
	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/database"
	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/supervisor"
	"github.com/opticus-project/opticus/internal/supervisor/services"
	camsync "github.com/opticus-project/opticus/internal/sync"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("listen_addr", cfg.Server.ListenAddr()).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Opticus")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	authority := auth.NewAuthority(db, &cfg.Auth)

	// The Sheets client sits behind a circuit breaker so a flapping API
	// cannot trigger failure storms against the sync path.
	sheets := camsync.NewSheetsClient(cfg.Sheets)
	engine := camsync.NewEngine(db, camsync.NewBreakerSource("sheets-api", sheets))

	handlers := api.NewHandlers(db, authority, engine, cfg)
	router := api.NewRouter(handlers, authority, cfg)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	if cfg.Sheets.SyncInterval > 0 {
		tree.AddIngestService(services.NewSheetsSyncService(engine, cfg.Sheets.SpreadsheetID, cfg.Sheets.SyncInterval, handlers.InvalidateCameraCache))
		logging.Info().
			Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).
			Dur("interval", cfg.Sheets.SyncInterval).
			Msg("Background sheet sync enabled")
	} else {
		logging.Info().Msg("Background sheet sync disabled (SHEETS_SYNC_INTERVAL not set)")
	}

	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped")
}
