// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/opticus-project/opticus/internal/auth"
	"github.com/opticus-project/opticus/internal/cache"
	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/database"
	"github.com/opticus-project/opticus/internal/importer"
	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/models"
	camsync "github.com/opticus-project/opticus/internal/sync"
)

// cameraCacheTTL bounds staleness of cached camera queries between syncs.
const cameraCacheTTL = 30 * time.Second

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	db        *database.DB
	authority *auth.Authority
	engine    *camsync.Engine
	cfg       *config.Config
	cameras   *cache.Cache[models.FeatureCollection]
}

// NewHandlers wires the handler set.
func NewHandlers(db *database.DB, authority *auth.Authority, engine *camsync.Engine, cfg *config.Config) *Handlers {
	return &Handlers{
		db:        db,
		authority: authority,
		engine:    engine,
		cfg:       cfg,
		cameras:   cache.New[models.FeatureCollection](cameraCacheTTL),
	}
}

// InvalidateCameraCache drops every cached camera query response. The
// reconcile handlers call it directly; the scheduled sync service is wired
// to it so background reconciles are visible immediately, not after the
// cache TTL.
func (h *Handlers) InvalidateCameraCache() {
	h.cameras.Clear()
}

// Register handles POST /api/auth/register. On success it returns the TOTP
// enrollment payload the client needs to set up its authenticator.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.authority.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			respondError(w, http.StatusBadRequest, "DUPLICATE_USER", "Username or email already registered")
			return
		}
		h.internalError(w, r, err, "registration failed")
		return
	}

	respondSuccess(w, http.StatusCreated, enrollment)
}

// loginResponse is the payload of a successful password check. The token is
// not yet usable for protected endpoints; requires_2fa signals the client
// to complete TOTP verification.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Requires2FA bool   `json:"requires_2fa"`
}

// Login handles POST /api/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.authority.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.internalError(w, r, err, "login failed")
		return
	}

	respondSuccess(w, http.StatusOK, loginResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		Requires2FA: true,
	})
}

// VerifyTwoFactor handles POST /api/auth/verify-2fa. The bearer token names
// the session being validated.
func (h *Handlers) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.authority.VerifyTwoFactor(r.Context(), auth.BearerToken(r), req.Code)
	switch {
	case err == nil:
		respondSuccess(w, http.StatusOK, map[string]string{"message": "2FA verification successful"})
	case errors.Is(err, auth.ErrInvalidSession):
		respondError(w, http.StatusUnauthorized, "INVALID_SESSION", "Invalid session")
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "INVALID_CODE", "Invalid 2FA code")
	default:
		h.internalError(w, r, err, "2FA verification failed")
	}
}

// Logout handles POST /api/auth/logout. Logging out an unknown token is a
// 404; the distinction matters to clients recovering from state loss.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authority.Logout(r.Context(), auth.BearerToken(r))
	switch {
	case err == nil:
		respondSuccess(w, http.StatusOK, map[string]string{"message": "Logged out"})
	case errors.Is(err, auth.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	default:
		h.internalError(w, r, err, "logout failed")
	}
}

// Cameras handles GET /api/v1/cameras. Filters compose conjunctively; a
// malformed bbox is ignored rather than rejected.
func (h *Handlers) Cameras(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := database.CameraFilter{
		BBox:       parseBBox(query.Get("bbox")),
		Status:     query.Get("status"),
		CameraType: query.Get("camera_type"),
	}

	key := cache.Key("cameras", filter)
	if fc, ok := h.cameras.Get(key); ok {
		respondSuccess(w, http.StatusOK, fc)
		return
	}

	cameras, err := h.db.QueryCameras(r.Context(), filter)
	if err != nil {
		h.internalError(w, r, err, "camera query failed")
		return
	}

	fc := models.NewFeatureCollection(cameras)
	h.cameras.Set(key, fc)
	respondSuccess(w, http.StatusOK, fc)
}

// SyncSheets handles POST /api/data/sync-sheets?spreadsheet_id=. It pulls
// every row of the configured range and reconciles the batch.
func (h *Handlers) SyncSheets(w http.ResponseWriter, r *http.Request) {
	spreadsheetID := r.URL.Query().Get("spreadsheet_id")
	if spreadsheetID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "spreadsheet_id is required")
		return
	}

	summary, err := h.engine.SyncFromSource(r.Context(), spreadsheetID)
	if err != nil {
		if errors.Is(err, camsync.ErrSourceUnavailable) {
			logging.Ctx(r.Context()).Warn().Err(err).Str("spreadsheet_id", spreadsheetID).Msg("Sheets sync failed")
			respondError(w, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Could not retrieve spreadsheet data")
			return
		}
		h.internalError(w, r, err, "sheets sync failed")
		return
	}

	h.InvalidateCameraCache()
	respondSuccess(w, http.StatusOK, summary)
}

// UploadFile handles POST /api/data/upload-file. It accepts a multipart
// form with one CSV or XLSX "file" part and reconciles the parsed rows.
func (h *Handlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	file, filename, err := uploadedFile(w, r, h.cfg.Server.MaxUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Expected a multipart form with a file part")
		return
	}
	defer file.Close() //nolint:errcheck

	rows, err := importer.Parse(filename, file)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			respondError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Only .csv and .xlsx files are supported")
			return
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not parse uploaded file")
		return
	}

	summary := h.engine.Reconcile(r.Context(), "upload", rows)
	h.InvalidateCameraCache()
	respondSuccess(w, http.StatusOK, summary)
}

// Health handles GET /api/health. The payload is intentionally bare; load
// balancers key on the status field.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// internalError logs the cause and hides it behind a generic envelope.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logging.Ctx(r.Context()).Error().Err(err).Msg(msg)
	respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "An internal error occurred")
}
