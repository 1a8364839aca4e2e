// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/models"
)

type contextKey int

const identityKey contextKey = iota

// IdentityFromContext returns the authenticated identity attached by the
// middleware, or nil if the request did not pass the session gate.
func IdentityFromContext(ctx context.Context) *models.Identity {
	if id, ok := ctx.Value(identityKey).(*models.Identity); ok {
		return id
	}
	return nil
}

// BearerToken extracts the bearer token from an Authorization header.
// Returns empty string when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// Middleware gates protected routes on a validated, unexpired session.
// Each distinct failure reason maps to its own error code; expired or
// invalid sessions are never treated as anonymous.
func (a *Authority) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			code, message := authErrorCode(err)
			writeAuthError(w, code, message)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authErrorCode maps authentication errors to API error codes and messages.
func authErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "NOT_AUTHENTICATED", "Not authenticated"
	case errors.Is(err, ErrInvalidSession):
		return "INVALID_SESSION", "Invalid session"
	case errors.Is(err, ErrSessionExpired):
		return "SESSION_EXPIRED", "Session expired"
	case errors.Is(err, ErrTwoFactorRequired):
		return "TWO_FACTOR_REQUIRED", "2FA required"
	default:
		return "AUTH_ERROR", "Authentication failed"
	}
}

// writeAuthError writes a 401 response in the standard envelope. The auth
// package writes this directly rather than importing the api package's
// helpers, which would create an import cycle.
func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	data, err := json.Marshal(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    &models.APIError{Code: code, Message: message},
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal auth error response")
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write auth error response")
	}
}
