// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package auth implements the session authority: registration with TOTP
// enrollment, the two-step (password + TOTP) login protocol, the bearer
// session gate used by every protected endpoint, and logout.
//
// Session state machine:
//
//	Created(unvalidated) --correct TOTP--> Validated
//	Validated/Created --past expiry--> Expired (checked lazily, no sweep)
//	any --logout--> Revoked (row deleted, terminal)
//
// A session is usable for protected operations iff it is validated AND not
// expired. There is no transition out of Expired or Revoked.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/database"
	"github.com/opticus-project/opticus/internal/logging"
	"github.com/opticus-project/opticus/internal/metrics"
	"github.com/opticus-project/opticus/internal/models"
)

// Authority implements the session/2FA authentication protocol against the
// persistent store.
type Authority struct {
	db  *database.DB
	cfg *config.AuthConfig

	// now is the clock; replaceable in tests.
	now func() time.Time
}

// NewAuthority creates a session authority backed by the given store.
func NewAuthority(db *database.DB, cfg *config.AuthConfig) *Authority {
	return &Authority{db: db, cfg: cfg, now: time.Now}
}

// Register creates a new user account with a freshly generated TOTP secret
// and returns the enrollment payload. Fails with ErrDuplicateUser if the
// username or email is already taken.
func (a *Authority) Register(ctx context.Context, username, email, password string) (*models.TOTPEnrollment, error) {
	exists, err := a.db.UserExists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	key, err := generateTOTPKey(a.cfg.TOTPIssuer, username)
	if err != nil {
		return nil, err
	}

	if _, err := a.db.CreateUser(ctx, username, email, string(hash), key.Secret()); err != nil {
		// The existence check races with concurrent registrations; the
		// UNIQUE constraints are the backstop.
		if isDuplicateKeyErr(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("username", username).Msg("User registered")

	return &models.TOTPEnrollment{
		Secret:         key.Secret(),
		QRCodeURL:      key.URL(),
		ManualEntryKey: key.Secret(),
	}, nil
}

// Login verifies the password and mints an unvalidated session with a 24h
// (configurable) expiry. The returned session is NOT yet usable for
// protected operations; VerifyTwoFactor must succeed on it first.
func (a *Authority) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := a.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			metrics.RecordAuthFailure("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.RecordAuthFailure("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(a.cfg.SessionTTL),
		Validated: false,
		CreatedAt: now,
	}
	if err := a.db.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsCreated.Inc()
	logging.Ctx(ctx).Info().Str("username", username).Msg("Session created, awaiting 2FA")
	return session, nil
}

// VerifyTwoFactor validates a TOTP code for the session and, on success,
// flips the session to validated. On failure the session stays unvalidated
// and verification may be retried.
func (a *Authority) VerifyTwoFactor(ctx context.Context, token, code string) error {
	row, err := a.db.GetSessionWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			metrics.RecordAuthFailure("invalid_session")
			return ErrInvalidSession
		}
		return err
	}

	if !verifyTOTPCode(row.TOTPSecret, code, a.now().UTC()) {
		metrics.RecordAuthFailure("invalid_code")
		return ErrInvalidCode
	}

	if err := a.db.MarkSessionValidated(ctx, token); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return ErrInvalidSession
		}
		return err
	}

	metrics.SessionsValidated.Inc()
	logging.Ctx(ctx).Info().Str("username", row.Username).Msg("2FA verified")
	return nil
}

// Authenticate is the gate for every protected operation. Checks run in
// protocol order: token present → session row exists → not expired →
// validated. Each failure reports a distinct reason.
func (a *Authority) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		metrics.RecordAuthFailure("unauthenticated")
		return nil, ErrUnauthenticated
	}

	row, err := a.db.GetSessionWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			metrics.RecordAuthFailure("invalid_session")
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if row.Session.IsExpired(a.now().UTC()) {
		metrics.RecordAuthFailure("session_expired")
		return nil, ErrSessionExpired
	}

	if !row.Session.Validated {
		metrics.RecordAuthFailure("two_factor_required")
		return nil, ErrTwoFactorRequired
	}

	return &models.Identity{UserID: row.Session.UserID, Username: row.Username}, nil
}

// Logout revokes the session. Logout of an absent token reports
// ErrSessionNotFound rather than silently succeeding.
func (a *Authority) Logout(ctx context.Context, token string) error {
	if err := a.db.DeleteSession(ctx, token); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	logging.Ctx(ctx).Info().Msg("Session revoked")
	return nil
}

// isDuplicateKeyErr detects UNIQUE constraint violations from DuckDB.
func isDuplicateKeyErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
