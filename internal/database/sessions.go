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

	"github.com/opticus-project/opticus/internal/models"
)

// ErrSessionNotFound is returned when no session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession stores a new session row. The session starts unvalidated;
// only the TOTP verification step flips is_2fa_validated.
func (db *DB) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (session_token, user_id, expires_at, is_2fa_validated, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt, session.Validated, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionWithUser joins a session with its owning user's identity fields.
type SessionWithUser struct {
	Session    models.Session
	Username   string
	TOTPSecret string
}

// GetSessionWithUser looks up a session by token together with the owning
// user. Returns ErrSessionNotFound if the token matches nothing. Expiry is
// NOT checked here; the session authority applies its checks in protocol
// order.
func (db *DB) GetSessionWithUser(ctx context.Context, token string) (*SessionWithUser, error) {
	out := &SessionWithUser{}
	var totpSecret sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT s.session_token, s.user_id, s.expires_at, s.is_2fa_validated, s.created_at,
		        u.username, u.totp_secret
		 FROM sessions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.session_token = ?`,
		token).Scan(&out.Session.Token, &out.Session.UserID, &out.Session.ExpiresAt,
		&out.Session.Validated, &out.Session.CreatedAt, &out.Username, &totpSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	out.TOTPSecret = totpSecret.String
	return out, nil
}

// MarkSessionValidated flips the 2FA-validated flag on a session.
// Returns ErrSessionNotFound if the token matches nothing.
func (db *DB) MarkSessionValidated(ctx context.Context, token string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET is_2fa_validated = TRUE WHERE session_token = ?`, token)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session row. Returns ErrSessionNotFound when the
// token matches nothing, so logout of an absent token reports NotFound
// instead of silently succeeding.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}
