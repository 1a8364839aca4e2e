// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package models

import "time"

// Session is a bearer-token login session. A session is created by login
// with Validated=false and becomes usable for protected operations only
// after the TOTP verification step flips Validated to true. Expiry is
// checked lazily at authentication time; there is no background sweep.
type Session struct {
	// Token is the opaque URL-safe session token (primary key).
	Token string `json:"-"`

	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Validated bool      `json:"is_2fa_validated"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session is past its expiry at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is the authenticated principal attached to a request after the
// session gate passes.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
