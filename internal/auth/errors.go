// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package auth

import "errors"

// Authentication errors. Each maps to a distinct user-visible reason; the
// API layer never downgrades one of these to an anonymous pass-through.
var (
	// ErrDuplicateUser indicates the username or email is already registered.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials indicates an unknown user, an inactive user, or
	// a wrong password. Deliberately indistinct to avoid user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated indicates a missing or malformed bearer token.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidSession indicates the token matches no session row.
	ErrInvalidSession = errors.New("invalid session")

	// ErrSessionExpired indicates the session is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrTwoFactorRequired indicates the session has not completed TOTP
	// verification.
	ErrTwoFactorRequired = errors.New("2FA required")

	// ErrInvalidCode indicates a rejected TOTP code. The session stays
	// unvalidated and verification may be retried.
	ErrInvalidCode = errors.New("invalid 2FA code")

	// ErrSessionNotFound indicates logout of a token that matches nothing.
	ErrSessionNotFound = errors.New("session not found")
)
