// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Status is "success" or "error"; Error is populated only when
// Status is "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a structured error payload.
//
// Error codes used by Opticus:
//   - VALIDATION_ERROR: invalid request parameters
//   - NOT_AUTHENTICATED: missing or malformed bearer token
//   - DUPLICATE_USER: username or email already registered
//   - INVALID_CREDENTIALS: unknown user, inactive user, or wrong password
//   - INVALID_SESSION: token does not match any session
//   - SESSION_EXPIRED: session past its expiry
//   - TWO_FACTOR_REQUIRED: session not yet TOTP-validated
//   - INVALID_CODE: TOTP code rejected
//   - SESSION_NOT_FOUND: logout of an absent token
//   - UNSUPPORTED_FORMAT: upload file type not recognized
//   - SOURCE_UNAVAILABLE: external row source unreachable
//   - DATABASE_ERROR: persistence failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
