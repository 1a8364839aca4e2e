// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

// Package models defines the domain types shared across Opticus packages:
// users, sessions, cameras, raw import rows, GeoJSON output, and the API
// response envelope.
package models

import "time"

// User is a registered account. The TOTP secret is generated once at
// registration and never rotated; the password is stored only as a bcrypt
// hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TOTPSecret   string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// TOTPEnrollment is returned from registration so the client can enroll an
// authenticator app. QRCodeURL carries the otpauth:// provisioning URI;
// ManualEntryKey is the raw secret for manual entry.
type TOTPEnrollment struct {
	Secret         string `json:"secret"`
	QRCodeURL      string `json:"qr_code_url"`
	ManualEntryKey string `json:"manual_entry_key"`
}
