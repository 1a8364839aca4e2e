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

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserExists reports whether a user with the given username or email is
// already registered.
func (db *DB) UserExists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		username, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("user existence check: %w", err)
	}
	return count > 0, nil
}

// CreateUser inserts a new user and returns it with its allocated ID.
func (db *DB) CreateUser(ctx context.Context, username, email, passwordHash, totpSecret string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		TOTPSecret:   totpSecret,
		IsActive:     true,
	}

	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, totp_secret)
		 SELECT COALESCE(MAX(id), 0) + 1, ?, ?, ?, ? FROM users
		 RETURNING id, created_at`,
		username, email, passwordHash, totpSecret).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// GetUserByUsername looks up a user by username.
// Returns ErrUserNotFound if no such user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	var totpSecret sql.NullString

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, totp_secret, is_active, created_at
		 FROM users WHERE username = ?`,
		username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&totpSecret, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	user.TOTPSecret = totpSecret.String
	return user, nil
}
