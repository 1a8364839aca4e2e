// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opticus-project/opticus/internal/models"
)

func createTestSession(t *testing.T, db *DB, token string, validated bool) *models.User {
	t.Helper()
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "owner-"+token, token+"@example.com", "h", "S")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	err = db.CreateSession(ctx, &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(24 * time.Hour),
		Validated: validated,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	return user
}

func TestGetSessionWithUser(t *testing.T) {
	db := setupTestDB(t)
	user := createTestSession(t, db, "tok-1", false)

	got, err := db.GetSessionWithUser(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetSessionWithUser() error: %v", err)
	}
	if got.Session.UserID != user.ID {
		t.Errorf("session user = %d, want %d", got.Session.UserID, user.ID)
	}
	if got.Username != user.Username {
		t.Errorf("username = %q, want %q", got.Username, user.Username)
	}
	if got.TOTPSecret != "S" {
		t.Errorf("totp secret = %q, want S", got.TOTPSecret)
	}
	if got.Session.Validated {
		t.Error("new session should be unvalidated")
	}
}

func TestGetSessionWithUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSessionWithUser(context.Background(), "absent")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestMarkSessionValidated(t *testing.T) {
	db := setupTestDB(t)
	createTestSession(t, db, "tok-2", false)
	ctx := context.Background()

	if err := db.MarkSessionValidated(ctx, "tok-2"); err != nil {
		t.Fatalf("MarkSessionValidated() error: %v", err)
	}

	got, err := db.GetSessionWithUser(ctx, "tok-2")
	if err != nil {
		t.Fatalf("GetSessionWithUser() error: %v", err)
	}
	if !got.Session.Validated {
		t.Error("session should be validated after MarkSessionValidated")
	}

	if err := db.MarkSessionValidated(ctx, "absent"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound for absent token", err)
	}
}

func TestDeleteSession(t *testing.T) {
	db := setupTestDB(t)
	createTestSession(t, db, "tok-3", true)
	ctx := context.Background()

	if err := db.DeleteSession(ctx, "tok-3"); err != nil {
		t.Fatalf("DeleteSession() error: %v", err)
	}

	if _, err := db.GetSessionWithUser(ctx, "tok-3"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound after delete", err)
	}

	// Deleting again reports not found rather than silently succeeding.
	if err := db.DeleteSession(ctx, "tok-3"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second delete error = %v, want ErrSessionNotFound", err)
	}
}
