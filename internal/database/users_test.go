// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package database

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateUser(ctx, "alice", "alice@example.com", "hash123", "SECRET")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected allocated user ID")
	}
	if !created.IsActive {
		t.Error("new users should be active")
	}

	got, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error: %v", err)
	}
	if got.ID != created.ID || got.Email != "alice@example.com" || got.TOTPSecret != "SECRET" {
		t.Errorf("got user %+v, want match with created %+v", got, created)
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUserByUsername(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestUserExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, "bob", "bob@example.com", "h", "S"); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		email    string
		want     bool
	}{
		{"same username", "bob", "other@example.com", true},
		{"same email", "other", "bob@example.com", true},
		{"both match", "bob", "bob@example.com", true},
		{"neither", "carol", "carol@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.UserExists(ctx, tt.username, tt.email)
			if err != nil {
				t.Fatalf("UserExists() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("UserExists(%q, %q) = %v, want %v", tt.username, tt.email, got, tt.want)
			}
		})
	}
}

func TestCreateUserAllocatesSequentialIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.CreateUser(ctx, "u1", "u1@example.com", "h", "S")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	second, err := db.CreateUser(ctx, "u2", "u2@example.com", "h", "S")
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}

	if second.ID != first.ID+1 {
		t.Errorf("IDs = %d, %d; want sequential", first.ID, second.ID)
	}
}
