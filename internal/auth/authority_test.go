// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/opticus-project/opticus/internal/config"
	"github.com/opticus-project/opticus/internal/database"
)

func testAuthority(t *testing.T) *Authority {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewAuthority(db, &config.AuthConfig{
		SessionTTL: 24 * time.Hour,
		TOTPIssuer: "OpticusTest",
		BcryptCost: 4, // minimum cost keeps the test suite fast
	})
}

func TestRegisterDuplicates(t *testing.T) {
	a := testAuthority(t)
	ctx := context.Background()

	first, err := a.Register(ctx, "alice", "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if first.Secret == "" || first.QRCodeURL == "" || first.ManualEntryKey != first.Secret {
		t.Errorf("enrollment incomplete: %+v", first)
	}

	if _, err := a.Register(ctx, "alice", "other@x.com", "pw"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("same username: error = %v, want ErrDuplicateUser", err)
	}
	if _, err := a.Register(ctx, "other", "a@x.com", "pw"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("same email: error = %v, want ErrDuplicateUser", err)
	}

	second, err := a.Register(ctx, "bob", "b@x.com", "pw456")
	if err != nil {
		t.Fatalf("Register() second user error: %v", err)
	}
	if second.Secret == first.Secret {
		t.Error("distinct registrations must yield distinct TOTP secrets")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	a := testAuthority(t)
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice", "a@x.com", "pw123"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "ghost", "pw123"},
		{"wrong password", "alice", "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Login(ctx, tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestFullAuthenticationFlow(t *testing.T) {
	a := testAuthority(t)
	ctx := context.Background()

	enrollment, err := a.Register(ctx, "alice", "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	session, err := a.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if session.Validated {
		t.Error("fresh session must be unvalidated")
	}

	// A correct password alone never opens the gate.
	if _, err := a.Authenticate(ctx, session.Token); !errors.Is(err, ErrTwoFactorRequired) {
		t.Errorf("pre-2FA Authenticate error = %v, want ErrTwoFactorRequired", err)
	}

	// A wrong code leaves the session retryable.
	if err := a.VerifyTwoFactor(ctx, session.Token, "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("wrong code error = %v, want ErrInvalidCode", err)
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("GenerateCode() error: %v", err)
	}
	if err := a.VerifyTwoFactor(ctx, session.Token, code); err != nil {
		t.Fatalf("VerifyTwoFactor() error: %v", err)
	}

	identity, err := a.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("post-2FA Authenticate() error: %v", err)
	}
	if identity.Username != "alice" {
		t.Errorf("identity = %+v, want alice", identity)
	}

	if err := a.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if _, err := a.Authenticate(ctx, session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("post-logout Authenticate error = %v, want ErrInvalidSession", err)
	}
	if err := a.Logout(ctx, session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second logout error = %v, want ErrSessionNotFound", err)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	a := testAuthority(t)
	ctx := context.Background()

	enrollment, err := a.Register(ctx, "alice", "a@x.com", "pw123")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	session, err := a.Login(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
	if err != nil {
		t.Fatalf("GenerateCode() error: %v", err)
	}
	if err := a.VerifyTwoFactor(ctx, session.Token, code); err != nil {
		t.Fatalf("VerifyTwoFactor() error: %v", err)
	}

	// Even a validated session fails once the clock passes its expiry.
	a.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := a.Authenticate(ctx, session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("error = %v, want ErrSessionExpired", err)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	a := testAuthority(t)

	if _, err := a.Authenticate(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("error = %v, want ErrUnauthenticated", err)
	}
	if _, err := a.Authenticate(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession", err)
	}
}

func TestVerifyTwoFactorUnknownSession(t *testing.T) {
	a := testAuthority(t)

	if err := a.VerifyTwoFactor(context.Background(), "absent", "123456"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("error = %v, want ErrInvalidSession", err)
	}
}
