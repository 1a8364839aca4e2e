// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

// currentCode derives the valid TOTP code for a secret at a point in time.
func currentCode(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		t.Fatalf("GenerateCode() error: %v", err)
	}
	return code
}

func TestNewSessionToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := newSessionToken()
		if err != nil {
			t.Fatalf("newSessionToken() error: %v", err)
		}
		// 32 bytes base64url without padding is 43 characters.
		if len(token) != 43 {
			t.Errorf("token length = %d, want 43", len(token))
		}
		if strings.ContainsAny(token, "+/=") {
			t.Errorf("token %q is not URL-safe", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}

func TestVerifyTOTPCodeSkewWindow(t *testing.T) {
	key, err := generateTOTPKey("OpticusTest", "alice")
	if err != nil {
		t.Fatalf("generateTOTPKey() error: %v", err)
	}
	secret := key.Secret()

	now := time.Now().UTC()
	code := currentCode(t, secret, now)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"exact step", now, true},
		{"one step later", now.Add(totpPeriod * time.Second), true},
		{"one step earlier", now.Add(-totpPeriod * time.Second), true},
		{"three steps later", now.Add(3 * totpPeriod * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifyTOTPCode(secret, code, tt.at); got != tt.want {
				t.Errorf("verifyTOTPCode at %s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestVerifyTOTPCodeRejectsGarbage(t *testing.T) {
	key, err := generateTOTPKey("OpticusTest", "alice")
	if err != nil {
		t.Fatalf("generateTOTPKey() error: %v", err)
	}

	now := time.Now().UTC()
	for _, code := range []string{"", "abc", "000000", "12345678"} {
		if verifyTOTPCode(key.Secret(), code, now) && code != currentCode(t, key.Secret(), now) {
			t.Errorf("code %q accepted", code)
		}
	}
}

func TestProvisioningURI(t *testing.T) {
	key, err := generateTOTPKey("OpticusTest", "alice")
	if err != nil {
		t.Fatalf("generateTOTPKey() error: %v", err)
	}

	uri := key.URL()
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Errorf("provisioning URI %q missing otpauth://totp/ prefix", uri)
	}
	if !strings.Contains(uri, "OpticusTest") {
		t.Errorf("provisioning URI %q missing issuer", uri)
	}
}
