// Opticus - Camera Fleet Tracking and Geographic Visualization
// Copyright 2026 Opticus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/opticus-project/opticus

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes yields 256 bits of entropy per session token.
const tokenBytes = 32

// newSessionToken mints a cryptographically random, URL-safe bearer token.
func newSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
