// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of every generated token. 32 bytes = 64 hex chars.
const TokenBytes = 32

// GenerateToken creates a secure random token for email verification,
// password reset, and session correlation: a fixed-length lowercase
// hexadecimal string encoding TokenBytes of cryptographically secure
// randomness.
//
// A failing randomness source is not a recoverable condition, so this
// panics instead of returning an error.
func GenerateToken() string {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("auth: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
