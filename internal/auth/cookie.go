// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the signed assertion.
const SessionCookieName = "session"

// SessionCookie builds the session cookie for a signed assertion.
// Attributes are fixed apart from MaxAge: httpOnly, SameSite=Lax, Path=/,
// Secure when secure is true (production).
func SessionCookie(value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds an expired session cookie that removes the
// client-held assertion.
func ClearSessionCookie(secure bool) *http.Cookie {
	c := SessionCookie("", 0, secure)
	c.MaxAge = -1
	return c
}
