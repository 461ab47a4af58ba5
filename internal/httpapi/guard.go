// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/samber/oops"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

// DefaultProtectedPattern matches the locale-prefixed members subtree.
const DefaultProtectedPattern = `^/(en|de)/members(/.*)?$`

// Guard gates requests into the protected members subtree. It checks only
// that the session cookie carries a validly signed, unexpired assertion;
// store-level revocation is enforced by endpoints that resolve the
// session. Requests outside the protected pattern pass through untouched.
type Guard struct {
	issuer        *auth.Issuer
	protected     *regexp.Regexp
	secureCookies bool
}

// NewGuard compiles the protected-path pattern and returns a Guard.
// The pattern's first capture group must be the locale.
func NewGuard(issuer *auth.Issuer, pattern string, secureCookies bool) (*Guard, error) {
	if issuer == nil {
		return nil, oops.Code("GUARD_NIL_DEPENDENCY").Errorf("issuer is required")
	}
	if pattern == "" {
		pattern = DefaultProtectedPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, oops.Code("GUARD_INVALID_PATTERN").
			With("pattern", pattern).
			Wrap(err)
	}
	return &Guard{issuer: issuer, protected: re, secureCookies: secureCookies}, nil
}

// Middleware wraps next with the guard check.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		match := g.protected.FindStringSubmatch(r.URL.Path)
		if match == nil {
			next.ServeHTTP(w, r)
			return
		}
		locale := match[1]

		cookie, err := r.Cookie(auth.SessionCookieName)
		if err != nil {
			// No session cookie: straight to login.
			g.redirectToLogin(w, r, locale)
			return
		}

		if g.issuer.VerifyAssertion(cookie.Value) == nil {
			// Stale or tampered cookie: clear it on the way out.
			http.SetCookie(w, auth.ClearSessionCookie(g.secureCookies))
			g.redirectToLogin(w, r, locale)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) redirectToLogin(w http.ResponseWriter, r *http.Request, locale string) {
	callback := r.URL.Path
	if r.URL.RawQuery != "" {
		callback += "?" + r.URL.RawQuery
	}
	target := fmt.Sprintf("/%s/login?callbackUrl=%s", locale, url.QueryEscape(callback))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
