// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// AssertionClaims is the JWT payload of a session assertion. The subject
// claim carries the user ID; "stk" binds the assertion to its session row.
type AssertionClaims struct {
	SessionToken string `json:"stk"`
	jwt.RegisteredClaims
}

// Identity is the decoded content of a valid assertion.
type Identity struct {
	UserID       ulid.ULID
	SessionToken string
}

// Issuer mints and decodes signed session assertions. The assertion is a
// tamper-evident transport; the session row stays the authority, so
// revocation (logout, password reset) takes effect immediately even while
// the signature itself is still cryptographically valid.
type Issuer struct {
	signingKey []byte
	sessions   SessionRepository
	ttl        time.Duration
}

// NewIssuer creates an Issuer signing with the given HS256 secret.
func NewIssuer(signingKey []byte, sessions SessionRepository) (*Issuer, error) {
	if len(signingKey) == 0 {
		return nil, oops.Code("ASSERTION_NO_KEY").Errorf("signing key is required")
	}
	if sessions == nil {
		return nil, oops.Code("ASSERTION_NO_REPO").Errorf("session repository is required")
	}
	return &Issuer{
		signingKey: signingKey,
		sessions:   sessions,
		ttl:        SessionTTL,
	}, nil
}

// CreateSession persists a new session row for the user and returns the
// signed assertion for it. The store write completes before the assertion
// is signed: there is no window in which a valid assertion exists without
// its row.
func (i *Issuer) CreateSession(ctx context.Context, userID ulid.ULID) (string, error) {
	now := time.Now()

	session, err := NewSession(userID, now.Add(i.ttl))
	if err != nil {
		return "", err
	}
	if err := i.sessions.Create(ctx, session); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err)
	}

	claims := AssertionClaims{
		SessionToken: session.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", oops.Code("ASSERTION_SIGN_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return signed, nil
}

// VerifyAssertion cryptographically verifies the signature and expiration
// of a raw assertion. It is a pure decode: the session store is never
// consulted, so callers needing full validity must additionally resolve
// the session token and check its row.
//
// Returns nil, never an error, on any failure: malformed input, bad
// signature, wrong algorithm, or an expired claim.
func (i *Issuer) VerifyAssertion(raw string) *Identity {
	if raw == "" {
		return nil
	}

	claims := &AssertionClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	if claims.SessionToken == "" {
		return nil
	}
	userID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	return &Identity{UserID: userID, SessionToken: claims.SessionToken}
}
