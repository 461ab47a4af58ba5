// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTTL is the lifetime of a session row and of the signed assertion
// minted for it. Expiry is enforced lazily at resolution time, not by a
// background sweep.
const SessionTTL = 7 * 24 * time.Hour

// Session represents a server-side session record. The row is the source
// of truth for validity: the signed client assertion alone is necessary
// but not sufficient, it must resolve to a live, non-expired session row.
type Session struct {
	ID        ulid.ULID
	UserID    ulid.ULID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a validated Session with a fresh random token.
func NewSession(userID ulid.ULID, expiresAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}
	return &Session{
		ID:        ulid.Make(),
		UserID:    userID,
		Token:     GenerateToken(),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given
// time. Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByToken retrieves a session by its unique token.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// DeleteByToken removes a session by token. Returns ErrNotFound when no
	// row matched; callers that tolerate already-deleted sessions must
	// treat that as success.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUser removes all sessions for a user and returns the count
	// of deleted rows. Zero deletions is a valid state, not an error.
	DeleteByUser(ctx context.Context, userID ulid.ULID) (int64, error)
}
