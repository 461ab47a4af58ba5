// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Input validation constraints.
const (
	MinPasswordLength = 8
	MinNameLength     = 2
	MaxNameLength     = 50
)

// User represents a member account.
//
// VerificationToken and ResetToken are each unique across all users when
// non-nil; a user has at most one outstanding token of each kind at a time
// (a new request overwrites the previous token, it is never appended).
type User struct {
	ID                ulid.ULID
	Email             string
	PasswordHash      string
	Name              *string
	EmailVerified     bool
	VerificationToken *string
	ResetToken        *string
	ResetTokenExpiry  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserSummary is the projection of a User that is safe to expose to
// clients. It must never carry the password hash or any token.
type UserSummary struct {
	ID            ulid.ULID `json:"id"`
	Email         string    `json:"email"`
	Name          *string   `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
}

// Summary returns the client-safe projection of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
	}
}

// NewUser creates an unverified User with a fresh verification token.
// The password hash must already be computed by a PasswordHasher.
func NewUser(email, passwordHash string, name *string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("password hash cannot be empty")
	}
	if name != nil {
		if err := ValidateName(*name); err != nil {
			return nil, err
		}
	}

	token := GenerateToken()
	now := time.Now()
	return &User{
		ID:                ulid.Make(),
		Email:             email,
		PasswordHash:      passwordHash,
		Name:              name,
		EmailVerified:     false,
		VerificationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ValidateEmail performs a minimal shape check. Email addresses are stored
// and compared case-sensitively, exactly as submitted.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email is not a valid address")
	}
	return nil
}

// ValidatePassword checks the minimum password length rule.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateName checks the display name length rules.
func ValidateName(name string) error {
	if len(name) < MinNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("min", MinNameLength).
			Errorf("name must be at least %d characters", MinNameLength)
	}
	if len(name) > MaxNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxNameLength).
			Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrAlreadyExists if the email is
	// already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by exact email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByVerificationToken retrieves a user by its outstanding
	// verification token. Returns ErrNotFound if no user holds the token.
	GetByVerificationToken(ctx context.Context, token string) (*User, error)

	// GetByResetToken retrieves a user by its outstanding reset token.
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// Update persists all mutable fields of an existing user.
	Update(ctx context.Context, user *User) error
}
