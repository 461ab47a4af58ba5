// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable to
	// prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned on login before the email address has
	// been confirmed.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrTokenInvalid is returned for an unknown or already-consumed
	// verification or reset token.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for a reset token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)
