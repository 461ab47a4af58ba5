// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

// Package auth provides the authentication core for the membership site.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their respective
// constructors:
//   - NewUser - creates a User with a hashed password and verification token
//   - NewSession - creates a Session bound to a user with a fresh token
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service coordinates the credential lifecycle: register, login, logout,
// email verification, password reset, and session resolution. The signed
// assertion (an HS256 JWT) proves session identity without a store round
// trip; the session row remains the authority for revocation. Issuer mints
// and decodes assertions.
package auth
