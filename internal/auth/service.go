// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// ResetTokenTTL is the lifetime of a password reset token.
const ResetTokenTTL = time.Hour

// Mailer delivers localized lifecycle emails. Implementations live in
// internal/mail; the service only depends on this interface.
type Mailer interface {
	// SendVerification sends the email-verification message with a link
	// embedding the token.
	SendVerification(ctx context.Context, to, locale, token string) error

	// SendPasswordReset sends the password-reset message with a link
	// embedding the token.
	SendPasswordReset(ctx context.Context, to, locale, token string) error
}

// Service coordinates the credential lifecycle against the user and
// session repositories, the password hasher, the assertion issuer, and the
// email collaborator.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	hasher   PasswordHasher
	issuer   *Issuer
	mailer   Mailer
}

// NewService creates a Service, validating all dependencies.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher, issuer *Issuer, mailer Mailer) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("session repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("assertion issuer is required")
	}
	if mailer == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("mailer is required")
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		issuer:   issuer,
		mailer:   mailer,
	}, nil
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing
// attacks. We still run password verification to make response time
// consistent. This is NOT a real credential - it's a fake hash that will
// never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates an unverified user and sends the verification email.
// A duplicate email yields ErrAlreadyExists with no write and no email.
//
// User creation and the email send are deliberately not transactional: if
// the send fails after the row is committed, the user stays unverified and
// ResendVerification is the recovery path.
func (s *Service) Register(ctx context.Context, email, password string, name *string, locale string) (*UserSummary, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if name != nil {
		if err := ValidateName(*name); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash, name)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, oops.Code("AUTH_EMAIL_TAKEN").Wrap(ErrAlreadyExists)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, locale, *user.VerificationToken); err != nil {
		// The user row stays; only the email failed.
		return nil, oops.Code("AUTH_VERIFICATION_EMAIL_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	return user.Summary(), nil
}

// Login authenticates a user and mints a session assertion.
// Unknown email and wrong password are indistinguishable
// (ErrInvalidCredentials); an unverified account fails with
// ErrEmailNotVerified regardless of password correctness.
func (s *Service) Login(ctx context.Context, email, password string) (*UserSummary, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Still verify against a dummy hash to keep timing flat.
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing defense only
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	if !user.EmailVerified {
		return nil, "", oops.Code("AUTH_EMAIL_NOT_VERIFIED").Wrap(ErrEmailNotVerified)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	assertion, err := s.issuer.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user.Summary(), assertion, nil
}

// Logout deletes the session row referenced by the assertion. It is
// idempotent and tolerant: an absent cookie, a garbage assertion, and an
// already-deleted session are all success. Only an actual store failure is
// reported, and the endpoint boundary degrades even that to success.
func (s *Service) Logout(ctx context.Context, rawAssertion string) error {
	identity := s.issuer.VerifyAssertion(rawAssertion)
	if identity == nil {
		return nil
	}
	err := s.sessions.DeleteByToken(ctx, identity.SessionToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// VerifyEmail confirms the email address for the user holding the token.
// An already-verified user is an idempotent no-op with no store write.
// Unknown tokens yield ErrTokenInvalid.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}

	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
		}
		return oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "get user by verification token").
			Wrap(err)
	}

	if user.EmailVerified {
		return nil
	}

	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "update user").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// RequestPasswordReset starts the reset flow. The caller's response is
// identical whether or not the email exists (anti-enumeration): for an
// unknown or unverified email nothing is written and no email is sent, but
// nil is still returned.
func (s *Service) RequestPasswordReset(ctx context.Context, email, locale string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	if !user.EmailVerified {
		return nil
	}

	token := GenerateToken()
	expiry := time.Now().Add(ResetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "update user").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, locale, token); err != nil {
		return oops.Code("AUTH_RESET_EMAIL_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// ResetPassword completes the reset flow: hashes the new password, clears
// the reset token, marks the email verified (a successful reset
// re-confirms the email channel), and deletes every session for the user
// so all devices must log in again. The session purge is synchronous and
// must not be skipped.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if token == "" {
		return oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
		}
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "get user by reset token").
			Wrap(err)
	}
	if user.ResetTokenExpiry == nil || user.ResetTokenExpiry.Before(time.Now()) {
		return oops.Code("AUTH_TOKEN_EXPIRED").Wrap(ErrTokenExpired)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	user.EmailVerified = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "update user").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if _, err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return oops.Code("AUTH_RESET_FAILED").
			With("operation", "delete sessions").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// ResendVerification issues a fresh verification token and re-sends the
// verification email. Same anti-enumeration contract as
// RequestPasswordReset: unknown or already-verified emails are silent
// no-ops.
func (s *Service) ResendVerification(ctx context.Context, email, locale string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("AUTH_RESEND_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	if user.EmailVerified {
		return nil
	}

	token := GenerateToken()
	user.VerificationToken = &token
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return oops.Code("AUTH_RESEND_FAILED").
			With("operation", "update user").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, locale, token); err != nil {
		return oops.Code("AUTH_VERIFICATION_EMAIL_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

// CurrentUser resolves a raw assertion cookie value to the client-safe
// user projection. It composes the pure decode with the authoritative
// store check: the session row must exist and be unexpired (lazy expiry).
func (s *Service) CurrentUser(ctx context.Context, rawAssertion string) (*UserSummary, error) {
	identity := s.issuer.VerifyAssertion(rawAssertion)
	if identity == nil {
		return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidCredentials)
	}

	session, err := s.sessions.GetByToken(ctx, identity.SessionToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}
	if session.IsExpired() {
		return nil, oops.Code("SESSION_EXPIRED").Wrap(ErrInvalidCredentials)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get user by id").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return user.Summary(), nil
}

// Issuer exposes the assertion issuer for edge components (the route
// guard) that need the cheap signature-only check.
func (s *Service) Issuer() *Issuer {
	return s.issuer
}
