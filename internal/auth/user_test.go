// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomripp/member-website-sub001/internal/auth"
	"github.com/tomripp/member-website-sub001/pkg/errutil"
)

func strPtr(s string) *string { return &s }

func TestNewUser(t *testing.T) {
	t.Run("creates unverified user with verification token", func(t *testing.T) {
		user, err := auth.NewUser("ann@example.com", "$argon2id$hash", strPtr("Ann"))
		require.NoError(t, err)

		assert.Equal(t, "ann@example.com", user.Email)
		assert.False(t, user.EmailVerified)
		require.NotNil(t, user.VerificationToken)
		assert.Len(t, *user.VerificationToken, 64)
		assert.Nil(t, user.ResetToken)
		assert.Nil(t, user.ResetTokenExpiry)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("name is optional", func(t *testing.T) {
		user, err := auth.NewUser("ann@example.com", "$argon2id$hash", nil)
		require.NoError(t, err)
		assert.Nil(t, user.Name)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := auth.NewUser("not-an-email", "$argon2id$hash", nil)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})

	t.Run("rejects empty password hash", func(t *testing.T) {
		_, err := auth.NewUser("ann@example.com", "", nil)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_USER")
	})

	t.Run("rejects out-of-range name", func(t *testing.T) {
		_, err := auth.NewUser("ann@example.com", "$argon2id$hash", strPtr("A"))
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")

		_, err = auth.NewUser("ann@example.com", "$argon2id$hash", strPtr(strings.Repeat("x", 51)))
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")
	})
}

func TestSummary(t *testing.T) {
	user, err := auth.NewUser("ann@example.com", "$argon2id$hash", strPtr("Ann"))
	require.NoError(t, err)
	token := "a-reset-token"
	user.ResetToken = &token

	s := user.Summary()
	assert.Equal(t, user.ID, s.ID)
	assert.Equal(t, user.Email, s.Email)
	assert.Equal(t, user.Name, s.Name)
	assert.False(t, s.EmailVerified)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, auth.ValidatePassword("12345678"))
	err := auth.ValidatePassword("1234567")
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, auth.ValidateEmail("a@x.com"))
	assert.Error(t, auth.ValidateEmail(""))
	assert.Error(t, auth.ValidateEmail("@x.com"))
	assert.Error(t, auth.ValidateEmail("a@"))
	assert.Error(t, auth.ValidateEmail("plainaddress"))
}
