// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

func strPtr(s string) *string { return &s }

func sampleUser(t *testing.T) *auth.User {
	t.Helper()
	user, err := auth.NewUser("ann@example.com", "$argon2id$hash", strPtr("Ann"))
	require.NoError(t, err)
	return user
}

func userRows(user *auth.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "name", "email_verified",
		"verification_token", "reset_token", "reset_token_expiry",
		"created_at", "updated_at",
	}).AddRow(
		user.ID.String(), user.Email, user.PasswordHash, user.Name, user.EmailVerified,
		user.VerificationToken, user.ResetToken, user.ResetTokenExpiry,
		user.CreatedAt, user.UpdatedAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts all columns", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Email, user.PasswordHash, user.Name,
				user.EmailVerified, user.VerificationToken, user.ResetToken,
				user.ResetTokenExpiry, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewUserRepository(mock)
		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrAlreadyExists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := NewUserRepository(mock)
		err = repo.Create(ctx, sampleUser(t))
		assert.ErrorIs(t, err, auth.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other database error is not ErrAlreadyExists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		repo := NewUserRepository(mock)
		err = repo.Create(ctx, sampleUser(t))
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrAlreadyExists)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE email = \$1`).
			WithArgs(user.Email).
			WillReturnRows(userRows(user))

		repo := NewUserRepository(mock)
		got, err := repo.GetByEmail(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		assert.Equal(t, user.VerificationToken, got.VerificationToken)
	})

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE email = \$1`).
			WithArgs("ghost@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetByTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("by verification token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE verification_token = \$1`).
			WithArgs(*user.VerificationToken).
			WillReturnRows(userRows(user))

		repo := NewUserRepository(mock)
		got, err := repo.GetByVerificationToken(ctx, *user.VerificationToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("by reset token not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE reset_token = \$1`).
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByResetToken(ctx, "nope")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE id = \$1`).
			WithArgs(user.ID.String()).
			WillReturnRows(userRows(user))

		repo := NewUserRepository(mock)
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := NewUserRepository(mock)
		_, err = repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates all mutable columns", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		user.EmailVerified = true
		user.UpdatedAt = time.Now()

		mock.ExpectExec(`UPDATE users`).
			WithArgs(user.ID.String(), user.Email, user.PasswordHash, user.Name,
				user.EmailVerified, user.VerificationToken, user.ResetToken,
				user.ResetTokenExpiry, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewUserRepository(mock)
		require.NoError(t, repo.Update(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		user := sampleUser(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewUserRepository(mock)
		err = repo.Update(ctx, user)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}
