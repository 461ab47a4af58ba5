// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

func TestSessionCookie(t *testing.T) {
	t.Run("sets fixed attributes", func(t *testing.T) {
		c := auth.SessionCookie("value", auth.SessionTTL, false)
		assert.Equal(t, "session", c.Name)
		assert.Equal(t, "value", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 604800, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.False(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("secure in production", func(t *testing.T) {
		c := auth.SessionCookie("value", time.Hour, true)
		assert.True(t, c.Secure)
	})
}

func TestClearSessionCookie(t *testing.T) {
	c := auth.ClearSessionCookie(true)
	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
}
