// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package mail_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/tomripp/member-website-sub001/internal/mail"
	"github.com/tomripp/member-website-sub001/pkg/errutil"
)

// fakeSender records delivered messages and can fail a configurable
// number of attempts before succeeding.
type fakeSender struct {
	failures int
	calls    int
	messages []*gomail.Message
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	s.calls++
	if s.calls <= s.failures {
		return assert.AnError
	}
	s.messages = append(s.messages, m...)
	return nil
}

func newTestMailer(t *testing.T, sender mail.Sender) *mail.SMTPMailer {
	t.Helper()
	m, err := mail.NewMailerWithSender(sender, "no-reply@example.org", "https://example.org/")
	require.NoError(t, err)
	return m
}

// rawBody renders the full MIME message and undoes quoted-printable
// soft line breaks so links can be matched as plain substrings.
func rawBody(t *testing.T, msg *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := strings.ReplaceAll(buf.String(), "=\r\n", "")
	return strings.ReplaceAll(raw, "=3D", "=")
}

func TestNewMailerWithSender(t *testing.T) {
	t.Run("rejects nil sender", func(t *testing.T) {
		_, err := mail.NewMailerWithSender(nil, "no-reply@example.org", "https://example.org")
		errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")
	})
}

func TestNewSMTPMailer(t *testing.T) {
	t.Run("rejects empty from address", func(t *testing.T) {
		_, err := mail.NewSMTPMailer(mail.Config{BaseURL: "https://example.org"})
		errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")
	})

	t.Run("rejects empty base URL", func(t *testing.T) {
		_, err := mail.NewSMTPMailer(mail.Config{From: "no-reply@example.org"})
		errutil.AssertErrorCode(t, err, "MAIL_INVALID_CONFIG")
	})
}

func TestSendVerification(t *testing.T) {
	t.Run("builds localized subject and absolute link", func(t *testing.T) {
		tests := []struct {
			locale      string
			wantSubject string
			wantLink    string
		}{
			{"en", "Confirm your email address", "https://example.org/en/verify-email?token=tok123"},
			{"de", "E-Mail-Adresse bestätigen", "https://example.org/de/verify-email?token=tok123"},
		}
		for _, tt := range tests {
			t.Run(tt.locale, func(t *testing.T) {
				sender := &fakeSender{}
				m := newTestMailer(t, sender)

				err := m.SendVerification(t.Context(), "ann@example.com", tt.locale, "tok123")
				require.NoError(t, err)
				require.Len(t, sender.messages, 1)

				msg := sender.messages[0]
				assert.Equal(t, []string{"ann@example.com"}, msg.GetHeader("To"))
				assert.Equal(t, []string{"no-reply@example.org"}, msg.GetHeader("From"))

				raw := rawBody(t, msg)
				assert.Contains(t, raw, tt.wantLink)
			})
		}
	})

	t.Run("unknown locale falls back to english", func(t *testing.T) {
		sender := &fakeSender{}
		m := newTestMailer(t, sender)

		err := m.SendVerification(t.Context(), "ann@example.com", "fr", "tok123")
		require.NoError(t, err)
		require.Len(t, sender.messages, 1)

		raw := rawBody(t, sender.messages[0])
		assert.Contains(t, raw, "https://example.org/en/verify-email?token=tok123")
	})

	t.Run("token is query escaped", func(t *testing.T) {
		sender := &fakeSender{}
		m := newTestMailer(t, sender)

		err := m.SendVerification(t.Context(), "ann@example.com", "en", "a b&c")
		require.NoError(t, err)
		require.Len(t, sender.messages, 1)

		raw := rawBody(t, sender.messages[0])
		assert.Contains(t, raw, "verify-email?token=a+b%26c")
	})
}

func TestSendPasswordReset(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(t, sender)

	err := m.SendPasswordReset(t.Context(), "ann@example.com", "de", "tok456")
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	raw := rawBody(t, sender.messages[0])
	assert.Contains(t, raw, "https://example.org/de/reset-password?token=tok456")
}

func TestSendRetries(t *testing.T) {
	t.Run("recovers from transient failures", func(t *testing.T) {
		sender := &fakeSender{failures: 2}
		m := newTestMailer(t, sender)

		err := m.SendVerification(t.Context(), "ann@example.com", "en", "tok123")
		require.NoError(t, err)
		assert.Equal(t, 3, sender.calls)
		assert.Len(t, sender.messages, 1)
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		sender := &fakeSender{failures: 10}
		m := newTestMailer(t, sender)

		err := m.SendVerification(t.Context(), "ann@example.com", "en", "tok123")
		errutil.AssertErrorCode(t, err, "MAIL_SEND_FAILED")
		assert.Equal(t, 3, sender.calls)
		assert.Empty(t, sender.messages)
	})
}

func TestRecorder(t *testing.T) {
	t.Run("captures messages without delivery", func(t *testing.T) {
		rec := mail.NewRecorder()

		require.NoError(t, rec.SendVerification(t.Context(), "ann@example.com", "en", "tok1"))
		require.NoError(t, rec.SendPasswordReset(t.Context(), "bob@example.com", "de", "tok2"))

		msgs := rec.Messages()
		require.Len(t, msgs, 2)
		assert.Equal(t, mail.RecordedMessage{Kind: "verification", To: "ann@example.com", Locale: "en", Token: "tok1"}, msgs[0])
		assert.Equal(t, mail.RecordedMessage{Kind: "reset", To: "bob@example.com", Locale: "de", Token: "tok2"}, msgs[1])
	})

	t.Run("injected error propagates", func(t *testing.T) {
		rec := mail.NewRecorder()
		rec.Err = assert.AnError

		err := rec.SendVerification(t.Context(), "ann@example.com", "en", "tok1")
		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, rec.Messages())
	})
}
