// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

// Package mail sends transactional emails over SMTP with localized
// HTML templates.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultLocale is used when a message locale is unknown.
const DefaultLocale = "en"

const (
	maxSendAttempts  = 3
	retryBaseBackoff = 250 * time.Millisecond
)

// subjects per message kind and locale.
var subjects = map[string]map[string]string{
	"verification": {
		"en": "Confirm your email address",
		"de": "E-Mail-Adresse bestätigen",
	},
	"reset": {
		"en": "Reset your password",
		"de": "Passwort zurücksetzen",
	},
}

// Sender delivers a composed message. gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Config holds SMTP and link-building settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// BaseURL is the public website origin used to build absolute
	// verification and reset links, e.g. "https://example.org".
	BaseURL string
}

// SMTPMailer implements auth.Mailer over SMTP.
type SMTPMailer struct {
	sender    Sender
	from      string
	baseURL   string
	templates *template.Template
}

// NewSMTPMailer creates a mailer that dials the configured SMTP server.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.From == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("from address is required")
	}
	if cfg.BaseURL == "" {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("base URL is required")
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newMailer(dialer, cfg.From, cfg.BaseURL)
}

// NewMailerWithSender creates a mailer with a custom sender, for tests.
func NewMailerWithSender(sender Sender, from, baseURL string) (*SMTPMailer, error) {
	if sender == nil {
		return nil, oops.Code("MAIL_INVALID_CONFIG").Errorf("sender is required")
	}
	return newMailer(sender, from, baseURL)
}

func newMailer(sender Sender, from, baseURL string) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("MAIL_TEMPLATE_PARSE_FAILED").Wrap(err)
	}
	return &SMTPMailer{
		sender:    sender,
		from:      from,
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: tmpl,
	}, nil
}

// SendVerification sends the email-verification message. The link points
// at the locale-prefixed verify-email page with the token as a query
// parameter.
func (m *SMTPMailer) SendVerification(ctx context.Context, to, locale, token string) error {
	locale = normalizeLocale(locale)
	link := m.link(locale, "verify-email", token)
	return m.send(ctx, to, subjects["verification"][locale], "verification."+locale+".html", link)
}

// SendPasswordReset sends the password-reset message.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, locale, token string) error {
	locale = normalizeLocale(locale)
	link := m.link(locale, "reset-password", token)
	return m.send(ctx, to, subjects["reset"][locale], "reset."+locale+".html", link)
}

func (m *SMTPMailer) link(locale, page, token string) string {
	return fmt.Sprintf("%s/%s/%s?token=%s", m.baseURL, locale, page, url.QueryEscape(token))
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, templateName, link string) error {
	var body bytes.Buffer
	err := m.templates.ExecuteTemplate(&body, templateName, struct{ Link string }{Link: link})
	if err != nil {
		return oops.Code("MAIL_TEMPLATE_EXEC_FAILED").
			With("template", templateName).
			Wrap(err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	// SMTP dial failures are usually transient; retry with backoff
	// before giving up.
	backoff := retry.WithMaxRetries(maxSendAttempts-1, retry.NewExponential(retryBaseBackoff))
	err = retry.Do(ctx, backoff, func(_ context.Context) error {
		if sendErr := m.sender.DialAndSend(msg); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("subject", subject).
			Wrap(err)
	}
	return nil
}

func normalizeLocale(locale string) string {
	if _, ok := subjects["verification"][locale]; !ok {
		return DefaultLocale
	}
	return locale
}

// Compile-time interface check.
var _ auth.Mailer = (*SMTPMailer)(nil)
