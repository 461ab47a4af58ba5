// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package observability

import (
	"context"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

// InstrumentedMailer wraps a Mailer and counts deliveries by kind and result.
type InstrumentedMailer struct {
	next    auth.Mailer
	metrics *Metrics
}

// NewInstrumentedMailer wraps next with delivery counters.
func NewInstrumentedMailer(next auth.Mailer, metrics *Metrics) *InstrumentedMailer {
	return &InstrumentedMailer{next: next, metrics: metrics}
}

// SendVerification delegates and records the outcome.
func (m *InstrumentedMailer) SendVerification(ctx context.Context, to, locale, token string) error {
	err := m.next.SendVerification(ctx, to, locale, token)
	m.metrics.EmailsSent.WithLabelValues("verification", resultLabel(err)).Inc()
	return err
}

// SendPasswordReset delegates and records the outcome.
func (m *InstrumentedMailer) SendPasswordReset(ctx context.Context, to, locale, token string) error {
	err := m.next.SendPasswordReset(ctx, to, locale, token)
	m.metrics.EmailsSent.WithLabelValues("reset", resultLabel(err)).Inc()
	return err
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Compile-time interface check.
var _ auth.Mailer = (*InstrumentedMailer)(nil)
