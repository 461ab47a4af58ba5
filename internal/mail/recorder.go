// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package mail

import (
	"context"
	"sync"

	"github.com/tomripp/member-website-sub001/internal/auth"
)

// RecordedMessage captures one delivery made through a Recorder.
type RecordedMessage struct {
	Kind   string // "verification" or "reset"
	To     string
	Locale string
	Token  string
}

// Recorder is an in-memory auth.Mailer for tests and local development.
// It records every message instead of delivering it.
type Recorder struct {
	mu       sync.Mutex
	messages []RecordedMessage

	// Err, when set, is returned from every send.
	Err error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// SendVerification records a verification message.
func (r *Recorder) SendVerification(_ context.Context, to, locale, token string) error {
	return r.record("verification", to, locale, token)
}

// SendPasswordReset records a password-reset message.
func (r *Recorder) SendPasswordReset(_ context.Context, to, locale, token string) error {
	return r.record("reset", to, locale, token)
}

// Messages returns a copy of all recorded messages in send order.
func (r *Recorder) Messages() []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Recorder) record(kind, to, locale, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, RecordedMessage{Kind: kind, To: to, Locale: locale, Token: token})
	return nil
}

// Compile-time interface check.
var _ auth.Mailer = (*Recorder)(nil)
