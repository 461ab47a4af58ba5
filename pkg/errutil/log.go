// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

// Package errutil provides helpers for logging and asserting on
// structured oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code, and context.
// For standard errors, it logs the error string. Additional attrs are
// appended as-is.
func LogError(logger *slog.Logger, msg string, err error, attrs ...any) {
	if oopsErr, ok := oops.AsOops(err); ok {
		logAttrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			logAttrs = append(logAttrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			logAttrs = append(logAttrs, "context", ctx)
		}
		logAttrs = append(logAttrs, attrs...)
		logger.Error(msg, logAttrs...)
	} else {
		logAttrs := append([]any{"error", err}, attrs...)
		logger.Error(msg, logAttrs...)
	}
}
