// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomripp/member-website-sub001/internal/auth"
	"github.com/tomripp/member-website-sub001/internal/observability"
)

// RouterConfig collects the collaborators of the HTTP surface.
type RouterConfig struct {
	Service *auth.Service
	Logger  *slog.Logger
	// Metrics may be nil; request instrumentation is skipped then.
	Metrics *observability.Metrics
	// ProtectedPattern overrides the members-subtree pattern when set.
	ProtectedPattern string
	// SecureCookies marks session cookies Secure (production).
	SecureCookies bool
}

// NewRouter builds the full HTTP handler: the /api/auth endpoints plus
// the guarded members subtree.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	h, err := NewHandler(cfg.Service, cfg.Logger, cfg.Metrics, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}
	guard, err := NewGuard(cfg.Service.Issuer(), cfg.ProtectedPattern, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware(cfg.Metrics))
	r.Use(guard.Middleware)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/verify-email", h.VerifyEmail)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/resend-verification", h.ResendVerification)
		r.Get("/me", h.Me)
	})

	return r, nil
}
