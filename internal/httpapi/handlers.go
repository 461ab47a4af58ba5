// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Member Website Contributors

// Package httpapi exposes the authentication service over HTTP: the
// /api/auth endpoints and the route guard for the members area.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/tomripp/member-website-sub001/internal/auth"
	"github.com/tomripp/member-website-sub001/internal/observability"
)

// Handler serves the /api/auth endpoints.
type Handler struct {
	svc           *auth.Service
	validate      *validator.Validate
	logger        *slog.Logger
	metrics       *observability.Metrics
	secureCookies bool
}

// NewHandler creates an auth API handler. metrics may be nil.
func NewHandler(svc *auth.Service, logger *slog.Logger, metrics *observability.Metrics, secureCookies bool) (*Handler, error) {
	if svc == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("service is required")
	}
	if logger == nil {
		return nil, oops.Code("HTTPAPI_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &Handler{
		svc:           svc,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
		metrics:       metrics,
		secureCookies: secureCookies,
	}, nil
}

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name" validate:"required,min=2,max=50"`
	Locale   string  `json:"locale" validate:"required,oneof=en de"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailLocaleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Locale string `json:"locale" validate:"required,oneof=en de"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name, req.Locale)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Registrations.Inc()
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. On success the signed session
// assertion is set as an httpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, assertion, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Logins.Inc()
		h.metrics.SessionsIssued.Inc()
	}
	http.SetCookie(w, auth.SessionCookie(assertion, auth.SessionTTL, h.secureCookies))
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout. It never fails visibly: any
// internal error degrades to a clean 200 with the cookie cleared.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil {
		if logoutErr := h.svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger.Warn("logout cleanup failed", "error", logoutErr)
		}
	}
	http.SetCookie(w, auth.ClearSessionCookie(h.secureCookies))
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// VerifyEmail handles GET /api/auth/verify-email?token=.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "email verified"})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// identical whether or not the email is registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailLocaleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req.Email, req.Locale); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "if the email is registered, a reset link has been sent"})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

// ResendVerification handles POST /api/auth/resend-verification with the
// same anti-enumeration contract as ForgotPassword.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailLocaleRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.ResendVerification(r.Context(), req.Email, req.Locale); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "if the email is registered, a verification link has been sent"})
}

// Me handles GET /api/auth/me. Unlike the route guard this resolves the
// session against the store, so revoked sessions are rejected here.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.svc.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes a 400 with the first validation message and
// returns false. No store access happens before this passes.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, firstValidationMessage(err))
		return false
	}
	return true
}

// firstValidationMessage renders the first field error as a client-facing
// message.
func firstValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request"
	}
	fe := fieldErrs[0]
	field := jsonFieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Name":
		return "name"
	case "Locale":
		return "locale"
	case "Token":
		return "token"
	default:
		return fe.Field()
	}
}
