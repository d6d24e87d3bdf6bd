// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/auth"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

// Login handles admin authentication
//
// @Summary Authenticate and obtain a session token
// @Description Verifies the configured admin credentials and issues a JWT. The token is returned in the body and also set as an HTTP-only cookie for browser clients.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=LoginResponse} "Token issued"
// @Failure 400 {object} models.APIResponse "Malformed or invalid request body"
// @Failure 401 {object} models.APIResponse "Wrong username or password"
// @Failure 403 {object} models.APIResponse "Authentication disabled (AUTH_MODE=none)"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, "invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrAuthDisabled):
		respondError(w, http.StatusForbidden, codeAuthentication, "authentication is disabled", nil)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		logging.Warn().
			Str("username", sanitizeLogValue(req.Username)).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed login attempt")
		respondError(w, http.StatusUnauthorized, codeAuthentication, "invalid username or password", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, codeAuthentication, "login failed", nil)
		return
	}

	h.setAuthCookie(w, r, token, expiresAt)
	respondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  req.Username,
		Role:      auth.RoleAdmin,
	}, start)
}

// Logout handles session termination
//
// @Summary Clear the session cookie
// @Description Expires the HTTP-only session cookie. The JWT itself stays valid until its expiry; clients must also discard any stored copy.
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse "Cookie cleared"
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"}, start)
}

// setAuthCookie stores the session token as an HTTP-only cookie scoped to
// the whole site. Secure is keyed off the live connection, so deployments
// behind TLS-terminating proxies should also set trusted forwarding.
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}
