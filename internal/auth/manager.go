// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package auth provides JWT session authentication for the single admin
// user. The API authenticates with a login endpoint that verifies the
// configured credentials and mints an HS256 token; data endpoints enforce
// the token through RequireAuth. AUTH_MODE=none disables the whole layer
// for development.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/config"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

// Auth modes.
const (
	ModeJWT  = "jwt"
	ModeNone = "none"
)

// RoleAdmin is the role carried by every session in this single-user
// system. It stays in the claims so the wire shape survives a move to
// multiple roles.
const RoleAdmin = "admin"

// Development fallback credentials, used only when AUTH_MODE=jwt outside
// production and no credentials are configured.
const (
	devUsername = "admin"
	devPassword = "propacity"
)

var (
	// ErrInvalidCredentials is returned by Login for a wrong username or
	// password. Handlers map it to 401 without detail.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAuthDisabled is returned by Login when AUTH_MODE=none.
	ErrAuthDisabled = errors.New("authentication is disabled")
)

// Manager bundles token handling and credential verification behind the
// configured auth mode.
type Manager struct {
	jwt      *JWTManager
	verifier *Verifier
	mode     string
}

// New builds the auth manager from security configuration. In production
// the JWT secret and admin credentials must be configured; in development
// a missing secret is generated (sessions then do not survive restarts)
// and missing credentials fall back to the development defaults with a
// loud warning.
func New(cfg *config.SecurityConfig, production bool) (*Manager, error) {
	if cfg.AuthMode == ModeNone {
		logging.Warn().Msg("authentication disabled (AUTH_MODE=none)")
		return &Manager{mode: ModeNone}, nil
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if production {
			return nil, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt in production")
		}
		generated, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate development JWT secret: %w", err)
		}
		secret = generated
		logging.Warn().Msg("JWT_SECRET not set, generated a random development secret; sessions will not survive restarts")
	}

	jwtManager, err := NewJWTManager(secret, cfg.SessionTimeout)
	if err != nil {
		return nil, err
	}

	username, password := cfg.AdminUsername, cfg.AdminPassword
	if username == "" || password == "" {
		if production {
			return nil, fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required when AUTH_MODE=jwt in production")
		}
		username, password = devUsername, devPassword
		logging.Warn().
			Str("username", devUsername).
			Msg("admin credentials not set, using development defaults")
	}

	verifier, err := NewVerifier(username, password)
	if err != nil {
		return nil, fmt.Errorf("configure admin credentials: %w", err)
	}

	return &Manager{
		jwt:      jwtManager,
		verifier: verifier,
		mode:     ModeJWT,
	}, nil
}

// Enabled reports whether authentication is enforced.
func (m *Manager) Enabled() bool {
	return m.mode != ModeNone
}

// Login verifies the credentials and mints a session token, returning the
// token and its expiry.
func (m *Manager) Login(username, password string) (string, time.Time, error) {
	if !m.Enabled() {
		return "", time.Time{}, ErrAuthDisabled
	}
	if !m.verifier.Verify(username, password) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return m.jwt.GenerateToken(username, RoleAdmin)
}

// randomSecret produces a 64-character hex secret for development use.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
