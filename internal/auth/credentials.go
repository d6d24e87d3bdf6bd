// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hashing time against login latency.
const bcryptCost = 12

// bcryptPrefixes identifies configured passwords that are already hashes,
// so operators can keep plaintext out of their environment entirely.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Verifier checks the admin credentials with timing-safe comparisons.
// Plaintext passwords are hashed once at startup, not per request.
type Verifier struct {
	username     string
	passwordHash []byte
}

// NewVerifier creates a credential verifier. password may be plaintext or
// a bcrypt hash; plaintext must be at least 8 characters.
func NewVerifier(username, password string) (*Verifier, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash := []byte(password)
	if !isBcryptHash(password) {
		if len(password) < 8 {
			return nil, fmt.Errorf("password must be at least 8 characters")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = generated
	}

	return &Verifier{
		username:     username,
		passwordHash: hash,
	}, nil
}

// Verify reports whether the credentials match. Both comparisons always
// run so response time does not reveal which field was wrong.
func (v *Verifier) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

func isBcryptHash(s string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
