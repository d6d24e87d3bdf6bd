// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewVerifier(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{
			name:     "valid plaintext password",
			username: "admin",
			password: "longenoughpassword",
			wantErr:  false,
		},
		{
			name:     "empty username",
			username: "",
			password: "longenoughpassword",
			wantErr:  true,
		},
		{
			name:     "empty password",
			username: "admin",
			password: "",
			wantErr:  true,
		},
		{
			name:     "plaintext too short",
			username: "admin",
			password: "short",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, err := NewVerifier(tt.username, tt.password)
			if tt.wantErr {
				if err == nil {
					t.Error("NewVerifier() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewVerifier() unexpected error = %v", err)
				return
			}
			if verifier == nil {
				t.Error("NewVerifier() returned nil verifier")
			}
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	verifier, err := NewVerifier("admin", "correct-horse-battery")
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{
			name:     "correct credentials",
			username: "admin",
			password: "correct-horse-battery",
			want:     true,
		},
		{
			name:     "wrong password",
			username: "admin",
			password: "wrong-password",
			want:     false,
		},
		{
			name:     "wrong username",
			username: "root",
			password: "correct-horse-battery",
			want:     false,
		},
		{
			name:     "both wrong",
			username: "root",
			password: "wrong-password",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifier.Verify(tt.username, tt.password); got != tt.want {
				t.Errorf("Verify(%q, ...) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestVerifier_PreHashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22secure"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() error = %v", err)
	}

	verifier, err := NewVerifier("admin", string(hash))
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	if !verifier.Verify("admin", "hunter22secure") {
		t.Error("Verify() = false for the password behind the configured hash")
	}
	if verifier.Verify("admin", string(hash)) {
		t.Error("Verify() accepted the hash itself as the password")
	}
}

func TestIsBcryptHash(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"$2a$12$abcdefghijklmnopqrstuv", true},
		{"$2b$12$abcdefghijklmnopqrstuv", true},
		{"$2y$12$abcdefghijklmnopqrstuv", true},
		{"$1$md5crypt", false},
		{"plaintext", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isBcryptHash(tt.input); got != tt.want {
			t.Errorf("isBcryptHash(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
