// SPDX-License-Identifier: MIT

// Package auth provides password hashing and session token primitives.
package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength rejects trivially guessable passwords at registration.
	MinPasswordLength = 8

	// bcrypt silently truncates beyond 72 bytes; reject instead of truncating.
	maxPasswordBytes = 72
)

// ErrWeakPassword is returned when a candidate password fails policy.
var ErrWeakPassword = errors.New("auth: password does not meet length requirements")

// HashPassword derives a bcrypt hash of the password at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
// The comparison cost is constant for a given hash regardless of the input.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordPolicy validates a candidate password without hashing it.
func CheckPasswordPolicy(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrWeakPassword
	}
	return nil
}
