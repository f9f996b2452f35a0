// SPDX-License-Identifier: MIT

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// SessionCookie is the name of the session cookie issued on login.
const SessionCookie = "blogicum_session"

// NewSessionToken returns a cryptographically random 256-bit token in hex.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ExtractToken retrieves the session token from the request.
// 1. Cookie: blogicum_session (browsers)
// 2. Authorization: Bearer <token> (API clients)
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
