// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Sessions are stored as SHA-256 hashes of the issued token, so a leaked
// database never exposes live session credentials.

// CreateSession records a session for the user with the given lifetime.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO sessions (token_hash, user_id, created_at_ms, expires_at_ms)
	VALUES (?, ?, ?, ?)`,
		hashToken(token), userID, now.UnixMilli(), now.Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// ResolveSession returns the user ID owning a live session token.
// Expired or unknown tokens return ErrNotFound.
func (s *Store) ResolveSession(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx, `
	SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at_ms > ?`,
		hashToken(token), time.Now().UnixMilli()).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}

// DeleteSession invalidates one session token (logout).
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hashToken(token))
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes expired rows and returns the number purged.
// Called periodically by the daemon.
func (s *Store) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at_ms <= ?`,
		time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
