// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blogicum/blogicum/internal/model"
)

// CreateUser inserts a new user and returns it with the assigned ID.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO users (username, email, first_name, last_name, password_hash, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, formatTime(now))
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("create user: last insert id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now.UTC()
	return u, nil
}

// GetUserByID retrieves a user by primary key.
func (s *Store) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
	SELECT id, username, email, first_name, last_name, password_hash, created_at
	FROM users WHERE id = ?`, id))
}

// GetUserByUsername retrieves a user by its unique username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
	SELECT id, username, email, first_name, last_name, password_hash, created_at
	FROM users WHERE username = ?`, username))
}

// UpdateUserProfile updates the editable profile fields of the user.
func (s *Store) UpdateUserProfile(ctx context.Context, id int64, username, email, firstName, lastName string) (model.User, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?
	WHERE id = ?`,
		username, email, firstName, lastName, id)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, fmt.Errorf("update user profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.User{}, fmt.Errorf("update user profile: rows affected: %w", err)
	}
	if affected == 0 {
		return model.User{}, ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}
