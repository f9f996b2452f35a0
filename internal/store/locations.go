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

// CreateLocation inserts a new location.
func (s *Store) CreateLocation(ctx context.Context, l model.Location) (model.Location, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO locations (name, is_published, created_at) VALUES (?, ?, ?)`,
		l.Name, boolToInt(l.IsPublished), formatTime(now))
	if err != nil {
		return model.Location{}, fmt.Errorf("create location: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Location{}, fmt.Errorf("create location: last insert id: %w", err)
	}
	l.ID = id
	l.CreatedAt = now.UTC()
	return l, nil
}

// GetLocation retrieves a location by ID.
func (s *Store) GetLocation(ctx context.Context, id int64) (model.Location, error) {
	var l model.Location
	var createdAt string
	var published int
	err := s.db.QueryRowContext(ctx, `
	SELECT id, name, is_published, created_at FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &published, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Location{}, ErrNotFound
	}
	if err != nil {
		return model.Location{}, fmt.Errorf("get location: %w", err)
	}
	l.IsPublished = published == 1
	l.CreatedAt = parseTime(createdAt)
	return l, nil
}

// ListPublishedLocations returns all published locations ordered by name.
func (s *Store) ListPublishedLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, name, is_published, created_at
	FROM locations WHERE is_published = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var locs []model.Location
	for rows.Next() {
		var l model.Location
		var createdAt string
		var published int
		if err := rows.Scan(&l.ID, &l.Name, &published, &createdAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		l.IsPublished = published == 1
		l.CreatedAt = parseTime(createdAt)
		locs = append(locs, l)
	}
	return locs, rows.Err()
}
