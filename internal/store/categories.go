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

// CreateCategory inserts a new category. The slug must already be generated
// and URL-safe; duplicates yield ErrSlugTaken.
func (s *Store) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO categories (title, description, slug, is_published, created_at)
	VALUES (?, ?, ?, ?, ?)`,
		c.Title, c.Description, c.Slug, boolToInt(c.IsPublished), formatTime(now))
	if err != nil {
		if isUniqueViolation(err, "categories.slug") {
			return model.Category{}, ErrSlugTaken
		}
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now.UTC()
	return c, nil
}

// GetCategoryBySlug retrieves a category regardless of publication state.
// Callers enforce visibility.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (model.Category, error) {
	return s.scanCategory(s.db.QueryRowContext(ctx, `
	SELECT id, title, description, slug, is_published, created_at
	FROM categories WHERE slug = ?`, slug))
}

// ListPublishedCategories returns all published categories ordered by title.
func (s *Store) ListPublishedCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, title, description, slug, is_published, created_at
	FROM categories WHERE is_published = 1 ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var createdAt string
		var published int
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &published, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.IsPublished = published == 1
		c.CreatedAt = parseTime(createdAt)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SetCategoryPublished toggles the publication flag of a category.
func (s *Store) SetCategoryPublished(ctx context.Context, id int64, published bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_published = ? WHERE id = ?`, boolToInt(published), id)
	if err != nil {
		return fmt.Errorf("set category published: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanCategory(row *sql.Row) (model.Category, error) {
	var c model.Category
	var createdAt string
	var published int
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &published, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.IsPublished = published == 1
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
