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

// CreateComment inserts a comment on a post.
func (s *Store) CreateComment(ctx context.Context, c model.Comment) (model.Comment, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO comments (post_id, author_id, text, is_published, created_at)
	VALUES (?, ?, ?, 1, ?)`,
		c.PostID, c.AuthorID, c.Text, formatTime(now))
	if err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Comment{}, fmt.Errorf("create comment: last insert id: %w", err)
	}
	return s.GetComment(ctx, id)
}

// GetComment retrieves a comment with its author username joined.
func (s *Store) GetComment(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	var createdAt string
	var published int
	err := s.db.QueryRowContext(ctx, `
	SELECT cm.id, cm.post_id, cm.author_id, u.username, cm.text, cm.is_published, cm.created_at
	FROM comments cm JOIN users u ON u.id = cm.author_id
	WHERE cm.id = ?`, id).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Text, &published, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, ErrNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	c.IsPublished = published == 1
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// UpdateComment replaces the text of a comment.
func (s *Store) UpdateComment(ctx context.Context, id int64, text string) (model.Comment, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ?`, text, id)
	if err != nil {
		return model.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Comment{}, err
	}
	if affected == 0 {
		return model.Comment{}, ErrNotFound
	}
	return s.GetComment(ctx, id)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
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

// ListPostComments returns the published comments of a post, oldest first.
func (s *Store) ListPostComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT cm.id, cm.post_id, cm.author_id, u.username, cm.text, cm.is_published, cm.created_at
	FROM comments cm JOIN users u ON u.id = cm.author_id
	WHERE cm.post_id = ? AND cm.is_published = 1
	ORDER BY cm.created_at ASC, cm.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		var createdAt string
		var published int
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Text, &published, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.IsPublished = published == 1
		c.CreatedAt = parseTime(createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
