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

// postColumns and postFrom are shared by every post query so all call sites
// return identically shaped rows. The comment subquery counts published
// comments only.
const postColumns = `
	p.id, p.title, p.text, p.pub_date, p.image_path,
	p.author_id, u.username,
	p.location_id, COALESCE(l.name, ''),
	p.category_id, COALESCE(c.title, ''), COALESCE(c.slug, ''), COALESCE(c.is_published, 0),
	p.is_published, p.created_at,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id AND cm.is_published = 1)`

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN locations l ON l.id = p.location_id
	LEFT JOIN categories c ON c.id = p.category_id`

// publicFilter selects posts visible to anonymous visitors: published post,
// published category, publication date not in the future.
const publicFilter = `p.is_published = 1 AND c.is_published = 1 AND p.pub_date <= ?`

// CreatePost inserts a post and returns it with joined fields populated.
func (s *Store) CreatePost(ctx context.Context, p model.Post) (model.Post, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO posts (title, text, pub_date, image_path, author_id, location_id, category_id, is_published, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Text, formatTime(p.PubDate), p.ImagePath,
		p.AuthorID, p.LocationID, p.CategoryID, boolToInt(p.IsPublished), formatTime(now))
	if isForeignKeyViolation(err) {
		return model.Post{}, ErrInvalidReference
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: last insert id: %w", err)
	}
	return s.GetPost(ctx, id)
}

// GetPost retrieves a single post with author, category and location joined.
// Visibility is the caller's concern.
func (s *Store) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+postColumns+postFrom+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// UpdatePost updates the editable fields of a post.
func (s *Store) UpdatePost(ctx context.Context, p model.Post) (model.Post, error) {
	res, err := s.db.ExecContext(ctx, `
	UPDATE posts
	SET title = ?, text = ?, pub_date = ?, location_id = ?, category_id = ?, is_published = ?
	WHERE id = ?`,
		p.Title, p.Text, formatTime(p.PubDate), p.LocationID, p.CategoryID, boolToInt(p.IsPublished), p.ID)
	if isForeignKeyViolation(err) {
		return model.Post{}, ErrInvalidReference
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Post{}, err
	}
	if affected == 0 {
		return model.Post{}, ErrNotFound
	}
	return s.GetPost(ctx, p.ID)
}

// SetPostImage records the stored image path of a post.
func (s *Store) SetPostImage(ctx context.Context, id int64, path string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET image_path = ? WHERE id = ?`, path, id)
	if err != nil {
		return fmt.Errorf("set post image: %w", err)
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

// DeletePost removes a post; comments go with it via ON DELETE CASCADE.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
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

// ListPublicPosts returns the public feed page ordered by pub_date descending
// (id breaks ties, RFC3339 timestamps collide at second resolution), with the
// total count of matching posts.
func (s *Store) ListPublicPosts(ctx context.Context, now time.Time, limit, offset int) ([]model.Post, int, error) {
	where := ` WHERE ` + publicFilter
	return s.listPosts(ctx,
		`SELECT`+postColumns+postFrom+where+` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*)`+postFrom+where,
		[]any{formatTime(now), limit, offset},
		[]any{formatTime(now)})
}

// ListCategoryPosts returns the public feed of one category.
func (s *Store) ListCategoryPosts(ctx context.Context, categoryID int64, now time.Time, limit, offset int) ([]model.Post, int, error) {
	where := ` WHERE p.category_id = ? AND ` + publicFilter
	return s.listPosts(ctx,
		`SELECT`+postColumns+postFrom+where+` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*)`+postFrom+where,
		[]any{categoryID, formatTime(now), limit, offset},
		[]any{categoryID, formatTime(now)})
}

// ListUserPosts returns the posts of one author, newest first. When
// includeHidden is true (profile owner) hidden and scheduled posts are
// included; otherwise only publicly visible ones.
func (s *Store) ListUserPosts(ctx context.Context, authorID int64, includeHidden bool, now time.Time, limit, offset int) ([]model.Post, int, error) {
	if includeHidden {
		where := ` WHERE p.author_id = ?`
		return s.listPosts(ctx,
			`SELECT`+postColumns+postFrom+where+` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`,
			`SELECT COUNT(*)`+postFrom+where,
			[]any{authorID, limit, offset},
			[]any{authorID})
	}
	where := ` WHERE p.author_id = ? AND ` + publicFilter
	return s.listPosts(ctx,
		`SELECT`+postColumns+postFrom+where+` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`,
		`SELECT COUNT(*)`+postFrom+where,
		[]any{authorID, formatTime(now), limit, offset},
		[]any{authorID, formatTime(now)})
}

func (s *Store) listPosts(ctx context.Context, query, countQuery string, args, countArgs []any) ([]model.Post, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (model.Post, error) {
	var p model.Post
	var pubDate, createdAt string
	var catPublished, published int
	var locationID, categoryID sql.NullInt64

	err := row.Scan(
		&p.ID, &p.Title, &p.Text, &pubDate, &p.ImagePath,
		&p.AuthorID, &p.Author,
		&locationID, &p.Location,
		&categoryID, &p.Category, &p.CategorySlug, &catPublished,
		&published, &createdAt,
		&p.CommentCount,
	)
	if err != nil {
		return model.Post{}, err
	}

	p.PubDate = parseTime(pubDate)
	p.CreatedAt = parseTime(createdAt)
	p.IsPublished = published == 1
	p.CategoryPublished = catPublished == 1
	if locationID.Valid {
		p.LocationID = &locationID.Int64
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	return p, nil
}
