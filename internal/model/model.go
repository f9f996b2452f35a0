// SPDX-License-Identifier: MIT

// Package model defines the blog domain entities and their visibility rules.
package model

import "time"

// User is a registered author.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category groups posts under a unique URL slug.
type Category struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Location is an optional place tag on a post.
type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is a blog publication. PubDate may lie in the future, which defers
// public visibility until that moment.
type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	PubDate     time.Time `json:"pub_date"`
	ImagePath   string    `json:"image,omitempty"`
	AuthorID    int64     `json:"author_id"`
	Author      string    `json:"author"`
	LocationID  *int64    `json:"location_id,omitempty"`
	Location    string    `json:"location,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	CategorySlug string   `json:"category_slug,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`

	// CategoryPublished mirrors the joined category's flag; false when the
	// post has no category.
	CategoryPublished bool `json:"-"`

	// CommentCount is populated on feed queries.
	CommentCount int `json:"comment_count"`
}

// Comment belongs to a post. Comments are listed oldest first.
type Comment struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	AuthorID    int64     `json:"author_id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// PubliclyVisible reports whether the post may be shown to arbitrary
// visitors at the given moment: the post and its category must be published
// and the publication date must not lie in the future.
func (p *Post) PubliclyVisible(now time.Time) bool {
	return p.IsPublished && p.CategoryPublished && !p.PubDate.After(now)
}

// VisibleTo reports whether the post may be shown to the given viewer.
// Authors always see their own posts, including hidden and scheduled ones;
// viewerID <= 0 means an anonymous visitor.
func (p *Post) VisibleTo(viewerID int64, now time.Time) bool {
	if viewerID > 0 && viewerID == p.AuthorID {
		return true
	}
	return p.PubliclyVisible(now)
}

// Page is a paginated slice of a feed.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPage assembles pagination metadata. Size must be positive.
func NewPage[T any](items []T, number, size, total int) Page[T] {
	pages := total / size
	if total%size != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return Page[T]{
		Items:      items,
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}
