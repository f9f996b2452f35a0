// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func mustCreateUser(t *testing.T, s *Store, username string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return u
}

func mustCreateCategory(t *testing.T, s *Store, slug string, published bool) model.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), model.Category{
		Title:       "Category " + slug,
		Description: "about " + slug,
		Slug:        slug,
		IsPublished: published,
	})
	require.NoError(t, err)
	return c
}

func mustCreatePost(t *testing.T, s *Store, author model.User, cat *model.Category, pubDate time.Time, published bool) model.Post {
	t.Helper()
	p := model.Post{
		Title:       "post",
		Text:        "text",
		PubDate:     pubDate,
		AuthorID:    author.ID,
		IsPublished: published,
	}
	if cat != nil {
		p.CategoryID = &cat.ID
	}
	created, err := s.CreatePost(context.Background(), p)
	require.NoError(t, err)
	return created
}

func commentFor(postID, authorID int64, text string) model.Comment {
	return model.Comment{PostID: postID, AuthorID: authorID, Text: text}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.sqlite")

	s, err := New(path)
	require.NoError(t, err)
	mustCreateUser(t, s, "alice")
	require.NoError(t, s.Close())

	// Reopening must not touch existing data.
	s2, err := New(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, s2.Close()) }()

	u, err := s2.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
