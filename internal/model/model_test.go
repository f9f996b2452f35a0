// SPDX-License-Identifier: MIT

package model

import (
	"testing"
	"time"
)

func TestPostVisibility(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		post       Post
		viewerID   int64
		wantPublic bool
		wantViewer bool
	}{
		{
			name: "published post visible to everyone",
			post: Post{
				AuthorID: 1, IsPublished: true, CategoryPublished: true,
				PubDate: now.Add(-time.Hour),
			},
			viewerID:   2,
			wantPublic: true,
			wantViewer: true,
		},
		{
			name: "hidden post visible only to author",
			post: Post{
				AuthorID: 1, IsPublished: false, CategoryPublished: true,
				PubDate: now.Add(-time.Hour),
			},
			viewerID:   1,
			wantPublic: false,
			wantViewer: true,
		},
		{
			name: "hidden post invisible to others",
			post: Post{
				AuthorID: 1, IsPublished: false, CategoryPublished: true,
				PubDate: now.Add(-time.Hour),
			},
			viewerID:   2,
			wantPublic: false,
			wantViewer: false,
		},
		{
			name: "unpublished category hides post",
			post: Post{
				AuthorID: 1, IsPublished: true, CategoryPublished: false,
				PubDate: now.Add(-time.Hour),
			},
			viewerID:   2,
			wantPublic: false,
			wantViewer: false,
		},
		{
			name: "scheduled post hidden until pub date",
			post: Post{
				AuthorID: 1, IsPublished: true, CategoryPublished: true,
				PubDate: now.Add(time.Hour),
			},
			viewerID:   2,
			wantPublic: false,
			wantViewer: false,
		},
		{
			name: "scheduled post visible to author",
			post: Post{
				AuthorID: 1, IsPublished: true, CategoryPublished: true,
				PubDate: now.Add(time.Hour),
			},
			viewerID:   1,
			wantPublic: false,
			wantViewer: true,
		},
		{
			name: "pub date exactly now is visible",
			post: Post{
				AuthorID: 1, IsPublished: true, CategoryPublished: true,
				PubDate: now,
			},
			viewerID:   2,
			wantPublic: true,
			wantViewer: true,
		},
		{
			name: "anonymous viewer never matches author",
			post: Post{
				AuthorID: 1, IsPublished: false, CategoryPublished: true,
				PubDate: now.Add(-time.Hour),
			},
			viewerID:   0,
			wantPublic: false,
			wantViewer: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.PubliclyVisible(now); got != tt.wantPublic {
				t.Errorf("PubliclyVisible = %v, want %v", got, tt.wantPublic)
			}
			if got := tt.post.VisibleTo(tt.viewerID, now); got != tt.wantViewer {
				t.Errorf("VisibleTo(%d) = %v, want %v", tt.viewerID, got, tt.wantViewer)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		wantPages int
	}{
		{"empty feed still has one page", 0, 10, 1},
		{"exact multiple", 20, 10, 2},
		{"remainder adds a page", 21, 10, 3},
		{"single item", 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]int{}, 1, tt.size, tt.total)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
		})
	}
}
