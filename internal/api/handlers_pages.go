// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// staticPage is an editable informational page.
type staticPage struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Built-in page content, overridable by <pagesDir>/<slug>.md.
var defaultPages = map[string]staticPage{
	"about": {
		Slug:    "about",
		Title:   "About the project",
		Content: "Blogicum is a personal diary platform: write posts, tag them with a category and a location, and discuss them in the comments.",
	},
	"rules": {
		Slug:    "rules",
		Title:   "Our rules",
		Content: "Be kind to each other, stay on topic, and do not publish anything you would not say in person.",
	},
}

func (s *Server) handleStaticPage(w http.ResponseWriter, r *http.Request) {
	pageSlug := chi.URLParam(r, "slug")

	page, ok := defaultPages[pageSlug]
	if !ok {
		respondError(w, r, http.StatusNotFound, CodePageNotFound, "page not found")
		return
	}

	if dir := s.cfg.Current().PagesDir; dir != "" {
		if content, err := os.ReadFile(filepath.Join(dir, pageSlug+".md")); err == nil {
			page.Content = string(content)
		}
	}

	writeJSON(w, http.StatusOK, page)
}
