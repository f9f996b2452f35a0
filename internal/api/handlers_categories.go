// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/slug"
	"github.com/blogicum/blogicum/internal/store"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListPublishedCategories(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// categoryFeed is a category page: the category itself plus its posts.
type categoryFeed struct {
	Category model.Category         `json:"category"`
	Posts    model.Page[model.Post] `json:"posts"`
}

func (s *Server) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	catSlug := chi.URLParam(r, "slug")

	category, err := s.store.GetCategoryBySlug(r.Context(), catSlug)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodeCategoryNotFound, "category not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	// Unpublished categories do not exist for visitors.
	if !category.IsPublished {
		respondError(w, r, http.StatusNotFound, CodeCategoryNotFound, "category not found")
		return
	}

	page := pageParam(r)
	if payload, ok := s.cache.Get(r.Context(), "category:"+catSlug, page); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
		return
	}

	size := s.pageSize()
	now := s.now()
	posts, total, err := s.store.ListCategoryPosts(r.Context(), category.ID, now, size, (page-1)*size)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	resp := categoryFeed{
		Category: category,
		Posts:    model.NewPage(posts, page, size, total),
	}
	s.writeCached(w, r, "category:"+catSlug, page, resp)
}

// writeCached marshals v, stores it under the feed key and writes it out.
func (s *Server) writeCached(w http.ResponseWriter, r *http.Request, feed string, page int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	s.cache.Set(r.Context(), feed, page, payload)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

type categoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "title is required")
		return
	}

	catSlug := req.Slug
	if catSlug == "" {
		catSlug = slug.Make(req.Title)
	} else if slug.Make(catSlug) != catSlug {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput,
			"slug may contain only lowercase latin letters, digits and dashes")
		return
	}

	category, err := s.store.CreateCategory(r.Context(), model.Category{
		Title:       req.Title,
		Description: req.Description,
		Slug:        catSlug,
		IsPublished: true,
	})
	if err == store.ErrSlugTaken {
		respondError(w, r, http.StatusConflict, CodeSlugTaken, "category slug is already taken")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}
