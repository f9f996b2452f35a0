// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blogicum/blogicum/internal/images"
	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/metrics"
	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

// pageParam parses the ?page= query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// invalidateFeeds drops cached feed pages after any content mutation.
func (s *Server) invalidateFeeds(r *http.Request) {
	s.cache.Invalidate(r.Context())
}

// serveFeed answers a feed request through the cache. The feed key must
// uniquely identify the query (e.g. "index", "category:travel").
func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, feed string, page int,
	list func(limit, offset int) ([]model.Post, int, error)) {

	if payload, ok := s.cache.Get(r.Context(), feed, page); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
		return
	}

	size := s.pageSize()
	posts, total, err := list(size, (page-1)*size)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	payload, err := json.Marshal(model.NewPage(posts, page, size, total))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	s.cache.Set(r.Context(), feed, page, payload)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	now := s.now()
	s.serveFeed(w, r, "index", page, func(limit, offset int) ([]model.Post, int, error) {
		return s.store.ListPublicPosts(r.Context(), now, limit, offset)
	})
}

// postDetail is a post together with its published comments, oldest first.
type postDetail struct {
	model.Post
	Comments []model.Comment `json:"comments"`
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "postID")
	if !ok {
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	// Hidden posts are indistinguishable from missing ones for non-authors.
	if !post.VisibleTo(viewerID(r), s.now()) {
		metrics.HiddenPostDenied.Inc()
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return
	}

	comments, err := s.store.ListPostComments(r.Context(), post.ID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postDetail{Post: post, Comments: comments})
}

type postRequest struct {
	Title       *string    `json:"title"`
	Text        *string    `json:"text"`
	PubDate     *time.Time `json:"pub_date"`
	LocationID  *int64     `json:"location_id"`
	CategoryID  *int64     `json:"category_id"`
	IsPublished *bool      `json:"is_published"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" ||
		req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "title and text are required")
		return
	}

	post := model.Post{
		Title:       *req.Title,
		Text:        *req.Text,
		PubDate:     s.now(),
		AuthorID:    currentUserID(r),
		LocationID:  req.LocationID,
		CategoryID:  req.CategoryID,
		IsPublished: true,
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	created, err := s.store.CreatePost(r.Context(), post)
	if err == store.ErrInvalidReference {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "referenced category or location does not exist")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	metrics.PostsCreated.Inc()
	s.invalidateFeeds(r)
	log.FromContext(r.Context()).Info().
		Int64(log.FieldPostID, created.ID).
		Msg("post created")
	writeJSON(w, http.StatusCreated, created)
}

// loadOwnPost fetches a post and enforces that the requester authored it.
// Writes the error response and returns ok=false otherwise.
func (s *Server) loadOwnPost(w http.ResponseWriter, r *http.Request) (model.Post, bool) {
	id, ok := idParam(r, "postID")
	if !ok {
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return model.Post{}, false
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return model.Post{}, false
	}
	if err != nil {
		respondInternal(w, r, err)
		return model.Post{}, false
	}

	viewer := currentUserID(r)
	if !post.VisibleTo(viewer, s.now()) {
		metrics.HiddenPostDenied.Inc()
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return model.Post{}, false
	}
	if post.AuthorID != viewer {
		respondError(w, r, http.StatusForbidden, CodeForbidden, "only the author may modify this post")
		return model.Post{}, false
	}
	return post, true
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadOwnPost(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "title must not be empty")
			return
		}
		post.Title = *req.Title
	}
	if req.Text != nil {
		if strings.TrimSpace(*req.Text) == "" {
			respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "text must not be empty")
			return
		}
		post.Text = *req.Text
	}
	if req.PubDate != nil {
		post.PubDate = *req.PubDate
	}
	if req.LocationID != nil {
		post.LocationID = req.LocationID
	}
	if req.CategoryID != nil {
		post.CategoryID = req.CategoryID
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	updated, err := s.store.UpdatePost(r.Context(), post)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return
	}
	if err == store.ErrInvalidReference {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "referenced category or location does not exist")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	s.invalidateFeeds(r)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadOwnPost(w, r)
	if !ok {
		return
	}

	if err := s.store.DeletePost(r.Context(), post.ID); err != nil {
		respondInternal(w, r, err)
		return
	}
	if post.ImagePath != "" {
		if err := s.images.Remove(post.ImagePath); err != nil {
			log.FromContext(r.Context()).Warn().Err(err).
				Int64(log.FieldPostID, post.ID).
				Msg("failed to remove post image")
		}
	}

	metrics.PostsDeleted.Inc()
	s.invalidateFeeds(r)
	log.FromContext(r.Context()).Info().
		Int64(log.FieldPostID, post.ID).
		Msg("post deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadOwnPost(w, r)
	if !ok {
		return
	}

	maxBytes := s.cfg.Current().MaxImageBytes
	// Reserve headroom so the size check in the image store fires before
	// MaxBytesReader kills the connection.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<16))

	var payload io.Reader = r.Body
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, r, http.StatusBadRequest, CodeInvalidInput, `multipart field "image" is required`)
			return
		}
		defer func() { _ = file.Close() }()
		payload = file
	}

	name, err := s.images.Save(post.ID, payload)
	switch {
	case errors.Is(err, images.ErrUnsupportedType):
		respondError(w, r, http.StatusUnsupportedMediaType, CodeUnsupportedImage,
			"only JPEG, PNG, GIF and WebP images are accepted")
		return
	case errors.Is(err, images.ErrTooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, CodeImageTooLarge, "image exceeds the size limit")
		return
	case err != nil:
		respondInternal(w, r, err)
		return
	}

	if err := s.store.SetPostImage(r.Context(), post.ID, name); err != nil {
		_ = s.images.Remove(name)
		respondInternal(w, r, err)
		return
	}
	if post.ImagePath != "" && post.ImagePath != name {
		_ = s.images.Remove(post.ImagePath)
	}

	updated, err := s.store.GetPost(r.Context(), post.ID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	s.invalidateFeeds(r)
	writeJSON(w, http.StatusOK, updated)
}
