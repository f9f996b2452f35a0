// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strings"

	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/metrics"
	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

type commentRequest struct {
	Text string `json:"text"`
}

// visiblePost resolves {postID} and enforces viewer visibility, answering
// 404 for both missing and hidden posts.
func (s *Server) visiblePost(w http.ResponseWriter, r *http.Request) (model.Post, bool) {
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
	if !post.VisibleTo(viewerID(r), s.now()) {
		metrics.HiddenPostDenied.Inc()
		respondError(w, r, http.StatusNotFound, CodePostNotFound, "post not found")
		return model.Post{}, false
	}
	return post, true
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return
	}
	comments, err := s.store.ListPostComments(r.Context(), post.ID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "text is required")
		return
	}

	comment, err := s.store.CreateComment(r.Context(), model.Comment{
		PostID:      post.ID,
		AuthorID:    currentUserID(r),
		Text:        req.Text,
		IsPublished: true,
	})
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	metrics.CommentsCreated.Inc()
	s.invalidateFeeds(r) // feeds carry comment counts
	log.FromContext(r.Context()).Info().
		Int64(log.FieldPostID, post.ID).
		Int64(log.FieldCommentID, comment.ID).
		Msg("comment created")
	writeJSON(w, http.StatusCreated, comment)
}

// loadOwnComment resolves {commentID} under {postID} and enforces that the
// requester authored the comment.
func (s *Server) loadOwnComment(w http.ResponseWriter, r *http.Request) (model.Comment, bool) {
	post, ok := s.visiblePost(w, r)
	if !ok {
		return model.Comment{}, false
	}

	id, ok := idParam(r, "commentID")
	if !ok {
		respondError(w, r, http.StatusNotFound, CodeCommentNotFound, "comment not found")
		return model.Comment{}, false
	}

	comment, err := s.store.GetComment(r.Context(), id)
	if err == store.ErrNotFound || (err == nil && comment.PostID != post.ID) {
		respondError(w, r, http.StatusNotFound, CodeCommentNotFound, "comment not found")
		return model.Comment{}, false
	}
	if err != nil {
		respondInternal(w, r, err)
		return model.Comment{}, false
	}
	if comment.AuthorID != currentUserID(r) {
		respondError(w, r, http.StatusForbidden, CodeForbidden, "only the author may modify this comment")
		return model.Comment{}, false
	}
	return comment, true
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := s.loadOwnComment(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "text is required")
		return
	}

	updated, err := s.store.UpdateComment(r.Context(), comment.ID, req.Text)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodeCommentNotFound, "comment not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := s.loadOwnComment(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteComment(r.Context(), comment.ID); err != nil {
		respondInternal(w, r, err)
		return
	}
	s.invalidateFeeds(r)
	w.WriteHeader(http.StatusNoContent)
}
