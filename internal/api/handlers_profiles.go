// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

// profileResponse is a user's public page: the user and their posts.
type profileResponse struct {
	User  model.User             `json:"user"`
	Posts model.Page[model.Post] `json:"posts"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := s.store.GetUserByUsername(r.Context(), username)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodeUserNotFound, "user not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	// Owners see their hidden and scheduled posts; everyone else only the
	// publicly visible ones.
	includeHidden := viewerID(r) == user.ID

	page := pageParam(r)
	size := s.pageSize()
	posts, total, err := s.store.ListUserPosts(r.Context(), user.ID, includeHidden, s.now(), size, (page-1)*size)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User:  user,
		Posts: model.NewPage(posts, page, size, total),
	})
}

func (s *Server) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByID(r.Context(), currentUserID(r))
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *Server) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}

	user, err := s.store.GetUserByID(r.Context(), currentUserID(r))
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	if req.Username != nil {
		if !usernameRe.MatchString(*req.Username) {
			respondError(w, r, http.StatusBadRequest, CodeInvalidInput,
				"username must be 1-150 characters of letters, digits and @/./+/-/_")
			return
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	updated, err := s.store.UpdateUserProfile(r.Context(), user.ID, user.Username, user.Email, user.FirstName, user.LastName)
	if err == store.ErrUsernameTaken {
		respondError(w, r, http.StatusConflict, CodeUsernameTaken, "username is already taken")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
