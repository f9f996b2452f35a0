// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strings"

	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.store.ListPublishedLocations(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// handleGetLocation serves one location; unpublished ones are withheld like
// unpublished categories.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "locationID")
	if !ok {
		respondError(w, r, http.StatusNotFound, CodeLocationNotFound, "location not found")
		return
	}

	location, err := s.store.GetLocation(r.Context(), id)
	if err == store.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodeLocationNotFound, "location not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	if !location.IsPublished {
		respondError(w, r, http.StatusNotFound, CodeLocationNotFound, "location not found")
		return
	}

	writeJSON(w, http.StatusOK, location)
}

type locationRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "name is required")
		return
	}

	location, err := s.store.CreateLocation(r.Context(), model.Location{
		Name:        req.Name,
		IsPublished: true,
	})
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, location)
}
