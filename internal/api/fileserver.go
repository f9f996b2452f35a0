// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blogicum/blogicum/internal/images"
)

// handleServeImage serves stored post images. Names are resolved through the
// image store, which rejects anything outside its directory.
func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "imageName")

	path, err := s.images.Path(name)
	if err == images.ErrNotFound {
		respondError(w, r, http.StatusNotFound, CodeImageNotFound, "image not found")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}
