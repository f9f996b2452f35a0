// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/store"
)

// withSession resolves the session token (cookie or bearer) into a user ID
// on the request context. Invalid or expired tokens are treated as anonymous;
// endpoints that need authentication reject via requireAuth.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := s.store.ResolveSession(r.Context(), token)
		if err != nil {
			if err != store.ErrNotFound {
				respondInternal(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := log.ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects anonymous requests with 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := log.UserIDFromContext(r.Context()); !ok {
			respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewerID returns the authenticated user ID, or 0 for anonymous visitors.
func viewerID(r *http.Request) int64 {
	id, ok := log.UserIDFromContext(r.Context())
	if !ok {
		return 0
	}
	return id
}

// currentUserID returns the authenticated user ID. Handlers behind
// requireAuth may assume ok.
func currentUserID(r *http.Request) int64 {
	id, _ := log.UserIDFromContext(r.Context())
	return id
}

// sessionCookie builds the session cookie; maxAge <= 0 deletes it.
func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
