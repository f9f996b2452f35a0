// SPDX-License-Identifier: MIT

package api

import (
	"net"
	"net/http"
	"regexp"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/metrics"
	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

// usernameRe allows letters, digits and @ . + - _ up to 150 characters.
var usernameRe = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}

	if !usernameRe.MatchString(req.Username) {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput,
			"username must be 1-150 characters of letters, digits and @/./+/-/_")
		return
	}
	if err := auth.CheckPasswordPolicy(req.Password); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeWeakPassword, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Current().BcryptCost)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err == store.ErrUsernameTaken {
		respondError(w, r, http.StatusConflict, CodeUsernameTaken, "username is already taken")
		return
	}
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	metrics.Registrations.Inc()
	log.FromContext(r.Context()).Info().
		Int64(log.FieldUserID, user.ID).
		Str("username", user.Username).
		Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

// loginTimingPad is hashed once at startup into Server.dummyHash; see
// handleLogin.
const loginTimingPad = "blogicum-login-timing-pad"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.logins.allow(clientIP(r)) {
		metrics.Logins.WithLabelValues("throttled").Inc()
		respondError(w, r, http.StatusTooManyRequests, CodeTooManyRequests,
			"too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "malformed JSON body")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil && err != store.ErrNotFound {
		respondInternal(w, r, err)
		return
	}

	// Unknown usernames pay for a full bcrypt comparison against the dummy
	// hash, so timing does not reveal whether the account exists. The failure
	// response is identical either way.
	hash := s.dummyHash
	if err == nil {
		hash = user.PasswordHash
	}
	passwordOK := auth.VerifyPassword(hash, req.Password)
	if err == store.ErrNotFound || !passwordOK {
		metrics.Logins.WithLabelValues("failure").Inc()
		respondError(w, r, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password")
		return
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		respondInternal(w, r, err)
		return
	}
	ttl := s.cfg.Current().SessionTTL
	if err := s.store.CreateSession(r.Context(), token, user.ID, ttl); err != nil {
		respondInternal(w, r, err)
		return
	}

	metrics.Logins.WithLabelValues("success").Inc()
	log.FromContext(r.Context()).Info().
		Int64(log.FieldUserID, user.ID).
		Str("username", user.Username).
		Msg("user logged in")

	http.SetCookie(w, sessionCookie(token, int(ttl.Seconds())))
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.ExtractToken(r); token != "" {
		if err := s.store.DeleteSession(r.Context(), token); err != nil {
			respondInternal(w, r, err)
			return
		}
	}
	http.SetCookie(w, sessionCookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

// clientIP extracts the remote IP, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
