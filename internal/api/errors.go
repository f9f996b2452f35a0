// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/blogicum/blogicum/internal/log"
)

// Machine-readable error codes. Clients branch on these, never on the
// human-readable message.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodePostNotFound     = "POST_NOT_FOUND"
	CodeCategoryNotFound = "CATEGORY_NOT_FOUND"
	CodeLocationNotFound = "LOCATION_NOT_FOUND"
	CodeCommentNotFound  = "COMMENT_NOT_FOUND"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeImageNotFound    = "IMAGE_NOT_FOUND"
	CodePageNotFound     = "PAGE_NOT_FOUND"
	CodeUsernameTaken    = "USERNAME_TAKEN"
	CodeSlugTaken        = "SLUG_TAKEN"
	CodeWeakPassword     = "WEAK_PASSWORD"
	CodeImageTooLarge    = "IMAGE_TOO_LARGE"
	CodeUnsupportedImage = "UNSUPPORTED_IMAGE_TYPE"
	CodeTooManyRequests  = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// APIError is the JSON error body returned for every failed request.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a structured error body carrying the request ID.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, APIError{
		Code:      code,
		Message:   message,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}

// respondInternal logs the error and hides the detail from the client.
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).Error().Err(err).
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Msg("request failed")
	respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error")
}

const maxBodyBytes = 1 << 20 // request bodies are small JSON documents

// decodeJSON reads and decodes a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Trailing garbage after the document is a client bug.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON document")
	}
	return nil
}
