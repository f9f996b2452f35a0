// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFProtection(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		referer    string
		host       string
		allowed    []string
		wantStatus int
	}{
		{
			name:       "GET passes without origin",
			method:     http.MethodGet,
			host:       "blog.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST without origin passes (non-browser client)",
			method:     http.MethodPost,
			host:       "blog.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST same-origin passes",
			method:     http.MethodPost,
			origin:     "http://blog.example",
			host:       "blog.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST cross-origin rejected",
			method:     http.MethodPost,
			origin:     "http://evil.example",
			host:       "blog.example",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "POST allowed cross-origin passes",
			method:     http.MethodPost,
			origin:     "http://app.example",
			host:       "blog.example",
			allowed:    []string{"http://app.example"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "DELETE with same-origin referer passes",
			method:     http.MethodDelete,
			referer:    "http://blog.example/posts/1",
			host:       "blog.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "PATCH with foreign referer rejected",
			method:     http.MethodPatch,
			referer:    "http://evil.example/attack.html",
			host:       "blog.example",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CSRFProtection(tt.allowed)(okHandler())

			r := httptest.NewRequest(tt.method, "http://"+tt.host+"/api/v1/posts", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
