// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/health"
	"github.com/blogicum/blogicum/internal/images"
	"github.com/blogicum/blogicum/internal/log"
	"github.com/blogicum/blogicum/internal/model"
	"github.com/blogicum/blogicum/internal/store"
)

type testServer struct {
	*Server
	handler http.Handler
	store   *store.Store
	cfg     config.AppConfig
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.DBPath = filepath.Join(cfg.DataDir, "blog.db")
	cfg.ImagesDir = filepath.Join(cfg.DataDir, "images")
	cfg.BcryptCost = 4
	cfg.LoginRatePerIP = 0 // individual tests re-enable throttling
	cfg.RateLimitRPM = 0

	st, err := store.New(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	img, err := images.NewStore(cfg.ImagesDir, cfg.MaxImageBytes, log.WithComponent("images"))
	require.NoError(t, err)

	hm := health.NewManager("test")
	hm.RegisterChecker(&health.PingChecker{ComponentName: "database", PingFn: st.Ping})

	s := New(config.NewHolder(cfg, ""), st, img, nil, hm)
	return &testServer{Server: s, handler: s.Routes(), store: st, cfg: cfg}
}

// do issues a JSON request against the full route tree.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.RemoteAddr = "192.0.2.1:4242"
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// signup registers a user and returns a live session token.
func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, w.Code, "login: %s", w.Body.String())
	return decodeBody[loginResponse](t, w).Token
}

// createCategory makes a published category through the API.
func (ts *testServer) createCategory(t *testing.T, token, title string) model.Category {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, w.Code, "create category: %s", w.Body.String())
	return decodeBody[model.Category](t, w)
}

func (ts *testServer) createPost(t *testing.T, token string, categoryID int64, title string) model.Post {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title":       title,
		"text":        "body of " + title,
		"category_id": categoryID,
	})
	require.Equal(t, http.StatusCreated, w.Code, "create post: %s", w.Body.String())
	return decodeBody[model.Post](t, w)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid username characters",
			body:       map[string]any{"username": "no spaces!", "password": "long enough pw"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidInput,
		},
		{
			name:       "weak password",
			body:       map[string]any{"username": "alice", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeWeakPassword,
		},
		{
			name:       "valid",
			body:       map[string]any{"username": "alice", "password": "long enough pw"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate username",
			body:       map[string]any{"username": "alice", "password": "long enough pw"},
			wantStatus: http.StatusConflict,
			wantCode:   CodeUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody[APIError](t, w).Code)
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "bob")

	// Wrong password and unknown user look identical.
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "bob", "password": "wrong password!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "nobody", "password": "wrong password!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The token works, then logout kills it.
	w = ts.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginThrottling(t *testing.T) {
	ts := newTestServer(t)
	ts.logins = newLoginLimiter(1, 2)

	codes := make(map[int]int)
	for i := 0; i < 5; i++ {
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"username": "ghost", "password": "whatever else!",
		})
		codes[w.Code]++
	}
	assert.Positive(t, codes[http.StatusTooManyRequests], "burst must hit the limiter")
}

func TestLoginUnknownUserPaysHashingCost(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "sam")

	// The pad hash must be a genuine bcrypt hash, otherwise the comparison
	// for an unknown username returns early and timing leaks existence.
	require.True(t, auth.VerifyPassword(ts.dummyHash, loginTimingPad))

	wrongPw := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "sam", "password": "wrong password!",
	})
	unknown := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "nobody", "password": "wrong password!",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)

	a := decodeBody[APIError](t, wrongPw)
	b := decodeBody[APIError](t, unknown)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Message, b.Message)
}

func TestLoginThrottleFollowsConfigReload(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "sam")

	bad := map[string]any{"username": "sam", "password": "wrong password!"}
	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", "", bad)
	require.Equal(t, http.StatusUnauthorized, w.Code, "throttling starts disabled")

	t.Setenv("BLOGICUM_LOGIN_RATE", "0.001")
	t.Setenv("BLOGICUM_LOGIN_BURST", "1")
	require.NoError(t, ts.Server.cfg.Reload(context.Background()))

	// The reload listener applies the new limit asynchronously.
	assert.Eventually(t, func() bool {
		return ts.do(t, http.MethodPost, "/api/v1/auth/login", "", bad).Code == http.StatusTooManyRequests
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPostLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "carol")
	cat := ts.createCategory(t, token, "Travel")

	// Anonymous creation is rejected.
	w := ts.do(t, http.MethodPost, "/api/v1/posts", "", map[string]any{
		"title": "x", "text": "y",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	post := ts.createPost(t, token, cat.ID, "First trip")
	assert.Equal(t, "carol", post.Author)
	assert.Equal(t, "Travel", post.Category)

	// Public detail view includes comments.
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeBody[postDetail](t, w)
	assert.Equal(t, post.ID, detail.ID)
	assert.Empty(t, detail.Comments)

	// Author edits.
	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/posts/%d", post.ID), token, map[string]any{
		"title": "First trip, revised",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "First trip, revised", decodeBody[model.Post](t, w).Title)

	// A different user may read but not modify.
	intruder := ts.signup(t, "dave")
	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/posts/%d", post.ID), intruder, map[string]any{
		"title": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostRejectsDanglingReferences(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "frank")
	cat := ts.createCategory(t, token, "Real")

	w := ts.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title": "orphan", "text": "body", "category_id": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidInput, decodeBody[APIError](t, w).Code)

	post := ts.createPost(t, token, cat.ID, "valid")
	w = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/posts/%d", post.ID), token, map[string]any{
		"location_id": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidInput, decodeBody[APIError](t, w).Code)
}

func TestHiddenPostVisibility(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "erin")
	cat := ts.createCategory(t, token, "Diary")

	// Scheduled for the future: only the author sees it.
	w := ts.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title":       "Tomorrow",
		"text":        "not yet",
		"category_id": cat.ID,
		"pub_date":    time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	scheduled := decodeBody[model.Post](t, w)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", scheduled.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "anonymous visitor must not see a scheduled post")

	stranger := ts.signup(t, "frank")
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", scheduled.ID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", scheduled.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code, "authors always see their own posts")

	// Not in the public feed either.
	w = ts.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeBody[model.Page[model.Post]](t, w)
	assert.Zero(t, feed.TotalItems)
}

func TestFeedPagination(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "grace")
	cat := ts.createCategory(t, token, "Notes")

	for i := 0; i < 13; i++ {
		ts.createPost(t, token, cat.ID, fmt.Sprintf("note %02d", i))
	}

	w := ts.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page1 := decodeBody[model.Page[model.Post]](t, w)
	assert.Equal(t, 13, page1.TotalItems)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Len(t, page1.Items, 10)

	w = ts.do(t, http.MethodGet, "/api/v1/posts?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page2 := decodeBody[model.Page[model.Post]](t, w)
	assert.Len(t, page2.Items, 3)

	// No overlap between pages.
	seen := make(map[int64]bool)
	for _, p := range page1.Items {
		seen[p.ID] = true
	}
	for _, p := range page2.Items {
		assert.False(t, seen[p.ID], "post %d appears on both pages", p.ID)
	}
}

func TestCommentFlow(t *testing.T) {
	ts := newTestServer(t)
	author := ts.signup(t, "henry")
	cat := ts.createCategory(t, author, "Food")
	post := ts.createPost(t, author, cat.ID, "Recipe")

	commenter := ts.signup(t, "iris")

	// Anonymous comments are rejected.
	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), "", map[string]any{
		"text": "hi",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), commenter, map[string]any{
		"text": "looks delicious",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decodeBody[model.Comment](t, w)
	assert.Equal(t, "iris", comment.Author)

	// Comment count shows up in the feed.
	w = ts.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeBody[model.Page[model.Post]](t, w)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, 1, feed.Items[0].CommentCount)

	// Only the comment author may edit or delete it.
	commentPath := fmt.Sprintf("/api/v1/posts/%d/comments/%d", post.ID, comment.ID)
	w = ts.do(t, http.MethodPatch, commentPath, author, map[string]any{"text": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPatch, commentPath, commenter, map[string]any{"text": "even better"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "even better", decodeBody[model.Comment](t, w).Text)

	w = ts.do(t, http.MethodDelete, commentPath, commenter, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]model.Comment](t, w))
}

func TestCategoryFeedAndUnpublished(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "judy")
	cat := ts.createCategory(t, token, "Hiking")
	ts.createPost(t, token, cat.ID, "Trail report")

	w := ts.do(t, http.MethodGet, "/api/v1/categories/"+cat.Slug+"/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decodeBody[categoryFeed](t, w)
	assert.Equal(t, cat.ID, feed.Category.ID)
	assert.Equal(t, 1, feed.Posts.TotalItems)

	// Unpublishing the category hides the page and its posts.
	require.NoError(t, ts.store.SetCategoryPublished(t.Context(), cat.ID, false))

	w = ts.do(t, http.MethodGet, "/api/v1/categories/"+cat.Slug+"/posts", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]model.Category](t, w))

	w = ts.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decodeBody[model.Page[model.Post]](t, w).TotalItems)
}

func TestCategorySlugHandling(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "kate")

	cat := ts.createCategory(t, token, "Горные походы")
	assert.Equal(t, "gornye-pokhody", cat.Slug)

	// Duplicate slug conflicts.
	w := ts.do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{
		"title": "Other", "slug": cat.Slug,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Malformed explicit slug is rejected.
	w = ts.do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{
		"title": "Other", "slug": "Bad Slug!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationDetail(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "guide")

	w := ts.do(t, http.MethodPost, "/api/v1/locations", token, map[string]any{"name": "Mountains"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loc := decodeBody[model.Location](t, w)

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d", loc.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Mountains", decodeBody[model.Location](t, w).Name)

	w = ts.do(t, http.MethodGet, "/api/v1/locations/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeLocationNotFound, decodeBody[APIError](t, w).Code)

	// Unpublished locations are withheld like unpublished categories.
	hidden, err := ts.store.CreateLocation(context.Background(), model.Location{Name: "Closed trail"})
	require.NoError(t, err)
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/locations/%d", hidden.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileHiddenPosts(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.signup(t, "laura")
	cat := ts.createCategory(t, owner, "Mixed")

	ts.createPost(t, owner, cat.ID, "public post")
	w := ts.do(t, http.MethodPost, "/api/v1/posts", owner, map[string]any{
		"title":        "draft",
		"text":         "unfinished",
		"category_id":  cat.ID,
		"is_published": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Strangers see only the published post.
	w = ts.do(t, http.MethodGet, "/api/v1/profiles/laura", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody[profileResponse](t, w)
	assert.Equal(t, 1, profile.Posts.TotalItems)

	// The owner sees both.
	w = ts.do(t, http.MethodGet, "/api/v1/profiles/laura", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile = decodeBody[profileResponse](t, w)
	assert.Equal(t, 2, profile.Posts.TotalItems)

	w = ts.do(t, http.MethodGet, "/api/v1/profiles/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileUpdate(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "mike")
	ts.signup(t, "nina")

	w := ts.do(t, http.MethodPatch, "/api/v1/profile", token, map[string]any{
		"first_name": "Mike",
		"last_name":  "Stone",
	})
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody[model.User](t, w)
	assert.Equal(t, "Mike", user.FirstName)
	assert.Equal(t, "mike", user.Username, "unspecified fields keep their values")

	// Taking another user's name conflicts.
	w = ts.do(t, http.MethodPatch, "/api/v1/profile", token, map[string]any{
		"username": "nina",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStaticPages(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/pages/about", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody[staticPage](t, w).Content)

	w = ts.do(t, http.MethodGet, "/api/v1/pages/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticPageOverride(t *testing.T) {
	ts := newTestServer(t)

	pagesDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "rules.md"), []byte("# Custom rules"), 0o600))

	cfg := ts.cfg
	cfg.PagesDir = pagesDir
	ts.Server.cfg = config.NewHolder(cfg, "")

	w := ts.do(t, http.MethodGet, "/api/v1/pages/rules", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# Custom rules", decodeBody[staticPage](t, w).Content)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
