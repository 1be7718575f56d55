package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pulse/internal/config"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
	))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 30,
		Port:            "8291",
		Env:             "test",
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func registerUser(t *testing.T, app *fiber.App, email string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/users/", "", fiber.Map{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}

func loginUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", "password123")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tokenResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "Bearer", body.TokenType)
	return body.AccessToken
}

func TestHealthEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateUserValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"valid", "new@example.com", "password123", http.StatusCreated},
		{"bad email", "not-an-email", "password123", http.StatusBadRequest},
		{"short password", "a@example.com", "pw1", http.StatusBadRequest},
		{"password without digit", "b@example.com", "passwordonly", http.StatusBadRequest},
		{"missing password", "c@example.com", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/users/", "", fiber.Map{
				"email":    tt.email,
				"password": tt.password,
			})
			require.Equal(t, tt.want, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "dupe@example.com")

	resp := doJSON(t, app, http.MethodPost, "/users/", "", fiber.Map{
		"email":    "dupe@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateUserHidesPassword(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users/", "", fiber.Map{
		"email":    "secret@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.NotContains(t, string(raw), "password123")
	require.NotContains(t, string(raw), `"password"`)
}

func TestGetUser(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "fetched@example.com")

	resp := doJSON(t, app, http.MethodGet, "/users/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var user models.User
	decodeBody(t, resp, &user)
	require.Equal(t, "fetched@example.com", user.Email)

	resp = doJSON(t, app, http.MethodGet, "/users/999", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

// Unknown account and wrong password produce byte-identical failures.
func TestLoginDoesNotRevealAccounts(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "known@example.com")

	attempt := func(email, password string) (int, string) {
		form := url.Values{}
		form.Set("username", email)
		form.Set("password", password)
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode, string(raw)
	}

	unknownStatus, unknownBody := attempt("ghost@example.com", "password123")
	wrongStatus, wrongBody := attempt("known@example.com", "wrongpass1")

	require.Equal(t, http.StatusUnauthorized, unknownStatus)
	require.Equal(t, http.StatusUnauthorized, wrongStatus)
	require.Equal(t, unknownBody, wrongBody)
}

func TestLoginWithJSONBody(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "json@example.com")

	resp := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email":    "json@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body tokenResponse
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
}

func TestPostsRequireAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/posts/", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/posts/", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPostCRUDFlow(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "author@example.com")
	token := loginUser(t, app, "author@example.com")

	// Create
	resp := doJSON(t, app, http.MethodPost, "/posts/", token, fiber.Map{
		"title":   "First post",
		"content": "Hello world",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Post
	decodeBody(t, resp, &created)
	require.Equal(t, "First post", created.Title)
	require.Equal(t, uint(1), created.UserID)
	require.True(t, created.Published)

	// Read
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Post
	decodeBody(t, resp, &fetched)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "author@example.com", fetched.User.Email)

	// Update
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/posts/%d", created.ID), token, fiber.Map{
		"title":   "Revised",
		"content": "Updated body",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Post
	decodeBody(t, resp, &updated)
	require.Equal(t, "Revised", updated.Title)

	// Delete
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/posts/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestPostOwnershipEnforced(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "owner@example.com")
	registerUser(t, app, "intruder@example.com")
	ownerToken := loginUser(t, app, "owner@example.com")
	intruderToken := loginUser(t, app, "intruder@example.com")

	resp := doJSON(t, app, http.MethodPost, "/posts/", ownerToken, fiber.Map{
		"title":   "Mine",
		"content": "Keep out",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	// Non-owner mutations are forbidden
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/posts/%d", post.ID), intruderToken, fiber.Map{
		"title":   "Stolen",
		"content": "Mine now",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/posts/%d", post.ID), intruderToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// Unknown ids are not-found for everyone; existence is checked first
	resp = doJSON(t, app, http.MethodPut, "/posts/999", intruderToken, fiber.Map{
		"title":   "Ghost",
		"content": "Ghost",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// But reads are open to any authenticated user
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), intruderToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestListPostsPagination(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "author@example.com")
	token := loginUser(t, app, "author@example.com")

	for i := 1; i <= 5; i++ {
		resp := doJSON(t, app, http.MethodPost, "/posts/", token, fiber.Map{
			"title":   fmt.Sprintf("post %d", i),
			"content": "body",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	var page []models.Post
	resp := doJSON(t, app, http.MethodGet, "/posts/?limit=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	require.Len(t, page, 2)
	require.Equal(t, uint(1), page[0].ID)
	require.Equal(t, uint(2), page[1].ID)

	resp = doJSON(t, app, http.MethodGet, "/posts/?limit=2&skip=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	require.Len(t, page, 2)
	require.Equal(t, uint(3), page[0].ID)
	require.Equal(t, uint(4), page[1].ID)

	// offset is an accepted alias for skip
	resp = doJSON(t, app, http.MethodGet, "/posts/?limit=2&offset=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	require.Len(t, page, 2)
	require.Equal(t, uint(3), page[0].ID)
	require.Equal(t, uint(4), page[1].ID)

	resp = doJSON(t, app, http.MethodGet, "/posts/?search=post%203", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	require.Len(t, page, 1)
	require.Equal(t, "post 3", page[0].Title)
}

func TestToggleLikeFlow(t *testing.T) {
	app, _, _ := newTestApp(t)

	registerUser(t, app, "author@example.com")
	registerUser(t, app, "fan@example.com")
	authorToken := loginUser(t, app, "author@example.com")
	fanToken := loginUser(t, app, "fan@example.com")

	resp := doJSON(t, app, http.MethodPost, "/posts/", authorToken, fiber.Map{
		"title":   "Like me",
		"content": "Please",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	// First toggle adds the like
	resp = doJSON(t, app, http.MethodPost, "/likes/", fanToken, fiber.Map{"post_id": post.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg map[string]string
	decodeBody(t, resp, &msg)
	require.Equal(t, "successfully added like", msg["message"])

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), fanToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var liked models.Post
	decodeBody(t, resp, &liked)
	require.Equal(t, 1, liked.Likes)

	// Second toggle removes it
	resp = doJSON(t, app, http.MethodPost, "/likes/", fanToken, fiber.Map{"post_id": post.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &msg)
	require.Equal(t, "successfully removed like", msg["message"])

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/posts/%d", post.ID), fanToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &liked)
	require.Equal(t, 0, liked.Likes)

	// Liking a missing post is a 404
	resp = doJSON(t, app, http.MethodPost, "/likes/", fanToken, fiber.Map{"post_id": 999})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestBulkDeletes(t *testing.T) {
	app, _, db := newTestApp(t)

	registerUser(t, app, "author@example.com")
	token := loginUser(t, app, "author@example.com")

	for i := 0; i < 3; i++ {
		resp := doJSON(t, app, http.MethodPost, "/posts/", token, fiber.Map{
			"title":   fmt.Sprintf("post %d", i),
			"content": "body",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodDelete, "/posts/", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.Zero(t, postCount)

	resp = doJSON(t, app, http.MethodDelete, "/users/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.Zero(t, userCount)
}
