package api

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amir-Wake/Ebookd/internal/auth"
	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/media/files"
	"github.com/Amir-Wake/Ebookd/internal/ratelimit"
	"github.com/Amir-Wake/Ebookd/internal/search"
	"github.com/Amir-Wake/Ebookd/internal/service"
	"github.com/Amir-Wake/Ebookd/internal/store"
	"github.com/Amir-Wake/Ebookd/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
	tokens  *auth.TokenService
}

// setupTestServer wires real services over a temp-dir store behind a
// humatest API, mirroring the production construction minus middleware.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ebookd-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(filepath.Join(tmpDir, "db"), logger)
	require.NoError(t, err)

	index, err := search.NewIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	covers, err := files.NewCoverStorage(filepath.Join(tmpDir, "media"))
	require.NoError(t, err)
	epubs, err := files.NewEpubStorage(filepath.Join(tmpDir, "media"))
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(hex.EncodeToString(authKey), 15*time.Minute)
	require.NoError(t, err)

	limiter := ratelimit.New(100, 100)

	services := &Services{
		Book:   service.NewBookService(st, index, covers, epubs, logger),
		Review: service.NewReviewService(st, limiter, logger),
		User:   service.NewUserService(st, logger),
		Search: service.NewSearchService(st, index, logger),
	}

	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Ebookd API Test", apiVersion)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:     st,
		services:  services,
		tokens:    tokens,
		validator: validation.New(),
		router:    router,
		api:       api,
		logger:    logger,
	}

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerUserRoutes()
	s.registerFileRoutes()
	s.registerSearchRoutes()

	testAPI := humatest.Wrap(t, api)

	cleanup := func() {
		limiter.Stop()
		_ = index.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     testAPI,
		cleanup: cleanup,
		tokens:  tokens,
	}
}

// userToken creates an account and returns a bearer token for it.
func (ts *testServer) userToken(t *testing.T, userID string) string {
	t.Helper()

	user, err := ts.services.User.EnsureUser(context.Background(), userID, userID+"@example.com")
	require.NoError(t, err)

	token, err := ts.tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

// adminToken creates an admin account and returns a bearer token for it.
func (ts *testServer) adminToken(t *testing.T, userID string) string {
	t.Helper()

	user, err := ts.services.User.EnsureUser(context.Background(), userID, userID+"@example.com")
	require.NoError(t, err)

	user.Role = domain.RoleAdmin
	require.NoError(t, ts.store.UpdateUser(context.Background(), user))

	token, err := ts.tokens.GenerateAccessToken(user)
	require.NoError(t, err)
	return token
}

// createTestBook creates a book directly through the service layer.
func (ts *testServer) createTestBook(t *testing.T, title, author string, genres ...string) *domain.Book {
	t.Helper()

	book, err := ts.services.Book.CreateBook(context.Background(), service.BookInput{
		Title:  title,
		Author: author,
		Genres: genres,
	})
	require.NoError(t, err)
	return book
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// === Tests ===

func TestRequests_WithoutToken(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	paths := []string{
		"/api/v1/books",
		"/api/v1/books/newest",
		"/api/v1/users/me",
		"/api/v1/search",
	}
	for _, path := range paths {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "GET %s", path)
	}
}

func TestRequests_WithGarbageToken(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/books", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/books", "Authorization: Basic abc")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminRoutes_RejectRegularUsers(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-regular")

	resp := ts.api.Post("/api/v1/books",
		map[string]any{"title": "T", "author": "A"},
		bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/users", bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/search/reindex", bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"healthy"`)
}
