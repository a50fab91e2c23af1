package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReview_UpdatesAggregate(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-add")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 4, "title": "Great", "comment": "Loved the worldbuilding."},
		bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code, "add review failed: %s", resp.Body.String())

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, 4, envelope.Data.Rating)
	assert.Equal(t, book.ID, envelope.Data.BookID)
	assert.NotEmpty(t, envelope.Data.ID)

	resp = ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnvelope))

	assert.Equal(t, 1, bookEnvelope.Data.ReviewCount)
	assert.InDelta(t, 4.0, bookEnvelope.Data.AverageRating, 0.001)
}

func TestAddReview_SecondFromSameUserRejected(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-dup")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 4},
		bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 2},
		bearer(token))
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Aggregate still reflects only the first review.
	resp = ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnvelope))

	assert.Equal(t, 1, bookEnvelope.Data.ReviewCount)
	assert.InDelta(t, 4.0, bookEnvelope.Data.AverageRating, 0.001)
}

func TestAddReview_RatingOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-minimal")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	// Title and comment are optional.
	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 5},
		bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code, "add review failed: %s", resp.Body.String())

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, 5, envelope.Data.Rating)
	assert.Empty(t, envelope.Data.Title)
	assert.Empty(t, envelope.Data.Comment)
}

func TestAddReview_InvalidRating(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-invalid")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	for _, rating := range []int{0, 6, -1} {
		resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
			map[string]any{"rating": rating},
			bearer(token))
		assert.Equal(t, http.StatusBadRequest, resp.Code, "rating %d", rating)

		var envelope testEnvelope[struct{}]
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "VALIDATION", envelope.Error.Code)
	}
}

func TestAddReview_BookNotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-nobook")

	resp := ts.api.Post("/api/v1/books/book-missing/reviews",
		map[string]any{"rating": 3},
		bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteReview_ByAuthor(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-review-del")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 5},
		bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	resp = ts.api.Delete("/api/v1/books/"+book.ID+"/reviews/"+envelope.Data.ID, bearer(token))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var bookEnvelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnvelope))

	assert.Zero(t, bookEnvelope.Data.ReviewCount)
	assert.Zero(t, bookEnvelope.Data.AverageRating)
}

func TestDeleteReview_StrangerForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	authorToken := ts.userToken(t, "user-review-owner")
	strangerToken := ts.userToken(t, "user-review-stranger")
	adminTok := ts.adminToken(t, "admin-review-mod")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 5},
		bearer(authorToken))
	require.Equal(t, http.StatusCreated, resp.Code)

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	reviewID := envelope.Data.ID

	resp = ts.api.Delete("/api/v1/books/"+book.ID+"/reviews/"+reviewID, bearer(strangerToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Admins may remove any review.
	resp = ts.api.Delete("/api/v1/books/"+book.ID+"/reviews/"+reviewID, bearer(adminTok))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestBookReviews_LatestFive(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	for i := 0; i < 7; i++ {
		token := ts.userToken(t, "user-latest-"+string(rune('a'+i)))
		resp := ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
			map[string]any{"rating": 3},
			bearer(token))
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	token := ts.userToken(t, "user-latest-reader")
	resp := ts.api.Get("/api/v1/books/"+book.ID+"/reviews", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Reviews []ReviewResponse `json:"reviews"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Len(t, envelope.Data.Reviews, 5)
}

func TestMyBookReview(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-my-review")
	book := ts.createTestBook(t, "Dune", "Frank Herbert")

	resp := ts.api.Get("/api/v1/books/"+book.ID+"/reviews/me", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/books/"+book.ID+"/reviews",
		map[string]any{"rating": 4, "comment": "Solid."},
		bearer(token))
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Get("/api/v1/books/"+book.ID+"/reviews/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ReviewResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, 4, envelope.Data.Rating)
	assert.Equal(t, "Solid.", envelope.Data.Comment)
}

func TestMyReviews_AcrossBooks(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token := ts.userToken(t, "user-all-mine")
	first := ts.createTestBook(t, "Dune", "Frank Herbert")
	second := ts.createTestBook(t, "Mistborn", "Brandon Sanderson")

	for _, bookID := range []string{first.ID, second.ID} {
		resp := ts.api.Post("/api/v1/books/"+bookID+"/reviews",
			map[string]any{"rating": 5},
			bearer(token))
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp := ts.api.Get("/api/v1/users/me/reviews", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Reviews []ReviewResponse `json:"reviews"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Len(t, envelope.Data.Reviews, 2)
}
