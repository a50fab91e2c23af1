package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/keywords"
)

// setupTestStore creates a temporary store for testing
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ebookd-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := New(dbPath, nil)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

// Helper function to create a test book
func createTestBook(id, title, author string, genres ...string) *domain.Book {
	now := time.Now()
	book := &domain.Book{
		Title:    title,
		Author:   author,
		Genres:   keywords.GenreSlugs(genres),
		Keywords: keywords.Generate(title, author),
		Language: "en",
	}
	book.ID = id
	book.CreatedAt = now
	book.UpdatedAt = now
	return book
}

// Helper function to create a test review
func createTestReview(id, bookID, userID string, rating int) *domain.Review {
	now := time.Now()
	review := &domain.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  rating,
		Title:   "Test Review",
		Comment: "A test review comment",
	}
	review.ID = id
	review.CreatedAt = now
	review.UpdatedAt = now
	return review
}
