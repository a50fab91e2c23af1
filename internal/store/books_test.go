package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-1", "The Great Gatsby", "F. Scott Fitzgerald", "Fiction")

	err := store.CreateBook(ctx, book)
	require.NoError(t, err)

	got, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "The Great Gatsby", got.Title)
	assert.Equal(t, "F. Scott Fitzgerald", got.Author)
	assert.Equal(t, []string{"fiction"}, got.Genres)
	assert.Equal(t, 0, got.ReviewCount)
	assert.Equal(t, 0.0, got.AverageRating)
}

func TestCreateBook_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-1", "Title", "Author")

	require.NoError(t, store.CreateBook(ctx, book))
	err := store.CreateBook(ctx, book)
	assert.ErrorIs(t, err, ErrBookExists)
}

func TestGetBook_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetBook(context.Background(), "book-missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestUpdateBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-1", "Old Title", "Author", "History")
	require.NoError(t, store.CreateBook(ctx, book))

	updated := createTestBook("book-1", "New Title", "Author", "Fiction")
	require.NoError(t, store.UpdateBook(ctx, updated))

	got, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, []string{"fiction"}, got.Genres)

	// Old genre index entry is gone, new one works.
	history, err := store.BooksByGenre(ctx, "history", 8)
	require.NoError(t, err)
	assert.Empty(t, history)

	fiction, err := store.BooksByGenre(ctx, "fiction", 8)
	require.NoError(t, err)
	require.Len(t, fiction, 1)
	assert.Equal(t, "book-1", fiction[0].ID)
}

func TestUpdateBook_PreservesAggregates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-1", "Title", "Author")
	require.NoError(t, store.CreateBook(ctx, book))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))

	// A catalog edit must not touch the derived rating fields.
	edit := createTestBook("book-1", "Edited Title", "Author")
	edit.ReviewCount = 99
	edit.AverageRating = 1.23
	require.NoError(t, store.UpdateBook(ctx, edit))

	got, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Edited Title", got.Title)
	assert.Equal(t, 1, got.ReviewCount)
	assert.Equal(t, 4.0, got.AverageRating)
}

func TestUpdateBook_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.UpdateBook(context.Background(), createTestBook("book-missing", "T", "A"))
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	book := createTestBook("book-1", "Title", "Author", "Fiction")
	require.NoError(t, store.CreateBook(ctx, book))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 5)))

	require.NoError(t, store.DeleteBook(ctx, "book-1"))

	_, err := store.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	// Reviews of the book are gone too.
	_, err = store.GetReview(ctx, "rev-1")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	_, err = store.GetUserReview(ctx, "book-1", "user-1")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	byGenre, err := store.BooksByGenre(ctx, "fiction", 8)
	require.NoError(t, err)
	assert.Empty(t, byGenre)
}

func TestDeleteBook_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeleteBook(context.Background(), "book-missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestListBooks_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		book := createTestBook(fmt.Sprintf("book-%d", i), fmt.Sprintf("Title %d", i), "Author")
		book.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateBook(ctx, book))
	}

	result, err := store.ListBooks(ctx, PageParams{Page: 1, PageSize: 3}, "")
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	assert.True(t, result.HasMore)
	assert.Equal(t, "book-4", result.Items[0].ID)
	assert.Equal(t, "book-3", result.Items[1].ID)
	assert.Equal(t, "book-2", result.Items[2].ID)

	result, err = store.ListBooks(ctx, PageParams{Page: 2, PageSize: 3}, "")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.False(t, result.HasMore)
	assert.Equal(t, "book-1", result.Items[0].ID)
	assert.Equal(t, "book-0", result.Items[1].ID)
}

func TestListBooks_Search(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "The Great Gatsby", "F. Scott Fitzgerald")))
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-2", "Moby Dick", "Herman Melville")))

	result, err := store.ListBooks(ctx, PageParams{}, "gatsby")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "book-1", result.Items[0].ID)

	result, err = store.ListBooks(ctx, PageParams{}, "melville")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "book-2", result.Items[0].ID)

	result, err = store.ListBooks(ctx, PageParams{}, "nothing matches this")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestNewestBooks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 6; i++ {
		book := createTestBook(fmt.Sprintf("book-%d", i), fmt.Sprintf("Title %d", i), "Author")
		book.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateBook(ctx, book))
	}

	books, err := store.NewestBooks(ctx, 4)
	require.NoError(t, err)
	require.Len(t, books, 4)
	assert.Equal(t, "book-5", books[0].ID)
	assert.Equal(t, "book-2", books[3].ID)
}

func TestBooksByGenre_Limit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		book := createTestBook(fmt.Sprintf("book-%d", i), fmt.Sprintf("Title %d", i), "Author", "Fantasy")
		require.NoError(t, store.CreateBook(ctx, book))
	}

	books, err := store.BooksByGenre(ctx, "fantasy", 8)
	require.NoError(t, err)
	assert.Len(t, books, 8)
}

func TestListAllBooks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateBook(ctx, createTestBook(fmt.Sprintf("book-%d", i), "Title", "Author")))
	}

	books, err := store.ListAllBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 3)
}
