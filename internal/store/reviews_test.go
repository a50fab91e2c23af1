package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReview_UpdatesAggregate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))

	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.ReviewCount)
	assert.Equal(t, 4.0, book.AverageRating)

	require.NoError(t, store.AddReview(ctx, createTestReview("rev-2", "book-1", "user-2", 2)))

	book, err = store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 2, book.ReviewCount)
	assert.Equal(t, 3.0, book.AverageRating)
}

func TestAddReview_BookNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.AddReview(context.Background(), createTestReview("rev-1", "book-missing", "user-1", 5))
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestAddReview_OnePerUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))

	err := store.AddReview(ctx, createTestReview("rev-2", "book-1", "user-1", 5))
	assert.ErrorIs(t, err, ErrReviewExists)

	// The failed insert must not have touched the aggregate.
	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.ReviewCount)
	assert.Equal(t, 4.0, book.AverageRating)
}

func TestDeleteReview_UpdatesAggregate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 5)))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-2", "book-1", "user-2", 3)))

	require.NoError(t, store.DeleteReview(ctx, "book-1", "rev-1"))

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.ReviewCount)
	assert.Equal(t, 3.0, book.AverageRating)

	_, err = store.GetReview(ctx, "rev-1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteReview_LastResetsAverage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 5)))

	require.NoError(t, store.DeleteReview(ctx, "book-1", "rev-1"))

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 0, book.ReviewCount)
	assert.Equal(t, 0.0, book.AverageRating)

	// The user can review again after deleting.
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-2", "book-1", "user-1", 2)))
	book, err = store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.ReviewCount)
	assert.Equal(t, 2.0, book.AverageRating)
}

func TestDeleteReview_WrongBook(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-2", "Other", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))

	// A review is only addressable through its own book.
	err := store.DeleteReview(ctx, "book-2", "rev-1")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.ReviewCount)
}

func TestDeleteReview_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))

	err := store.DeleteReview(ctx, "book-1", "rev-missing")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestGetUserReview(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))

	review, err := store.GetUserReview(ctx, "book-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "rev-1", review.ID)
	assert.Equal(t, 4, review.Rating)

	_, err = store.GetUserReview(ctx, "book-1", "user-2")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestLatestReviews_NewestFirstLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		review := createTestReview(fmt.Sprintf("rev-%d", i), "book-1", fmt.Sprintf("user-%d", i), 3)
		review.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.AddReview(ctx, review))
	}

	reviews, err := store.LatestReviews(ctx, "book-1", 5)
	require.NoError(t, err)
	require.Len(t, reviews, 5)
	assert.Equal(t, "rev-6", reviews[0].ID)
	assert.Equal(t, "rev-2", reviews[4].ID)
}

func TestListUserReviews(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-2", "Other", "Author")))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-1", "book-1", "user-1", 4)))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-2", "book-2", "user-1", 5)))
	require.NoError(t, store.AddReview(ctx, createTestReview("rev-3", "book-1", "user-2", 2)))

	reviews, err := store.ListUserReviews(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

// TestAddReview_Concurrent exercises the optimistic-concurrency retry: many
// goroutines review the same book at once and every rating must land in the
// aggregate exactly once.
func TestAddReview_Concurrent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateBook(ctx, createTestBook("book-1", "Title", "Author")))

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			review := createTestReview(fmt.Sprintf("rev-%d", i), "book-1", fmt.Sprintf("user-%d", i), (i%5)+1)
			errs[i] = store.AddReview(ctx, review)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	sum := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			sum += (i % 5) + 1
		}
	}
	require.Positive(t, succeeded)

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, succeeded, book.ReviewCount)
	assert.InDelta(t, float64(sum)/float64(succeeded), book.AverageRating, 0.011)
}
