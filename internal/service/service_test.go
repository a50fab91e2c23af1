package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/media/files"
	"github.com/Amir-Wake/Ebookd/internal/ratelimit"
	"github.com/Amir-Wake/Ebookd/internal/search"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

// testEnv bundles the services with their backing store for assertions.
type testEnv struct {
	store   *store.Store
	index   *search.Index
	books   *BookService
	reviews *ReviewService
	users   *UserService
	search  *SearchService
}

// setupTestEnv wires real services over a temp-dir store and search index.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ebookd-service-test-*")
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

	limiter := ratelimit.New(100, 100)

	t.Cleanup(func() {
		limiter.Stop()
		_ = index.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return &testEnv{
		store:   st,
		index:   index,
		books:   NewBookService(st, index, covers, epubs, logger),
		reviews: NewReviewService(st, limiter, logger),
		users:   NewUserService(st, logger),
		search:  NewSearchService(st, index, logger),
	}
}

func (e *testEnv) createBook(t *testing.T, title, author string, genres ...string) *domain.Book {
	t.Helper()

	book, err := e.books.CreateBook(context.Background(), BookInput{
		Title:  title,
		Author: author,
		Genres: genres,
	})
	require.NoError(t, err)
	return book
}

func (e *testEnv) createUser(t *testing.T, id string, role domain.Role) *domain.User {
	t.Helper()

	user, err := e.users.EnsureUser(context.Background(), id, id+"@example.com")
	require.NoError(t, err)

	if role != domain.RoleUser {
		user.Role = role
		require.NoError(t, e.store.UpdateUser(context.Background(), user))
	}
	return user
}
