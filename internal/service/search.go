package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/search"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

// SearchService fronts the full-text index: rich queries with filters and
// facets, plus full reindexing from the document store.
type SearchService struct {
	store  *store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(st *store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		index:  index,
		logger: logger,
	}
}

// Search executes a full-text query against the book index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultParams().Limit
	}
	if params.SortBy == "" {
		params.SortBy = "relevance"
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failed")
	}
	return result, nil
}

// Reindex drops the index and rebuilds it from every book in the store.
// Returns the number of documents indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "load books for reindex")
	}

	if err := s.index.Rebuild(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "rebuild index")
	}

	docs := make([]*search.Document, 0, len(books))
	for _, book := range books {
		docs = append(docs, search.FromBook(book))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "index documents")
	}

	s.logger.Info("reindexed catalog",
		"documents", len(docs),
		"duration", time.Since(start),
	)

	return len(docs), nil
}

// SyncOnStartup brings a freshly-rebuilt index back in line with the store.
// NewIndex discards the on-disk index when the mapping version changes, in
// which case the document count is zero while the store is not.
func (s *SearchService) SyncOnStartup(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "document count")
	}
	if count > 0 {
		return nil
	}

	indexed, err := s.Reindex(ctx)
	if err != nil {
		return err
	}
	if indexed > 0 {
		s.logger.Info("populated empty search index on startup", "documents", indexed)
	}
	return nil
}

// DocumentCount reports how many books the index currently holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
