package search

import (
	"context"

	"github.com/Amir-Wake/Ebookd/internal/domain"
)

// Indexer adapts Index to the store's SearchIndexer interface so the store
// can push document changes without importing this package's types.
type Indexer struct {
	index *Index
}

// NewIndexer wraps an Index for use by the store.
func NewIndexer(index *Index) *Indexer {
	return &Indexer{index: index}
}

// IndexBook converts the book to a search document and indexes it.
func (a *Indexer) IndexBook(_ context.Context, book *domain.Book) error {
	return a.index.IndexDocument(FromBook(book))
}

// DeleteBook removes the book from the index.
func (a *Indexer) DeleteBook(_ context.Context, bookID string) error {
	return a.index.DeleteDocument(bookID)
}
