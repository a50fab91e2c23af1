// Package store persists catalog documents in a Badger key-value database.
//
// Documents are stored as JSON under typed key prefixes ("book:", "review:",
// "user:") with secondary index keys kept in the same transaction as the
// document they point at.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Amir-Wake/Ebookd/internal/domain"
)

// maxTxnRetries bounds how often a conflicting transaction is retried before
// the error is surfaced to the caller.
const maxTxnRetries = 5

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation. Index updates run asynchronously so they never block or
// fail a store operation.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping verifies the database is readable. A missing key is fine, the read
// going through is what matters.
func (s *Store) Ping(_ context.Context) error {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("ping"))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// update runs fn in a read-write transaction, retrying a bounded number of
// times when Badger reports an optimistic-concurrency conflict. fn must be
// safe to re-run from scratch: all reads it depends on happen inside the
// transaction.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("transaction conflict, retrying", "attempt", attempt+1)
		}
	}
	return fmt.Errorf("transaction conflicted %d times: %w", maxTxnRetries, err)
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// txnGet unmarshals the value at key within an open transaction.
func txnGet(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// txnSet marshals value and writes it at key within an open transaction.
func txnSet(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// indexBookAsync pushes a book to the search index without blocking the
// caller. Index failures are logged, never surfaced.
func (s *Store) indexBookAsync(book *domain.Book) {
	if s.searchIndexer == nil {
		return
	}
	b := *book
	go func() {
		if err := s.searchIndexer.IndexBook(context.Background(), &b); err != nil && s.logger != nil {
			s.logger.Warn("failed to index book", "id", b.ID, "error", err)
		}
	}()
}

// deindexBookAsync removes a book from the search index without blocking.
func (s *Store) deindexBookAsync(bookID string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeleteBook(context.Background(), bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to deindex book", "id", bookID, "error", err)
		}
	}()
}
