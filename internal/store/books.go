package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/keywords"
)

// CreateBook creates a new book together with its index entries.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	key := bookKey(book.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check book exists: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	err = s.update(func(txn *badger.Txn) error {
		if err := txnSet(txn, key, book); err != nil {
			return err
		}

		if err := txn.Set(bookCreatedIdxKey(book.CreatedAt, book.ID), []byte(book.ID)); err != nil {
			return err
		}

		for _, g := range book.Genres {
			if err := txn.Set(bookGenreIdxKey(g, book.ID), []byte(book.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.String("author", book.Author),
		)
	}

	s.indexBookAsync(book)
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	err := s.get(bookKey(id), &book)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

// UpdateBook updates an existing book and keeps its genre index in sync.
// CreatedAt never changes, so the created index entry stays put.
//
// ReviewCount and AverageRating are preserved from the stored document: they
// belong to the review transactions, not to catalog edits.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	key := bookKey(book.ID)

	err := s.update(func(txn *badger.Txn) error {
		var old domain.Book
		if err := txnGet(txn, key, &old); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		book.CreatedAt = old.CreatedAt
		book.ReviewCount = old.ReviewCount
		book.AverageRating = old.AverageRating
		book.Touch()

		if err := txnSet(txn, key, book); err != nil {
			return err
		}

		// Diff genre index entries.
		oldGenres := make(map[string]bool, len(old.Genres))
		for _, g := range old.Genres {
			oldGenres[g] = true
		}
		newGenres := make(map[string]bool, len(book.Genres))
		for _, g := range book.Genres {
			newGenres[g] = true
		}
		for g := range oldGenres {
			if !newGenres[g] {
				if err := txn.Delete(bookGenreIdxKey(g, book.ID)); err != nil {
					return err
				}
			}
		}
		for g := range newGenres {
			if !oldGenres[g] {
				if err := txn.Set(bookGenreIdxKey(g, book.ID), []byte(book.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("update book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book updated", "id", book.ID, "title", book.Title)
	}

	s.indexBookAsync(book)
	return nil
}

// DeleteBook deletes a book, its index entries, and all of its reviews in a
// single transaction.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	err := s.update(func(txn *badger.Txn) error {
		var book domain.Book
		if err := txnGet(txn, bookKey(id), &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if err := txn.Delete(bookKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(bookCreatedIdxKey(book.CreatedAt, book.ID)); err != nil {
			return err
		}
		for _, g := range book.Genres {
			if err := txn.Delete(bookGenreIdxKey(g, book.ID)); err != nil {
				return err
			}
		}

		return s.deleteBookReviews(txn, id)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("book deleted", "id", id)
	}

	s.deindexBookAsync(id)
	return nil
}

// BookExists checks if a book exists by ID.
func (s *Store) BookExists(ctx context.Context, id string) (bool, error) {
	return s.exists(bookKey(id))
}

// ListBooks returns books ordered newest-first with offset pagination.
// When search is non-empty, results are restricted to books whose keyword set
// matches every term of the query.
func (s *Store) ListBooks(ctx context.Context, params PageParams, search string) (*PagedResult[*domain.Book], error) {
	params.Validate()

	var books []*domain.Book
	hasMore := false

	err := s.db.View(func(txn *badger.Txn) error {
		skip := params.Offset()
		matched := 0

		return s.iterateNewest(txn, func(book *domain.Book) (bool, error) {
			if search != "" && !keywords.Matches(book.Keywords, search) {
				return true, nil
			}
			if skip > 0 {
				skip--
				return true, nil
			}
			if matched == params.PageSize {
				hasMore = true
				return false, nil
			}
			books = append(books, book)
			matched++
			return true, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &PagedResult[*domain.Book]{
		Items:    books,
		Page:     params.Page,
		PageSize: params.PageSize,
		HasMore:  hasMore,
	}, nil
}

// NewestBooks returns the limit most recently created books.
func (s *Store) NewestBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		return nil, nil
	}

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		return s.iterateNewest(txn, func(book *domain.Book) (bool, error) {
			books = append(books, book)
			return len(books) < limit, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("newest books: %w", err)
	}
	return books, nil
}

// BooksByGenre returns up to limit books carrying the given genre slug,
// newest-first.
func (s *Store) BooksByGenre(ctx context.Context, genre string, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Collect IDs from the genre index, then order by creation time using the
	// newest-first scan. The genre index is unordered so membership is looked
	// up from a set.
	ids := make(map[string]bool)
	prefix := []byte(bookGenreIdxPrefix + genre + ":")

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids[idFromIndexKey(it.Item().Key())] = true
		}
		it.Close()

		if len(ids) == 0 {
			return nil
		}

		return s.iterateNewest(txn, func(book *domain.Book) (bool, error) {
			if !ids[book.ID] {
				return true, nil
			}
			books = append(books, book)
			return len(books) < limit, nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("books by genre: %w", err)
	}
	return books, nil
}

// ListAllBooks returns all books (non-paginated). Used for search index
// rebuilds and bulk export, not request serving.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	prefix := []byte(bookPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}
				books = append(books, &book)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}

	return books, nil
}

// iterateNewest walks books in reverse creation order via the created index,
// calling fn for each. fn returns false to stop early.
func (s *Store) iterateNewest(txn *badger.Txn, fn func(*domain.Book) (bool, error)) error {
	prefix := []byte(bookCreatedIdxPrefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = true
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	// Reverse iteration seeks to the last possible key under the prefix.
	seek := append(append([]byte{}, prefix...), 0xFF)
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		id := idFromIndexKey(it.Item().Key())

		var book domain.Book
		if err := txnGet(txn, bookKey(id), &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry, skip it.
				continue
			}
			return err
		}

		cont, err := fn(&book)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}
