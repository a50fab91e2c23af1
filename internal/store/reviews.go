package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Amir-Wake/Ebookd/internal/domain"
)

// AddReview writes a review and folds its rating into the book's aggregate in
// one transaction. Either both the review document and the updated book are
// committed, or neither is.
//
// The book read, the uniqueness check, the review write, and the aggregate
// update all happen inside the same transaction, so a concurrent review on
// the same book conflicts and is retried against the fresh aggregate.
func (s *Store) AddReview(ctx context.Context, review *domain.Review) error {
	uniqueKey := reviewUniqueIdxKey(review.BookID, review.UserID)

	var book domain.Book
	err := s.update(func(txn *badger.Txn) error {
		book = domain.Book{}
		if err := txnGet(txn, bookKey(review.BookID), &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		// One review per user per book.
		if _, err := txn.Get(uniqueKey); err == nil {
			return ErrReviewExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txnSet(txn, reviewKey(review.ID), review); err != nil {
			return err
		}
		if err := txn.Set(uniqueKey, []byte(review.ID)); err != nil {
			return err
		}
		if err := txn.Set(reviewBookIdxKey(review.BookID, review.CreatedAt, review.ID), []byte(review.ID)); err != nil {
			return err
		}
		if err := txn.Set(reviewOwnerIdxKey(review.UserID, review.ID), []byte(review.ID)); err != nil {
			return err
		}

		book.ApplyRatingAdded(review.Rating)
		book.Touch()
		return txnSet(txn, bookKey(book.ID), &book)
	})
	if err != nil {
		if errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrReviewExists) {
			return err
		}
		return fmt.Errorf("add review: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "review added",
			slog.String("id", review.ID),
			slog.String("book_id", review.BookID),
			slog.String("user_id", review.UserID),
			slog.Int("rating", review.Rating),
			slog.Int("review_count", book.ReviewCount),
		)
	}

	s.indexBookAsync(&book)
	return nil
}

// DeleteReview removes a review and subtracts its rating from the book's
// aggregate in one transaction. The review must belong to the given book.
func (s *Store) DeleteReview(ctx context.Context, bookID, reviewID string) error {
	var book domain.Book
	err := s.update(func(txn *badger.Txn) error {
		var review domain.Review
		if err := txnGet(txn, reviewKey(reviewID), &review); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if review.BookID != bookID {
			return ErrReviewNotFound
		}

		book = domain.Book{}
		if err := txnGet(txn, bookKey(bookID), &book); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if err := s.deleteReviewEntries(txn, &review); err != nil {
			return err
		}

		book.ApplyRatingRemoved(review.Rating)
		book.Touch()
		return txnSet(txn, bookKey(book.ID), &book)
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) || errors.Is(err, ErrBookNotFound) {
			return err
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("review deleted", "id", reviewID, "book_id", bookID)
	}

	s.indexBookAsync(&book)
	return nil
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	var review domain.Review
	err := s.get(reviewKey(id), &review)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &review, nil
}

// GetUserReview returns the review a user wrote for a book, or
// ErrReviewNotFound if they have not reviewed it.
func (s *Store) GetUserReview(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	var reviewID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(reviewUniqueIdxKey(bookID, userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			reviewID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get user review: %w", err)
	}
	return s.GetReview(ctx, reviewID)
}

// LatestReviews returns up to limit reviews for a book, newest first.
func (s *Store) LatestReviews(ctx context.Context, bookID string, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		return nil, nil
	}

	prefix := []byte(reviewBookIdxPrefix + bookID + ":")

	var reviews []*domain.Review
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(reviews) < limit; it.Next() {
			id := idFromIndexKey(it.Item().Key())

			var review domain.Review
			if err := txnGet(txn, reviewKey(id), &review); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("latest reviews: %w", err)
	}
	return reviews, nil
}

// ListUserReviews returns every review written by a user.
func (s *Store) ListUserReviews(ctx context.Context, userID string) ([]*domain.Review, error) {
	prefix := []byte(reviewOwnerIdxPrefix + userID + ":")

	var reviews []*domain.Review
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := idFromIndexKey(it.Item().Key())

			var review domain.Review
			if err := txnGet(txn, reviewKey(id), &review); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, nil
}

// deleteReviewEntries removes a review document and all of its index entries
// within an open transaction.
func (s *Store) deleteReviewEntries(txn *badger.Txn, review *domain.Review) error {
	if err := txn.Delete(reviewKey(review.ID)); err != nil {
		return err
	}
	if err := txn.Delete(reviewUniqueIdxKey(review.BookID, review.UserID)); err != nil {
		return err
	}
	if err := txn.Delete(reviewBookIdxKey(review.BookID, review.CreatedAt, review.ID)); err != nil {
		return err
	}
	return txn.Delete(reviewOwnerIdxKey(review.UserID, review.ID))
}

// deleteBookReviews removes every review of a book within an open
// transaction. Called when the book itself is deleted, so the aggregate is
// not recomputed.
func (s *Store) deleteBookReviews(txn *badger.Txn, bookID string) error {
	prefix := []byte(reviewBookIdxPrefix + bookID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	// Collect IDs first; deleting while iterating the same prefix is fragile.
	var ids []string
	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, idFromIndexKey(it.Item().Key()))
	}
	it.Close()

	for _, id := range ids {
		var review domain.Review
		if err := txnGet(txn, reviewKey(id), &review); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return err
		}
		if err := s.deleteReviewEntries(txn, &review); err != nil {
			return err
		}
	}
	return nil
}
