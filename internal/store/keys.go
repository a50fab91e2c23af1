package store

import (
	"fmt"
	"strings"
	"time"
)

// Key prefixes. Every secondary index lives under "idx:" so a full document
// scan can skip index entries by prefix alone.
const (
	bookPrefix   = "book:"
	reviewPrefix = "review:"
	userPrefix   = "user:"

	bookCreatedIdxPrefix  = "idx:books:created:"
	bookGenreIdxPrefix    = "idx:books:genre:"
	reviewBookIdxPrefix   = "idx:reviews:book:"
	reviewUniqueIdxPrefix = "idx:reviews:unique:"
	reviewOwnerIdxPrefix  = "idx:reviews:owner:"
)

// formatSortableTime renders a timestamp with fixed-width nanoseconds so that
// lexicographic key order matches chronological order.
func formatSortableTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", t.Nanosecond()) + "Z"
}

// bookKey returns the document key for a book.
func bookKey(id string) []byte {
	return []byte(bookPrefix + id)
}

// reviewKey returns the document key for a review.
func reviewKey(id string) []byte {
	return []byte(reviewPrefix + id)
}

// userKey returns the document key for a user.
func userKey(id string) []byte {
	return []byte(userPrefix + id)
}

// bookCreatedIdxKey indexes books by creation time for newest-first listings.
// Format: idx:books:created:{sortable-ts}:{bookID}, value is the book ID.
func bookCreatedIdxKey(createdAt time.Time, bookID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", bookCreatedIdxPrefix, formatSortableTime(createdAt), bookID)
}

// bookGenreIdxKey indexes books by genre slug.
// Format: idx:books:genre:{slug}:{bookID}, value is the book ID.
func bookGenreIdxKey(slug, bookID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", bookGenreIdxPrefix, slug, bookID)
}

// reviewBookIdxKey indexes reviews by book and creation time so the latest
// reviews for a book come from a single reverse prefix scan.
// Format: idx:reviews:book:{bookID}:{sortable-ts}:{reviewID}, value is the review ID.
func reviewBookIdxKey(bookID string, createdAt time.Time, reviewID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s:%s", reviewBookIdxPrefix, bookID, formatSortableTime(createdAt), reviewID)
}

// reviewUniqueIdxKey enforces the one-review-per-user-per-book rule. The key
// is written in the same transaction as the review, so a second insert for
// the same pair observes it.
// Format: idx:reviews:unique:{bookID}:{userID}, value is the review ID.
func reviewUniqueIdxKey(bookID, userID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", reviewUniqueIdxPrefix, bookID, userID)
}

// reviewOwnerIdxKey indexes reviews by their author.
// Format: idx:reviews:owner:{userID}:{reviewID}, value is the review ID.
func reviewOwnerIdxKey(userID, reviewID string) []byte {
	return fmt.Appendf(nil, "%s%s:%s", reviewOwnerIdxPrefix, userID, reviewID)
}

// idFromIndexKey extracts the trailing ID segment of an index key.
func idFromIndexKey(key []byte) string {
	k := string(key)
	if i := strings.LastIndexByte(k, ':'); i >= 0 {
		return k[i+1:]
	}
	return k
}
