package store

import "errors"

// Sentinel errors returned by store operations. The service layer maps these
// to API-facing domain errors.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrBookExists     = errors.New("book already exists")
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("user has already reviewed this book")
	ErrUserNotFound   = errors.New("user not found")
)
