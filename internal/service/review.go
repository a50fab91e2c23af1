package service

import (
	"context"
	"log/slog"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/id"
	"github.com/Amir-Wake/Ebookd/internal/ratelimit"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

const latestReviewsLimit = 5

// ReviewService orchestrates review operations. Rating aggregates on the
// book are maintained by the store inside the same transaction as the
// review write; this layer handles identity, permissions, and throttling.
type ReviewService struct {
	store   *store.Store
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(st *store.Store, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:   st,
		limiter: limiter,
		logger:  logger,
	}
}

// ReviewInput carries the writable fields of a review.
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string `json:"title,omitempty" validate:"max=200"`
	Comment string `json:"comment,omitempty" validate:"max=5000"`
}

// AddReview creates a review for the user on the book. Submissions are
// rate-limited per user. One review per user per book.
func (s *ReviewService) AddReview(ctx context.Context, bookID, userID string, input ReviewInput) (*domain.Review, error) {
	if !s.limiter.Allow(userID) {
		return nil, errors.RateLimited("too many review submissions, slow down")
	}

	if !domain.ValidRating(input.Rating) {
		return nil, errors.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	review := &domain.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  input.Rating,
		Title:   input.Title,
		Comment: input.Comment,
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate review id")
	}
	review.ID = reviewID
	review.InitTimestamps()

	if err := s.store.AddReview(ctx, review); err != nil {
		return nil, s.mapReviewError(err, bookID, reviewID)
	}

	s.logger.Info("added review",
		"review_id", review.ID,
		"book_id", bookID,
		"user_id", userID,
		"rating", review.Rating,
	)

	return review, nil
}

// DeleteReview removes a review and folds its rating out of the book's
// aggregate. Only the review's author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, bookID, reviewID string, caller *domain.User) error {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return s.mapReviewError(err, bookID, reviewID)
	}

	if review.UserID != caller.ID && !caller.IsAdmin() {
		return errors.Forbidden("you may only delete your own reviews")
	}

	if err := s.store.DeleteReview(ctx, bookID, reviewID); err != nil {
		return s.mapReviewError(err, bookID, reviewID)
	}

	s.logger.Info("deleted review",
		"review_id", reviewID,
		"book_id", bookID,
		"deleted_by", caller.ID,
	)

	return nil
}

// LatestReviews returns the most recent reviews for a book, newest first.
func (s *ReviewService) LatestReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	exists, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "check book")
	}
	if !exists {
		return nil, errors.NotFoundf("book %s not found", bookID)
	}

	reviews, err := s.store.LatestReviews(ctx, bookID, latestReviewsLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "latest reviews")
	}
	return reviews, nil
}

// UserReview returns the caller's review for a book, if any.
func (s *ReviewService) UserReview(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	review, err := s.store.GetUserReview(ctx, bookID, userID)
	if err != nil {
		if errors.Is(err, store.ErrReviewNotFound) {
			return nil, errors.NotFound("you have not reviewed this book")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "get user review")
	}
	return review, nil
}

// UserReviews returns all reviews written by a user.
func (s *ReviewService) UserReviews(ctx context.Context, userID string) ([]*domain.Review, error) {
	reviews, err := s.store.ListUserReviews(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list user reviews")
	}
	return reviews, nil
}

func (s *ReviewService) mapReviewError(err error, bookID, reviewID string) error {
	switch {
	case errors.Is(err, store.ErrBookNotFound):
		return errors.NotFoundf("book %s not found", bookID)
	case errors.Is(err, store.ErrReviewNotFound):
		return errors.NotFoundf("review %s not found", reviewID)
	case errors.Is(err, store.ErrReviewExists):
		return errors.AlreadyExists("you have already reviewed this book")
	default:
		return errors.Wrap(err, errors.CodeInternal, "review store operation failed")
	}
}
