package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/reviews",
		Summary:     "Latest reviews",
		Description: "Returns the latest reviews for a book",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{bookId}/reviews",
		Summary:       "Add review",
		Description:   "Adds the caller's review for a book. One review per user per book.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{bookId}/reviews/{reviewId}",
		Summary:       "Delete review",
		Description:   "Deletes a review. Allowed for the review's author and admins.",
		Tags:          []string{"Reviews"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyBookReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{bookId}/reviews/me",
		Summary:     "My review for a book",
		Description: "Returns the caller's review for a book, if any",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMyBookReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/reviews",
		Summary:     "My reviews",
		Description: "Returns all reviews written by the caller, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMyReviews)
}

// === DTOs ===

// ReviewResponse contains review data in API responses.
type ReviewResponse struct {
	ID        string    `json:"id" doc:"Review ID"`
	BookID    string    `json:"book_id" doc:"Book ID"`
	UserID    string    `json:"user_id" doc:"Author's user ID"`
	Rating    int       `json:"rating" doc:"Star rating, 1 to 5"`
	Title     string    `json:"title,omitempty" doc:"Review title"`
	Comment   string    `json:"comment,omitempty" doc:"Review text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toReviewResponses(reviews []*domain.Review) []ReviewResponse {
	resp := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		resp[i] = toReviewResponse(r)
	}
	return resp
}

// BookReviewsInput contains parameters for listing a book's reviews.
type BookReviewsInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
}

// ReviewsOutput wraps a review list for Huma.
type ReviewsOutput struct {
	Body struct {
		Reviews []ReviewResponse `json:"reviews" doc:"Reviews"`
	}
}

// AddReviewInput wraps the add review request for Huma.
type AddReviewInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	Body          service.ReviewInput
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body ReviewResponse
}

// DeleteReviewInput contains parameters for deleting a review.
type DeleteReviewInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookId" doc:"Book ID"`
	ReviewID      string `path:"reviewId" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleBookReviews(ctx context.Context, input *BookReviewsInput) (*ReviewsOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.LatestReviews(ctx, input.BookID)
	if err != nil {
		return nil, err
	}

	out := &ReviewsOutput{}
	out.Body.Reviews = toReviewResponses(reviews)
	return out, nil
}

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	review, err := s.services.Review.AddReview(ctx, input.BookID, user.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: toReviewResponse(review)}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *DeleteReviewInput) (*struct{}, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, input.BookID, input.ReviewID, user); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleMyBookReview(ctx context.Context, input *BookReviewsInput) (*ReviewOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.UserReview(ctx, input.BookID, user.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: toReviewResponse(review)}, nil
}

func (s *Server) handleMyReviews(ctx context.Context, input *AuthenticatedInput) (*ReviewsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.UserReviews(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := &ReviewsOutput{}
	out.Body.Reviews = toReviewResponses(reviews)
	return out, nil
}
