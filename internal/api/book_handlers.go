package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/service"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a paginated list of books, newest first. An optional search term filters the catalog.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNewestBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/newest",
		Summary:     "Newest books",
		Description: "Returns the most recently added books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleNewestBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBooksByGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/genre/{genre}",
		Summary:     "Books by genre",
		Description: "Returns books carrying the genre tag",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleBooksByGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Creates a new book. Admin only.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Partially updates a book. Admin only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Deletes a book, its reviews, and its stored files. Admin only.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID               string    `json:"id" doc:"Book ID"`
	Title            string    `json:"title" doc:"Title"`
	Author           string    `json:"author" doc:"Author"`
	Translator       string    `json:"translator,omitempty" doc:"Translator"`
	Publisher        string    `json:"publisher,omitempty" doc:"Publisher"`
	PublicationDate  string    `json:"publication_date,omitempty" doc:"Publication date"`
	Language         string    `json:"language,omitempty" doc:"Language code"`
	PrintLength      int       `json:"print_length,omitempty" doc:"Page count"`
	ShortDescription string    `json:"short_description,omitempty" doc:"Short description"`
	LongDescription  string    `json:"long_description,omitempty" doc:"Long description"`
	Genres           []string  `json:"genres,omitempty" doc:"Genre tags, lowercased"`
	CoverBlurHash    string    `json:"cover_blur_hash,omitempty" doc:"BlurHash placeholder for the cover"`
	HasCover         bool      `json:"has_cover" doc:"Whether a cover image is stored"`
	HasFile          bool      `json:"has_file" doc:"Whether an epub file is stored"`
	ReviewCount      int       `json:"review_count" doc:"Number of reviews"`
	AverageRating    float64   `json:"average_rating" doc:"Average rating, 2 decimal places"`
	CreatedAt        time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt        time.Time `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Translator:       b.Translator,
		Publisher:        b.Publisher,
		PublicationDate:  b.PublicationDate,
		Language:         b.Language,
		PrintLength:      b.PrintLength,
		ShortDescription: b.ShortDescription,
		LongDescription:  b.LongDescription,
		Genres:           b.Genres,
		CoverBlurHash:    b.CoverBlurHash,
		HasCover:         b.HasCover,
		HasFile:          b.HasFile,
		ReviewCount:      b.ReviewCount,
		AverageRating:    b.AverageRating,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = toBookResponse(b)
	}
	return resp
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Page          int    `query:"page" minimum:"1" doc:"Page number, starting at 1"`
	PageSize      int    `query:"page_size" minimum:"1" maximum:"50" doc:"Books per page"`
	Search        string `query:"search" doc:"Search term matched against title and author"`
}

// PagedBooksResponse contains one page of books.
type PagedBooksResponse struct {
	Books    []BookResponse `json:"books" doc:"Books on this page"`
	Page     int            `json:"page" doc:"Page number"`
	PageSize int            `json:"page_size" doc:"Page size"`
	HasMore  bool           `json:"has_more" doc:"Whether more pages exist"`
}

// PagedBooksOutput wraps the paged books response for Huma.
type PagedBooksOutput struct {
	Body PagedBooksResponse
}

// BooksOutput wraps a plain book list for Huma.
type BooksOutput struct {
	Body struct {
		Books []BookResponse `json:"books" doc:"Books"`
	}
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BooksByGenreInput contains parameters for the genre listing.
type BooksByGenreInput struct {
	Authorization string `header:"Authorization"`
	Genre         string `path:"genre" doc:"Genre tag"`
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          service.BookInput
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          service.BookPatch
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*PagedBooksOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	params := store.PageParams{Page: input.Page, PageSize: input.PageSize}
	result, err := s.services.Book.ListBooks(ctx, params, input.Search)
	if err != nil {
		return nil, err
	}

	return &PagedBooksOutput{
		Body: PagedBooksResponse{
			Books:    toBookResponses(result.Items),
			Page:     result.Page,
			PageSize: result.PageSize,
			HasMore:  result.HasMore,
		},
	}, nil
}

func (s *Server) handleNewestBooks(ctx context.Context, input *AuthenticatedInput) (*BooksOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Book.NewestBooks(ctx)
	if err != nil {
		return nil, err
	}

	out := &BooksOutput{}
	out.Body.Books = toBookResponses(books)
	return out, nil
}

func (s *Server) handleBooksByGenre(ctx context.Context, input *BooksByGenreInput) (*BooksOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	books, err := s.services.Book.BooksByGenre(ctx, input.Genre)
	if err != nil {
		return nil, err
	}

	out := &BooksOutput{}
	out.Body.Books = toBookResponses(books)
	return out, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}
