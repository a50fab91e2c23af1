// Package service provides the business logic layer for the catalog:
// books, reviews, users, and search.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/id"
	"github.com/Amir-Wake/Ebookd/internal/keywords"
	"github.com/Amir-Wake/Ebookd/internal/media/files"
	"github.com/Amir-Wake/Ebookd/internal/search"
	"github.com/Amir-Wake/Ebookd/internal/store"
)

const (
	newestBooksLimit = 4
	genreBooksLimit  = 8
)

// BookService orchestrates catalog operations: book documents plus their
// stored cover and epub files.
type BookService struct {
	store  *store.Store
	index  *search.Index
	covers *files.Storage
	epubs  *files.Storage
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(st *store.Store, index *search.Index, covers, epubs *files.Storage, logger *slog.Logger) *BookService {
	return &BookService{
		store:  st,
		index:  index,
		covers: covers,
		epubs:  epubs,
		logger: logger,
	}
}

// BookInput carries the writable fields of a book.
type BookInput struct {
	Title            string   `json:"title" validate:"required,max=500"`
	Author           string   `json:"author" validate:"required,max=500"`
	Translator       string   `json:"translator,omitempty" validate:"max=500"`
	Publisher        string   `json:"publisher,omitempty" validate:"max=500"`
	PublicationDate  string   `json:"publication_date,omitempty" validate:"max=50"`
	Language         string   `json:"language,omitempty" validate:"max=50"`
	PrintLength      int      `json:"print_length,omitempty" validate:"gte=0"`
	ShortDescription string   `json:"short_description,omitempty" validate:"max=2000"`
	LongDescription  string   `json:"long_description,omitempty" validate:"max=20000"`
	Genres           []string `json:"genres,omitempty" validate:"max=20,dive,max=100"`
}

// BookPatch carries a partial update. Nil fields are left unchanged.
type BookPatch struct {
	Title            *string   `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Author           *string   `json:"author,omitempty" validate:"omitempty,min=1,max=500"`
	Translator       *string   `json:"translator,omitempty" validate:"omitempty,max=500"`
	Publisher        *string   `json:"publisher,omitempty" validate:"omitempty,max=500"`
	PublicationDate  *string   `json:"publication_date,omitempty" validate:"omitempty,max=50"`
	Language         *string   `json:"language,omitempty" validate:"omitempty,max=50"`
	PrintLength      *int      `json:"print_length,omitempty" validate:"omitempty,gte=0"`
	ShortDescription *string   `json:"short_description,omitempty" validate:"omitempty,max=2000"`
	LongDescription  *string   `json:"long_description,omitempty" validate:"omitempty,max=20000"`
	Genres           *[]string `json:"genres,omitempty" validate:"omitempty,max=20,dive,max=100"`
}

// CreateBook creates a new book with a generated id. Keywords are derived
// from title and author, genres are normalized to lowercase slugs.
func (s *BookService) CreateBook(ctx context.Context, input BookInput) (*domain.Book, error) {
	book := &domain.Book{
		Title:            input.Title,
		Author:           input.Author,
		Translator:       input.Translator,
		Publisher:        input.Publisher,
		PublicationDate:  input.PublicationDate,
		Language:         input.Language,
		PrintLength:      input.PrintLength,
		ShortDescription: input.ShortDescription,
		LongDescription:  input.LongDescription,
		Genres:           keywords.GenreSlugs(input.Genres),
		Keywords:         keywords.Generate(input.Title, input.Author),
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "generate book id")
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	s.logger.Info("created book", "book_id", book.ID, "title", book.Title)

	return book, nil
}

// GetBook retrieves a single book by id.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.mapBookError(err, bookID)
	}
	return book, nil
}

// UpdateBook applies a partial update. Keywords are regenerated when title
// or author change. Review aggregates are never touched here.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, patch BookPatch) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	titleOrAuthorChanged := false
	if patch.Title != nil && *patch.Title != book.Title {
		book.Title = *patch.Title
		titleOrAuthorChanged = true
	}
	if patch.Author != nil && *patch.Author != book.Author {
		book.Author = *patch.Author
		titleOrAuthorChanged = true
	}
	if patch.Translator != nil {
		book.Translator = *patch.Translator
	}
	if patch.Publisher != nil {
		book.Publisher = *patch.Publisher
	}
	if patch.PublicationDate != nil {
		book.PublicationDate = *patch.PublicationDate
	}
	if patch.Language != nil {
		book.Language = *patch.Language
	}
	if patch.PrintLength != nil {
		book.PrintLength = *patch.PrintLength
	}
	if patch.ShortDescription != nil {
		book.ShortDescription = *patch.ShortDescription
	}
	if patch.LongDescription != nil {
		book.LongDescription = *patch.LongDescription
	}
	if patch.Genres != nil {
		book.Genres = keywords.GenreSlugs(*patch.Genres)
	}

	if titleOrAuthorChanged {
		book.Keywords = keywords.Generate(book.Title, book.Author)
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	s.logger.Info("updated book", "book_id", book.ID)

	return book, nil
}

// DeleteBook removes the book document, its reviews, and its stored files.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return s.mapBookError(err, bookID)
	}

	// File cleanup is best-effort: the document is gone, a leftover file
	// is unreachable and harmless.
	if err := s.covers.Delete(bookID); err != nil {
		s.logger.Warn("failed to delete cover", "book_id", bookID, "error", err)
	}
	if err := s.epubs.Delete(bookID); err != nil {
		s.logger.Warn("failed to delete epub", "book_id", bookID, "error", err)
	}

	s.logger.Info("deleted book", "book_id", bookID)

	return nil
}

// ListBooks returns a page of books, newest first. A non-empty search term
// routes through the full-text index; if the index query fails the store's
// keyword scan serves as fallback.
func (s *BookService) ListBooks(ctx context.Context, params store.PageParams, searchTerm string) (*store.PagedResult[*domain.Book], error) {
	params.Validate()

	if searchTerm == "" {
		result, err := s.store.ListBooks(ctx, params, "")
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "list books")
		}
		return result, nil
	}

	result, err := s.searchBooks(ctx, params, searchTerm)
	if err == nil && len(result.Items) > 0 {
		return result, nil
	}
	if err != nil {
		s.logger.Warn("search index query failed, falling back to keyword scan",
			"query", searchTerm, "error", err)
	}

	// Index updates are pushed asynchronously, so an empty result may just
	// mean the index has not caught up. The keyword scan is authoritative.
	result, err = s.store.ListBooks(ctx, params, searchTerm)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list books")
	}
	return result, nil
}

// searchBooks resolves a search term against the full-text index, then loads
// the matching documents in hit order.
func (s *BookService) searchBooks(ctx context.Context, params store.PageParams, searchTerm string) (*store.PagedResult[*domain.Book], error) {
	searchParams := search.DefaultParams()
	searchParams.Query = searchTerm
	searchParams.Limit = params.PageSize
	searchParams.Offset = params.Offset()
	searchParams.IncludeFacets = false
	searchParams.Highlight = false

	searchResult, err := s.index.Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	books := make([]*domain.Book, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		book, err := s.store.GetBook(ctx, hit.ID)
		if err != nil {
			// Index lag: the document was deleted after indexing.
			if errors.Is(err, store.ErrBookNotFound) {
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", hit.ID, err)
		}
		books = append(books, book)
	}

	return &store.PagedResult[*domain.Book]{
		Items:    books,
		Page:     params.Page,
		PageSize: params.PageSize,
		HasMore:  uint64(params.Offset()+len(searchResult.Hits)) < searchResult.Total, //#nosec G115
	}, nil
}

// NewestBooks returns the most recently added books for the home screen.
func (s *BookService) NewestBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.NewestBooks(ctx, newestBooksLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "newest books")
	}
	return books, nil
}

// BooksByGenre returns books carrying the genre tag. The tag is lowercased
// before lookup, matching how genres are stored.
func (s *BookService) BooksByGenre(ctx context.Context, genre string) ([]*domain.Book, error) {
	slug := keywords.GenreSlug(genre)
	if slug == "" {
		return nil, errors.Validation("genre must not be empty")
	}

	books, err := s.store.BooksByGenre(ctx, slug, genreBooksLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "books by genre")
	}
	return books, nil
}

func (s *BookService) mapBookError(err error, bookID string) error {
	switch {
	case errors.Is(err, store.ErrBookNotFound):
		return errors.NotFoundf("book %s not found", bookID)
	case errors.Is(err, store.ErrBookExists):
		return errors.AlreadyExistsf("book %s already exists", bookID)
	default:
		return errors.Wrap(err, errors.CodeInternal, "book store operation failed")
	}
}
