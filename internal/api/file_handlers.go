package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const epubContentType = "application/epub+zip"

func (s *Server) registerFileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadCover",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Upload cover",
		Description: "Stores the cover image for a book and computes its BlurHash placeholder. Admin only.",
		Tags:        []string{"Files"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Get cover",
		Description: "Returns the stored cover image for a book",
		Tags:        []string{"Files"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBookFile",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/file",
		Summary:     "Upload epub",
		Description: "Stores the epub file for a book. Admin only.",
		Tags:        []string{"Files"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadEpub)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookFile",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/file",
		Summary:     "Get epub",
		Description: "Returns the stored epub file for a book",
		Tags:        []string{"Files"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetEpub)
}

// UploadFileInput carries a raw file body for a book.
type UploadFileInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	RawBody       []byte
}

// GetFileInput contains parameters for fetching a stored file.
type GetFileInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// FileOutput returns raw file bytes with their content type.
type FileOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (s *Server) handleUploadCover(ctx context.Context, input *UploadFileInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UploadCover(ctx, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetCover(ctx context.Context, input *GetFileInput) (*FileOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	data, contentType, err := s.services.Book.GetCover(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FileOutput{ContentType: contentType, Body: data}, nil
}

func (s *Server) handleUploadEpub(ctx context.Context, input *UploadFileInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Book.UploadEpub(ctx, input.ID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetEpub(ctx context.Context, input *GetFileInput) (*FileOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	data, err := s.services.Book.GetEpub(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &FileOutput{ContentType: epubContentType, Body: data}, nil
}
