package service

import (
	"bytes"
	"context"
	"net/http"

	"github.com/Amir-Wake/Ebookd/internal/domain"
	"github.com/Amir-Wake/Ebookd/internal/errors"
	"github.com/Amir-Wake/Ebookd/internal/media/files"
)

const (
	// Upload ceilings. Covers are placeholder-sized images, epubs are books.
	MaxCoverBytes = 10 << 20  // 10 MiB
	MaxEpubBytes  = 100 << 20 // 100 MiB
)

// epubMagic is the ZIP local-file-header signature; every epub is a ZIP.
var epubMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// UploadCover stores a cover image for the book, computes its BlurHash
// placeholder, and marks the book as having a cover.
func (s *BookService) UploadCover(ctx context.Context, bookID string, data []byte) (*domain.Book, error) {
	if len(data) == 0 {
		return nil, errors.Validation("cover image must not be empty")
	}
	if len(data) > MaxCoverBytes {
		return nil, errors.Validation("cover image too large")
	}
	if ct := http.DetectContentType(data); !isSupportedImageType(ct) {
		return nil, errors.Validationf("unsupported cover content type %s", ct)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	blurHash, err := files.ComputeBlurHash(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "cover image could not be decoded")
	}

	if err := s.covers.Save(bookID, data); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "save cover")
	}

	book.CoverBlurHash = blurHash
	book.HasCover = true
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	s.logger.Info("uploaded cover", "book_id", bookID, "size", len(data))

	return book, nil
}

// GetCover returns the stored cover image bytes and their content type.
func (s *BookService) GetCover(ctx context.Context, bookID string) ([]byte, string, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, "", s.mapBookError(err, bookID)
	}
	if !book.HasCover {
		return nil, "", errors.NotFoundf("book %s has no cover", bookID)
	}

	data, err := s.covers.Get(bookID)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeNotFound, "cover file missing")
	}

	return data, http.DetectContentType(data), nil
}

// UploadEpub stores the book's epub file and marks the book as having one.
func (s *BookService) UploadEpub(ctx context.Context, bookID string, data []byte) (*domain.Book, error) {
	if len(data) == 0 {
		return nil, errors.Validation("epub file must not be empty")
	}
	if len(data) > MaxEpubBytes {
		return nil, errors.Validation("epub file too large")
	}
	if len(data) < len(epubMagic) || !bytes.Equal(data[:len(epubMagic)], epubMagic) {
		return nil, errors.Validation("file is not a valid epub")
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	if err := s.epubs.Save(bookID, data); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "save epub")
	}

	book.HasFile = true
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, s.mapBookError(err, bookID)
	}

	s.logger.Info("uploaded epub", "book_id", bookID, "size", len(data))

	return book, nil
}

// GetEpub returns the stored epub bytes.
func (s *BookService) GetEpub(ctx context.Context, bookID string) ([]byte, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.mapBookError(err, bookID)
	}
	if !book.HasFile {
		return nil, errors.NotFoundf("book %s has no file", bookID)
	}

	data, err := s.epubs.Get(bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "epub file missing")
	}

	return data, nil
}

func isSupportedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}
