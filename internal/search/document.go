// Package search provides full-text search over the book catalog using Bleve,
// with fuzzy matching, genre faceting, and match highlighting.
package search

import "github.com/Amir-Wake/Ebookd/internal/domain"

// Document is the book document structure for the Bleve index.
//
// Author, genres, and the rating aggregate are denormalized into the document
// so search results render without store lookups. The index is derived data:
// the store is the source of truth and the index can always be rebuilt from it.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Translator  string   `json:"translator,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Description string   `json:"description,omitempty"`
	GenreSlugs  []string `json:"genre_slugs,omitempty"`
	Language    string   `json:"language,omitempty"`

	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our mapping
// uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"review_count":   d.ReviewCount,
		"average_rating": d.AverageRating,
		"created_at":     d.CreatedAt,
		"updated_at":     d.UpdatedAt,
	}

	if d.Translator != "" {
		m["translator"] = d.Translator
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.GenreSlugs) > 0 {
		m["genre_slugs"] = d.GenreSlugs
	}
	if d.Language != "" {
		m["language"] = d.Language
	}

	return m
}

// FromBook converts a domain Book to its search document.
func FromBook(book *domain.Book) *Document {
	return &Document{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Translator:    book.Translator,
		Publisher:     book.Publisher,
		Description:   book.ShortDescription + " " + book.LongDescription,
		GenreSlugs:    book.Genres,
		Language:      book.Language,
		ReviewCount:   book.ReviewCount,
		AverageRating: book.AverageRating,
		CreatedAt:     book.CreatedAt.UnixMilli(),
		UpdatedAt:     book.UpdatedAt.UnixMilli(),
	}
}
