// Package domain contains the core business entities for the Ebookd catalog.
package domain

import "math"

// Book represents an ebook in the catalog.
//
// ReviewCount and AverageRating are derived from the book's reviews and are
// only ever written inside the same store transaction that creates or deletes
// the corresponding review. Nothing else may touch them.
type Book struct {
	Timestamps
	Title            string   `json:"title"`
	Author           string   `json:"author"`
	Translator       string   `json:"translator,omitempty"`
	Publisher        string   `json:"publisher,omitempty"`
	PublicationDate  string   `json:"publication_date,omitempty"`
	Language         string   `json:"language,omitempty"`
	PrintLength      int      `json:"print_length,omitempty"`
	ShortDescription string   `json:"short_description,omitempty"`
	LongDescription  string   `json:"long_description,omitempty"`
	Genres           []string `json:"genres,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	CoverBlurHash    string   `json:"cover_blur_hash,omitempty"`
	HasCover         bool     `json:"has_cover"`
	HasFile          bool     `json:"has_file"`
	ReviewCount      int      `json:"review_count"`
	AverageRating    float64  `json:"average_rating"`
}

// HasGenre reports whether the book carries the given genre tag.
// Genre tags are stored lowercased, callers must normalize before lookup.
func (b *Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// ApplyRatingAdded folds a new rating into the aggregate:
// newAverage = (average*count + rating) / (count+1), rounded to 2 decimals.
func (b *Book) ApplyRatingAdded(rating int) {
	newCount := b.ReviewCount + 1
	b.AverageRating = roundRating((b.AverageRating*float64(b.ReviewCount) + float64(rating)) / float64(newCount))
	b.ReviewCount = newCount
}

// ApplyRatingRemoved removes a rating from the aggregate. When the last review
// is removed the average resets to 0. The count is clamped at zero so a stale
// delete can never drive it negative.
func (b *Book) ApplyRatingRemoved(rating int) {
	newCount := b.ReviewCount - 1
	if newCount <= 0 {
		b.ReviewCount = 0
		b.AverageRating = 0
		return
	}
	b.AverageRating = roundRating((b.AverageRating*float64(b.ReviewCount) - float64(rating)) / float64(newCount))
	b.ReviewCount = newCount
}

// roundRating rounds an average to 2 decimal places. The aggregate is
// recomputed from two scalars on every mutation, so without a fixed precision
// floating-point drift would accumulate across edits.
func roundRating(r float64) float64 {
	return math.Round(r*100) / 100
}
