package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyRatingAdded(t *testing.T) {
	b := &Book{}

	b.ApplyRatingAdded(4)
	assert.Equal(t, 1, b.ReviewCount)
	assert.Equal(t, 4.0, b.AverageRating)

	b.ApplyRatingAdded(2)
	assert.Equal(t, 2, b.ReviewCount)
	assert.Equal(t, 3.0, b.AverageRating)

	b.ApplyRatingAdded(5)
	assert.Equal(t, 3, b.ReviewCount)
	assert.InDelta(t, 3.67, b.AverageRating, 0.001)
}

func TestApplyRatingRemoved(t *testing.T) {
	// Removal recomputes from the stored 2-decimal average, so each step
	// can drift by up to half a cent times the remaining count.
	b := &Book{ReviewCount: 3, AverageRating: 3.67}

	b.ApplyRatingRemoved(5)
	assert.Equal(t, 2, b.ReviewCount)
	assert.InDelta(t, 3.0, b.AverageRating, 0.02)

	b.ApplyRatingRemoved(2)
	assert.Equal(t, 1, b.ReviewCount)
	assert.InDelta(t, 4.0, b.AverageRating, 0.05)

	b.ApplyRatingRemoved(4)
	assert.Equal(t, 0, b.ReviewCount)
	assert.Equal(t, 0.0, b.AverageRating)
}

func TestApplyRatingRemovedClampsAtZero(t *testing.T) {
	b := &Book{ReviewCount: 0, AverageRating: 0}
	b.ApplyRatingRemoved(3)
	assert.Equal(t, 0, b.ReviewCount)
	assert.Equal(t, 0.0, b.AverageRating)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	b := &Book{}
	for _, r := range []int{1, 3, 5, 4, 2} {
		b.ApplyRatingAdded(r)
	}
	assert.Equal(t, 5, b.ReviewCount)
	assert.Equal(t, 3.0, b.AverageRating)

	for _, r := range []int{2, 4, 5, 3, 1} {
		b.ApplyRatingRemoved(r)
	}
	assert.Equal(t, 0, b.ReviewCount)
	assert.Equal(t, 0.0, b.AverageRating)
}

func TestHasGenre(t *testing.T) {
	b := &Book{Genres: []string{"fiction", "history"}}
	assert.True(t, b.HasGenre("fiction"))
	assert.False(t, b.HasGenre("Fiction"))
	assert.False(t, b.HasGenre("poetry"))
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
	assert.False(t, ValidRating(-1))
}
