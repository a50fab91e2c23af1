package domain

// Review is a single user's rating and optional write-up for a book.
// A user may hold at most one review per book.
type Review struct {
	Timestamps
	BookID  string `json:"book_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
	Title   string `json:"title,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is an accepted star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
