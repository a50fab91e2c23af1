package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		author string
		want   []string
	}{
		{
			name:   "basic title and author",
			title:  "The Great Gatsby",
			author: "F. Scott Fitzgerald",
			want:   []string{"the", "great", "gatsby", "f.", "scott", "fitzgerald"},
		},
		{
			name:   "duplicates removed",
			title:  "War and War",
			author: "War Author",
			want:   []string{"war", "and", "author"},
		},
		{
			name:   "empty inputs",
			title:  "",
			author: "",
			want:   nil,
		},
		{
			name:   "extra whitespace collapsed",
			title:  "  A   Tale  ",
			author: "Someone",
			want:   []string{"a", "tale", "someone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.title, tt.author))
		})
	}
}

func TestMatches(t *testing.T) {
	kws := Generate("The Great Gatsby", "F. Scott Fitzgerald")

	assert.True(t, Matches(kws, ""))
	assert.True(t, Matches(kws, "gatsby"))
	assert.True(t, Matches(kws, "GATSBY"))
	assert.True(t, Matches(kws, "great fitz"))
	assert.True(t, Matches(kws, "gat"))
	assert.False(t, Matches(kws, "melville"))
	assert.False(t, Matches(kws, "great melville"))
}

func TestGenreSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Science Fiction", "science-fiction"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"LitRPG", "litrpg"},
		{"Café Stories", "cafe-stories"},
		{"  history  ", "history"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenreSlug(tt.input))
		})
	}
}

func TestGenreSlugs(t *testing.T) {
	got := GenreSlugs([]string{"Science Fiction", "science fiction", "", "History"})
	assert.Equal(t, []string{"science-fiction", "history"}, got)
}
