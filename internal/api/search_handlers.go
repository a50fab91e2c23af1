package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Amir-Wake/Ebookd/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over the catalog with genre, language, and rating filters",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Rebuilds the search index from the catalog. Admin only.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindex)
}

// SearchInput contains full-text search parameters.
type SearchInput struct {
	Authorization string  `header:"Authorization"`
	Query         string  `query:"q" doc:"Search query"`
	Genre         string  `query:"genre" doc:"Filter by genre tag"`
	Language      string  `query:"language" doc:"Filter by language code"`
	MinRating     float64 `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum average rating"`
	Limit         int     `query:"limit" minimum:"1" maximum:"100" doc:"Maximum hits to return"`
	Offset        int     `query:"offset" minimum:"0" doc:"Hits to skip"`
	Sort          string  `query:"sort" enum:"relevance,title,author,recent,rating" doc:"Sort field"`
	Order         string  `query:"order" enum:"asc,desc" doc:"Sort direction"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body search.Result
}

// ReindexOutput wraps the reindex result for Huma.
type ReindexOutput struct {
	Body struct {
		Indexed int `json:"indexed" doc:"Number of books indexed"`
	}
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	params := search.DefaultParams()
	params.Query = input.Query
	params.Language = input.Language
	params.MinRating = input.MinRating
	params.Offset = input.Offset
	if input.Genre != "" {
		params.GenreSlugs = []string{input.Genre}
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}
	if input.Order != "" {
		params.SortOrder = input.Order
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: *result}, nil
}

func (s *Server) handleReindex(ctx context.Context, input *AuthenticatedInput) (*ReindexOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	indexed, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}

	out := &ReindexOutput{}
	out.Body.Indexed = indexed
	return out, nil
}
