package domain

import (
	"context"
)

// RecommendRepository provides paged recommendations
type RecommendRepository interface {
	// Recommend returns one page of results. An empty slice signals the end of results.
	Recommend(ctx context.Context, params RecommendParams) ([]Item, error)
}

// DetailRepository provides supplementary metadata for a single item
type DetailRepository interface {
	// GetDetail returns the detail record for an item of the given category
	GetDetail(ctx context.Context, category Category, id string) (*Detail, error)
}

// TrailerRepository resolves trailer videos
type TrailerRepository interface {
	// FindTrailer looks up a trailer by cleaned title and year.
	// A missing trailer is reported as a zero Trailer, not an error.
	FindTrailer(ctx context.Context, category Category, titleSlug, year string) (Trailer, error)
}
