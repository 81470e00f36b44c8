package api

import (
	"strings"

	"github.com/mmcdole/neurostream/internal/domain"
)

// MapItem converts a wire item to a domain item
func MapItem(dto itemDTO) domain.Item {
	id := string(dto.ID)
	if id == "" {
		id = string(dto.TmdbID)
	}
	return domain.Item{
		ID:          id,
		Title:       dto.Title,
		Year:        int(dto.Year),
		Poster:      dto.Poster,
		Overview:    dto.Overview,
		VoteAverage: float64(dto.VoteAverage),
	}
}

// MapItems converts a recommendation batch, preserving order
func MapItems(dtos []itemDTO) []domain.Item {
	if len(dtos) == 0 {
		return nil
	}
	items := make([]domain.Item, 0, len(dtos))
	for _, dto := range dtos {
		items = append(items, MapItem(dto))
	}
	return items
}

// MapDetail converts a wire detail record
func MapDetail(dto detailDTO) *domain.Detail {
	return &domain.Detail{
		Title:            dto.Title,
		Tagline:          dto.Tagline,
		Overview:         dto.Overview,
		VoteAverage:      float64(dto.VoteAverage),
		VoteCount:        int(dto.VoteCount),
		Year:             int(dto.Year),
		Runtime:          int(dto.Runtime),
		Status:           dto.Status,
		Budget:           int64(dto.Budget),
		Revenue:          int64(dto.Revenue),
		OriginalLanguage: dto.OriginalLanguage,
		Cast:             dto.Cast,
		Backdrop:         dto.Backdrop,
		Director:         dto.Director,
		Writers:          dto.Writers,
		Music:            dto.Music,
		Companies:        dto.Companies,
		Collection:       dto.Collection,
		Providers:        dto.Providers,
		Link:             dto.Link,
		Developer:        dto.Developer,
		Publisher:        dto.Publisher,
		Poster:           dto.Poster,
		Genres:           cleanGenres(dto.Genres),
		Type:             dto.Type,
	}
}

// cleanGenres trims the whitespace left by the games dataset's "a, b" splitting
func cleanGenres(genres []string) []string {
	var out []string
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
