package store

import (
	"strings"

	"github.com/mmcdole/neurostream/internal/domain"
)

// Keys encode the category first ({category}:...) so a whole category can be
// invalidated with one prefix deletion.

func categoryPrefix(category domain.Category) string {
	return string(category) + ":"
}

// detailKey is {category}:{id}
func detailKey(category domain.Category, id string) string {
	return categoryPrefix(category) + id
}

// trailerKey is {category}:{slug}:{year}. The slug is lowercased so lookups
// for the same title differing only in case share an entry.
func trailerKey(category domain.Category, slug, year string) string {
	return categoryPrefix(category) + strings.ToLower(strings.TrimSpace(slug)) + ":" + year
}
