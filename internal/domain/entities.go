package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Category selects which recommendation corpus a request targets
type Category string

const (
	CategoryMovies Category = "movies"
	CategoryGames  Category = "games"
)

// Categories lists every category in tab order
var Categories = []Category{CategoryMovies, CategoryGames}

// ParseCategory converts a user-supplied string into a Category
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMovies, "movie", "":
		return CategoryMovies, nil
	case CategoryGames, "game":
		return CategoryGames, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Label returns the tab label for the category
func (c Category) Label() string {
	switch c {
	case CategoryGames:
		return "Games"
	default:
		return "Movies"
	}
}

// Mode selects how the recommendation endpoint picks results
type Mode string

const (
	ModeSearch Mode = "search"
	ModeRandom Mode = "random"
)

// RecommendParams is the body of a recommendation request
type RecommendParams struct {
	Type  Category
	Mode  Mode
	Query string
	Page  int
}

// Item is a single recommendation as returned by the backend.
// Items are passive values; nothing in the client mutates them.
type Item struct {
	ID          string  // Backend identifier (TMDB id for movies, dataset id for games)
	Title       string  // Display title
	Year        int     // Release year, 0 if unknown
	Poster      string  // Poster image URL
	Overview    string  // Synopsis
	VoteAverage float64 // Community rating (0-10)
}

// DisplayYear returns the year as text, or "" when unknown
func (i Item) DisplayYear() string {
	if i.Year > 0 {
		return strconv.Itoa(i.Year)
	}
	return ""
}

// HasPoster reports whether the poster URL points at real artwork
func (i Item) HasPoster() bool {
	return i.Poster != "" && !strings.Contains(i.Poster, "placeholder")
}

// Detail is the supplementary record shown in the details modal.
// Movie and game details share this shape; absent fields are zero values.
type Detail struct {
	Title       string
	Tagline     string
	Overview    string
	VoteAverage float64
	VoteCount   int
	Year        int
	Runtime     int // minutes
	Status      string

	// Movie-only
	Budget           int64
	Revenue          int64
	OriginalLanguage string
	Cast             []string
	Backdrop         string
	Director         []string
	Writers          []string
	Music            []string
	Companies        []string
	Collection       string
	Providers        []string
	Link             string

	// Game-only
	Developer string
	Publisher string
	Poster    string

	Genres []string
	Type   string // "movie" or "game"
}

// FormattedRuntime returns the runtime as "Xh Ym", or "" when unknown
func (d Detail) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", d.Runtime/60, d.Runtime%60)
}

// Trailer is the result of a trailer lookup. An empty Key means none was found.
type Trailer struct {
	Key string
}

// Found reports whether the lookup produced a playable video
func (t Trailer) Found() bool {
	return t.Key != ""
}

// WatchURL returns the YouTube URL for the trailer
func (t Trailer) WatchURL() string {
	if t.Key == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + t.Key
}
