package api

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString decodes a JSON string or number into a string.
// The backend emits ids as numbers for games and strings for movies.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

// FlexInt decodes an integer that may arrive as a string ("1999"), a float
// (1999.0) or null. Unparseable strings decode to 0.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var raw FlexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int(v))
		return nil
	}
	// Dates such as "1999-03-31" carry the year first
	if len(s) >= 4 {
		if n, err := strconv.Atoi(s[:4]); err == nil {
			*f = FlexInt(n)
			return nil
		}
	}
	*f = 0
	return nil
}

// FlexFloat decodes a number that may arrive quoted or null
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var raw FlexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// recommendRequest is the body of POST /api/recommend
type recommendRequest struct {
	Type  string `json:"type"`
	Mode  string `json:"mode"`
	Query string `json:"query"`
	Page  int    `json:"page"`
}

// errorResponse is the {error} object the backend returns on failure
type errorResponse struct {
	Error string `json:"error"`
}

// itemDTO is one element of the recommendation array
type itemDTO struct {
	ID          FlexString `json:"id"`
	TmdbID      FlexString `json:"tmdb_id"`
	Title       string     `json:"title"`
	Year        FlexInt    `json:"year"`
	Poster      string     `json:"poster"`
	Overview    string     `json:"overview"`
	VoteAverage FlexFloat  `json:"vote_average"`
}

// detailDTO covers both the movie and the game detail shapes
type detailDTO struct {
	Error string `json:"error"`

	Title       string    `json:"title"`
	Tagline     string    `json:"tagline"`
	Overview    string    `json:"overview"`
	VoteAverage FlexFloat `json:"vote_average"`
	VoteCount   FlexInt   `json:"vote_count"`
	Year        FlexInt   `json:"year"`
	Runtime     FlexInt   `json:"runtime"`
	Status      string    `json:"status"`

	Budget           FlexFloat `json:"budget"`
	Revenue          FlexFloat `json:"revenue"`
	OriginalLanguage string    `json:"original_language"`
	Cast             []string  `json:"cast"`
	Backdrop         string    `json:"backdrop"`
	Director         []string  `json:"director"`
	Writers          []string  `json:"writers"`
	Music            []string  `json:"music"`
	Companies        []string  `json:"companies"`
	Collection       string    `json:"collection"`
	Providers        []string  `json:"providers"`
	Link             string    `json:"link"`

	Developer string `json:"developer"`
	Publisher string `json:"publisher"`
	Poster    string `json:"poster"`

	Genres []string `json:"genres"`
	Type   string   `json:"type"`
}

// trailerDTO is the body of GET /api/trailer/{title}
type trailerDTO struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}
