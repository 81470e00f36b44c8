package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/neurostream/internal/domain"
)

const defaultHistorySize = 20

// quickTags are the canned moods offered under the search bar
var quickTags = map[domain.Category][]string{
	domain.CategoryMovies: {"Dark psychological thriller", "Feel good 80s comedy", "Cyberpunk action"},
	domain.CategoryGames:  {"Relaxing puzzle", "Fast paced FPS", "Story driven RPG"},
}

// QuickTags returns the canned queries for a category
func QuickTags(category domain.Category) []string {
	return append([]string(nil), quickTags[category]...)
}

// SuggestService keeps per-category query history for this session and
// ranks suggestions against the text being typed
type SuggestService struct {
	mu      sync.Mutex
	history map[domain.Category][]string // most recent first
	max     int
}

// NewSuggestService creates a suggestion service holding up to max queries
// per category
func NewSuggestService(max int) *SuggestService {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &SuggestService{
		history: make(map[domain.Category][]string),
		max:     max,
	}
}

// Remember records a submitted query. Repeats move to the front.
func (s *SuggestService) Remember(category domain.Category, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.history[category]
	out := make([]string, 0, len(h)+1)
	out = append(out, query)
	for _, q := range h {
		if !strings.EqualFold(q, query) {
			out = append(out, q)
		}
	}
	if len(out) > s.max {
		out = out[:s.max]
	}
	s.history[category] = out
}

// History returns the remembered queries, most recent first
func (s *SuggestService) History(category domain.Category) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history[category]...)
}

// Suggest returns up to limit candidates (history, then quick tags) ranked
// against input. An empty input returns the candidates unranked.
func (s *SuggestService) Suggest(category domain.Category, input string, limit int) []string {
	candidates := s.candidates(category)

	input = strings.TrimSpace(input)
	if input == "" {
		return truncate(candidates, limit)
	}

	ranks := fuzzy.RankFindNormalizedFold(input, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, 0, len(ranks))
	for _, r := range ranks {
		// Typing the whole suggestion leaves nothing to suggest
		if strings.EqualFold(r.Target, input) {
			continue
		}
		out = append(out, r.Target)
	}
	return truncate(out, limit)
}

func (s *SuggestService) candidates(category domain.Category) []string {
	history := s.History(category)
	seen := make(map[string]bool, len(history))
	out := make([]string, 0, len(history)+len(quickTags[category]))
	for _, q := range append(history, quickTags[category]...) {
		k := strings.ToLower(q)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, q)
	}
	return out
}

func truncate(s []string, limit int) []string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
