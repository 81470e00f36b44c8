package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/mmcdole/neurostream/internal/domain"
)

// launcher abstracts the external player (consumer-defined interface)
type launcher interface {
	Play(url string) (domain.Playback, error)
	OpenURL(url string) error
}

var nonWordChars = regexp.MustCompile(`[^\w\s]`)

// CleanTitle strips everything but letters, digits, underscore and whitespace
func CleanTitle(title string) string {
	return nonWordChars.ReplaceAllString(title, "")
}

// TrailerService looks trailers up lazily and controls playback.
// At most one trailer plays at a time.
type TrailerService struct {
	repo     domain.TrailerRepository
	store    domain.Store
	launcher launcher
	limiter  *rate.Limiter
	group    singleflight.Group
	logger   *slog.Logger

	mu      sync.Mutex
	playing domain.Playback
	key     string // trailer key of the active playback
}

// NewTrailerService creates a trailer service. Lookups are limited to
// perSecond with the given burst. store may be nil.
func NewTrailerService(
	repo domain.TrailerRepository,
	store domain.Store,
	launcher launcher,
	perSecond float64,
	burst int,
	logger *slog.Logger,
) *TrailerService {
	if logger == nil {
		logger = slog.Default()
	}
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &TrailerService{
		repo:     repo,
		store:    store,
		launcher: launcher,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
	}
}

// Lookup resolves the trailer for an item. Concurrent lookups for the same
// title share one request; results, including misses, are cached.
func (s *TrailerService) Lookup(ctx context.Context, category domain.Category, item domain.Item) (domain.Trailer, error) {
	slug := CleanTitle(item.Title)
	year := item.DisplayYear()
	if strings.TrimSpace(slug) == "" {
		return domain.Trailer{}, nil
	}

	if s.store != nil {
		if t, ok := s.store.GetTrailer(category, slug, year); ok {
			return t, nil
		}
	}

	flightKey := fmt.Sprintf("%s|%s|%s", category, strings.ToLower(slug), year)
	v, err, shared := s.group.Do(flightKey, func() (interface{}, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.Trailer{}, err
		}
		t, err := s.repo.FindTrailer(ctx, category, slug, year)
		if err != nil {
			return domain.Trailer{}, err
		}
		if s.store != nil {
			if err := s.store.SaveTrailer(category, slug, year, t); err != nil {
				s.logger.Warn("failed to cache trailer", "title", slug, "error", err)
			}
		}
		return t, nil
	})
	if err != nil {
		s.logger.Warn("trailer lookup failed", "title", slug, "year", year, "error", err)
		return domain.Trailer{}, err
	}
	if shared {
		s.logger.Debug("trailer lookup shared", "title", slug)
	}
	return v.(domain.Trailer), nil
}

// Play starts a trailer, stopping whatever was playing before. Playing the
// trailer that is already running is a no-op.
func (s *TrailerService) Play(trailer domain.Trailer) error {
	if !trailer.Found() {
		return domain.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing != nil && s.key == trailer.Key {
		return nil
	}
	s.stopLocked()

	pb, err := s.launcher.Play(trailer.WatchURL())
	if err != nil {
		s.logger.Error("failed to start trailer", "key", trailer.Key, "error", err)
		return err
	}
	s.logger.Info("trailer playing", "key", trailer.Key)
	s.playing = pb
	s.key = trailer.Key
	return nil
}

// Stop ends the active playback, if any
func (s *TrailerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// StopKey stops playback only if key is the trailer currently playing
func (s *TrailerService) StopKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key != "" && s.key == key {
		s.stopLocked()
	}
}

func (s *TrailerService) stopLocked() {
	if s.playing == nil {
		return
	}
	if err := s.playing.Stop(); err != nil {
		s.logger.Warn("failed to stop trailer", "key", s.key, "error", err)
	}
	s.playing = nil
	s.key = ""
}

// Playing returns the key of the active trailer, or ""
func (s *TrailerService) Playing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// SearchURL builds the YouTube search used from the details modal
func SearchURL(category domain.Category, title string, year string) string {
	q := fmt.Sprintf("%s %s %s trailer", title, year, category)
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(q)
}

// OpenSearch opens a YouTube search for the item in the system browser
func (s *TrailerService) OpenSearch(category domain.Category, title, year string) error {
	return s.launcher.OpenURL(SearchURL(category, title, year))
}
