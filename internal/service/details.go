package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/neurostream/internal/domain"
)

const defaultDetailTimeout = 10 * time.Second

// DetailService resolves item details through the lookup cache
type DetailService struct {
	repo    domain.DetailRepository
	store   domain.Store
	logger  *slog.Logger
	timeout time.Duration
}

// NewDetailService creates a detail service. store may be nil.
func NewDetailService(repo domain.DetailRepository, store domain.Store, logger *slog.Logger) *DetailService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailService{
		repo:    repo,
		store:   store,
		logger:  logger,
		timeout: defaultDetailTimeout,
	}
}

// Get returns the detail record for an item, from cache when possible.
// Only successful lookups are cached.
func (s *DetailService) Get(ctx context.Context, category domain.Category, id string) (*domain.Detail, error) {
	if s.store != nil {
		if d, ok := s.store.GetDetail(category, id); ok {
			s.logger.Debug("detail cache hit", "category", category, "id", id)
			return d, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	detail, err := s.repo.GetDetail(ctx, category, id)
	if err != nil {
		s.logger.Warn("detail lookup failed", "category", category, "id", id, "error", err)
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveDetail(category, id, detail); err != nil {
			s.logger.Warn("failed to cache detail", "id", id, "error", err)
		}
	}
	return detail, nil
}
