package domain

import "time"

// Store caches lookups that are expensive to repeat (BoltDB + memory).
// Tab state is never written here; it lives only in the running session.
type Store interface {
	// === Details ===
	GetDetail(category Category, id string) (*Detail, bool)
	SaveDetail(category Category, id string, detail *Detail) error

	// === Trailers ===
	GetTrailer(category Category, slug, year string) (Trailer, bool)
	SaveTrailer(category Category, slug, year string, trailer Trailer) error

	// === Freshness ===
	SetTTL(ttl time.Duration)

	// === Invalidation ===
	InvalidateCategory(category Category)
	InvalidateAll()

	Close() error
}
