package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/neurostream/internal/domain"
)

// Bucket names
var (
	bucketDetails  = []byte("details")
	bucketTrailers = []byte("trailers")

	allBuckets = [][]byte{bucketDetails, bucketTrailers}
)

// entry wraps a cached value with the time it was written
type entry struct {
	SavedAt time.Time       `json:"saved_at"`
	Value   json.RawMessage `json:"value"`
}

// LookupStore implements domain.Store using BoltDB with an in-memory
// read-through layer. With an empty cache dir it runs memory-only.
type LookupStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache and ttl

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
	ttl   time.Duration
	now   func() time.Time
}

// NewLookupStore opens (or creates) the cache for the given server.
// Each server URL gets its own database file.
func NewLookupStore(baseCacheDir, serverURL string, ttl time.Duration) (*LookupStore, error) {
	s := &LookupStore{
		cache: make(map[string][]byte),
		ttl:   ttl,
		now:   time.Now,
	}
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "neurostream.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Close releases the database file
func (s *LookupStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SetTTL changes how long entries stay fresh. Zero keeps entries forever.
func (s *LookupStore) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

// === Generic helpers ===

func (s *LookupStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	data, ok := s.cache[cacheKey]
	s.mu.RUnlock()

	if !ok {
		if s.db == nil {
			return false
		}
		s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if data == nil {
			return false
		}

		// Promote to memory cache
		s.mu.Lock()
		s.cache[cacheKey] = data
		s.mu.Unlock()
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if s.expired(e.SavedAt) {
		s.delete(bucket, key)
		return false
	}
	return json.Unmarshal(e.Value, dest) == nil
}

func (s *LookupStore) expired(savedAt time.Time) bool {
	s.mu.RLock()
	ttl := s.ttl
	s.mu.RUnlock()
	return ttl > 0 && s.now().Sub(savedAt) > ttl
}

func (s *LookupStore) set(bucket []byte, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{SavedAt: s.now(), Value: raw})
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *LookupStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *LookupStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Delete from BoltDB using prefix scan
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Collect first; deleting under a live cursor skips keys
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Details ===

func (s *LookupStore) GetDetail(category domain.Category, id string) (*domain.Detail, bool) {
	var detail domain.Detail
	if !s.get(bucketDetails, detailKey(category, id), &detail) {
		return nil, false
	}
	return &detail, true
}

func (s *LookupStore) SaveDetail(category domain.Category, id string, detail *domain.Detail) error {
	if detail == nil {
		return nil
	}
	return s.set(bucketDetails, detailKey(category, id), detail)
}

// === Trailers (misses are cached as an empty key) ===

func (s *LookupStore) GetTrailer(category domain.Category, slug, year string) (domain.Trailer, bool) {
	var trailer domain.Trailer
	ok := s.get(bucketTrailers, trailerKey(category, slug, year), &trailer)
	return trailer, ok
}

func (s *LookupStore) SaveTrailer(category domain.Category, slug, year string, trailer domain.Trailer) error {
	return s.set(bucketTrailers, trailerKey(category, slug, year), trailer)
}

// === Invalidation ===

// InvalidateCategory wipes details and trailers for one category
func (s *LookupStore) InvalidateCategory(category domain.Category) {
	prefix := categoryPrefix(category)
	s.deletePrefix(bucketDetails, prefix)
	s.deletePrefix(bucketTrailers, prefix)
}

func (s *LookupStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if tx.Bucket(bucket) == nil {
				continue
			}
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ domain.Store = (*LookupStore)(nil)
