// Package cache memoizes conversion responses. Conversion is
// deterministic, so caching by payload digest is always safe.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the response cache used by the convert handler.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Key digests an arbitrary payload into a stable cache key.
func Key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type memoryStore struct {
	backend *gocache.Cache
	ttl     time.Duration
}

// New creates an in-memory store whose entries expire after ttl.
func New(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &memoryStore{
		backend: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

func (s *memoryStore) Get(key string) ([]byte, bool) {
	raw, ok := s.backend.Get(key)
	if !ok {
		return nil, false
	}
	value, ok := raw.([]byte)
	if !ok {
		return nil, false
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, true
}

func (s *memoryStore) Set(key string, value []byte) {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.backend.Set(key, buf, s.ttl)
}
