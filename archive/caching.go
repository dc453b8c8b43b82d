package archive

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/searchtree/internal/cache"
	"github.com/hupe1980/searchtree/resource"
)

// CachingStore wraps a Store and keeps recently opened replies in memory.
type CachingStore struct {
	inner Store
	cache *cache.LRU
}

// NewCachingStore caches up to capacity bytes of replies read from inner.
// If rc is non-nil, cached bytes count against its memory budget.
func NewCachingStore(inner Store, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity, rc),
	}
}

// Open serves a reply from the cache, reading it through on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if b, ok := s.cache.Get(name); ok {
		return io.NopCloser(bytes.NewReader(b)), nil
	}

	rc, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, b)
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Put invalidates the cached copy and writes through.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates the cached copy and deletes from the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit and miss counts.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// Purge drops every cached reply.
func (s *CachingStore) Purge() {
	s.cache.Clear()
}
