package keyvalue

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore is a read-through LRU layer over another Store. Writes and
// deletes update the cache in place so reads after a write never hit the
// backend with stale data.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, []byte]
}

// NewCachedStore wraps inner with an LRU of maxEntries values.
func NewCachedStore(inner Store, maxEntries int) (*CachedStore, error) {
	c, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: c}, nil
}

func (s *CachedStore) Read(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := s.cache.Get(string(key)); ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	v, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Add(string(key), v)
	return v, nil
}

func (s *CachedStore) Write(ctx context.Context, key, value []byte) error {
	if err := s.inner.Write(ctx, key, value); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.cache.Add(string(key), v)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key []byte) error {
	if err := s.inner.Delete(ctx, key); err != nil {
		return err
	}
	s.cache.Remove(string(key))
	return nil
}

func (s *CachedStore) Batch(ctx context.Context, ops []BatchOperation) error {
	if err := s.inner.Batch(ctx, ops); err != nil {
		return err
	}
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			v := make([]byte, len(op.Value))
			copy(v, op.Value)
			s.cache.Add(string(op.Key), v)
		case BatchDelete:
			s.cache.Remove(string(op.Key))
		}
	}
	return nil
}

// Iterator bypasses the cache: range scans go straight to the backend.
func (s *CachedStore) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	return s.inner.Iterator(ctx, start, end)
}
