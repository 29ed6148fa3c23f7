package repositories

import "context"

// ScopedStore confines a shared KeyValueStore to one key prefix, the way a
// browser confines storage to an origin.
type ScopedStore struct {
	inner  KeyValueStore
	prefix string
}

func NewScopedStore(inner KeyValueStore, prefix string) *ScopedStore {
	return &ScopedStore{inner: inner, prefix: prefix}
}

func (s *ScopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *ScopedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}
