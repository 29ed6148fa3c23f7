package services

import (
	"context"
	"errors"
	"sync"

	"storefront/models"
	"storefront/repositories"
)

var errStoreDown = errors.New("store down")

// recordingStore counts writes and can be told to fail.
type recordingStore struct {
	*repositories.MemoryStore

	mu      sync.Mutex
	sets    int
	failSet bool
	failGet bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: repositories.NewMemoryStore()}
}

func (r *recordingStore) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	fail := r.failGet
	r.mu.Unlock()
	if fail {
		return "", false, errStoreDown
	}
	return r.MemoryStore.Get(ctx, key)
}

func (r *recordingStore) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSet {
		return errStoreDown
	}
	r.sets++
	return r.MemoryStore.Set(ctx, key, value)
}

func (r *recordingStore) setCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sets
}

func (r *recordingStore) setFailing(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSet = fail
}

func (r *recordingStore) persisted() string {
	v, _, _ := r.MemoryStore.Get(context.Background(), CartKey)
	return v
}

type announcements struct {
	mu       sync.Mutex
	messages []string
}

func (a *announcements) Announce(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *announcements) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

type stubSubmitter struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (s *stubSubmitter) Submit(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.orders = append(s.orders, order)
	return nil
}

func hydrated(kv repositories.KeyValueStore, opts ...CartOption) *CartStore {
	s := NewCartStore(kv, opts...)
	s.Hydrate(context.Background())
	return s
}
