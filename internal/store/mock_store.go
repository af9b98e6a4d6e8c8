package store

import (
	"context"
	"sync"

	"github.com/ajitpratap0/jogadas-api/internal/models"
)

var _ CounterStore = (*MockStore)(nil)

// MockStore is an in-memory implementation of CounterStore for testing
// and for local runs without a database.
type MockStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMockStore creates a new mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		counters: make(map[string]int64),
	}
}

// Set provisions a counter with the given value, replacing any existing one.
func (m *MockStore) Set(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = value
}

// Len returns the number of provisioned counters.
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}

// EnsureSchema is a no-op for the mock store.
func (m *MockStore) EnsureSchema(_ context.Context) error {
	return nil
}

// Increment adds one to an existing counter under the store lock.
func (m *MockStore) Increment(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.counters[name]
	if !ok {
		return 0, ErrNotFound
	}
	v++
	m.counters[name] = v
	return v, nil
}

// Get returns a copy of the named counter.
func (m *MockStore) Get(_ context.Context, name string) (*models.Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.counters[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Counter{Name: name, Value: v}, nil
}

// Ping always succeeds for the mock store.
func (m *MockStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
