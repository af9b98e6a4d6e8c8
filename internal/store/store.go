package store

import (
	"context"
	"errors"

	"github.com/ajitpratap0/jogadas-api/internal/models"
)

// ErrNotFound is returned by Increment and Get when no counter matches the name.
var ErrNotFound = errors.New("counter not found")

// CounterStore defines persistence for named counters.
//
// Implementations must be safe for concurrent use: a single instance is
// shared by every in-flight request.
type CounterStore interface {
	// EnsureSchema creates the counters table if it doesn't exist.
	// It never inserts counters.
	EnsureSchema(ctx context.Context) error

	// Increment atomically adds one to the named counter and returns the
	// new value in a single round trip. Returns ErrNotFound when the
	// counter does not exist; the counter is never created implicitly.
	Increment(ctx context.Context, name string) (int64, error)

	// Get reads the current value of the named counter.
	Get(ctx context.Context, name string) (*models.Counter, error)

	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error

	// Close releases pooled connections.
	Close() error
}
