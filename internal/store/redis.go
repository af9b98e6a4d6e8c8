package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ajitpratap0/jogadas-api/internal/models"
)

// incrementScript increments KEYS[1] only when it already exists and
// returns nil otherwise, so counters are never created implicitly.
var incrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("INCR", KEYS[1])
end
return false
`)

var _ CounterStore = (*RedisStore)(nil)

// RedisStore implements CounterStore on plain Redis integer keys.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *slog.Logger
}

// NewRedisStore connects to the Redis server at rawURL.
func NewRedisStore(rawURL, keyPrefix string, poolSize int, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parsing url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	logger.Info("using Redis counter store", "addr", opts.Addr, "prefix", keyPrefix)
	return newRedisStore(redis.NewClient(opts), keyPrefix, logger), nil
}

func newRedisStore(client redis.UniversalClient, keyPrefix string, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (r *RedisStore) key(name string) string {
	return r.keyPrefix + name
}

// EnsureSchema is a no-op: Redis keys need no schema.
func (r *RedisStore) EnsureSchema(_ context.Context) error {
	return nil
}

// Increment runs the conditional INCR script.
func (r *RedisStore) Increment(ctx context.Context, name string) (int64, error) {
	v, err := incrementScript.Run(ctx, r.client, []string{r.key(name)}).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("incrementing %q: %w", name, err)
	}
	return v, nil
}

// Get reads the counter key.
func (r *RedisStore) Get(ctx context.Context, name string) (*models.Counter, error) {
	v, err := r.client.Get(ctx, r.key(name)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return &models.Counter{Name: name, Value: v}, nil
}

// Ping sends PING to the server.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Close closes the client pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
