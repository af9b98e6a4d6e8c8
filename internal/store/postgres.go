package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ajitpratap0/jogadas-api/internal/models"
)

const postgresDialTimeout = 10 * time.Second

// PostgresOptions configures the connection pool behind a PostgresStore.
type PostgresOptions struct {
	URL             string
	SSLMode         string
	Table           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

var _ CounterStore = (*PostgresStore)(nil)

// PostgresStore implements CounterStore on a PostgreSQL table using a
// database/sql connection pool.
type PostgresStore struct {
	db     *sql.DB
	table  string
	logger *slog.Logger

	incrementQuery string
	getQuery       string
}

// NewPostgresStore opens a pooled connection to PostgreSQL.
// An unreachable database at startup is logged, not fatal: requests fail
// individually until it comes back.
func NewPostgresStore(opts PostgresOptions, logger *slog.Logger) (*PostgresStore, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("postgres: database url is empty")
	}
	dsn, err := withSSLMode(opts.URL, opts.SSLMode)
	if err != nil {
		return nil, fmt.Errorf("postgres: applying sslmode: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening pool: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if opts.SSLMode == "disable" {
		logger.Warn("PostgreSQL connection using sslmode=disable (no TLS)")
	}

	s := newPostgresStore(db, opts.Table, logger)

	pingCtx, cancel := context.WithTimeout(context.Background(), postgresDialTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		logger.Warn("PostgreSQL not reachable at startup", "error", err)
	} else {
		logger.Info("connected to PostgreSQL", "table", opts.Table, "max_open_conns", opts.MaxOpenConns)
	}

	return s, nil
}

func newPostgresStore(db *sql.DB, table string, logger *slog.Logger) *PostgresStore {
	quoted := pq.QuoteIdentifier(table)
	return &PostgresStore{
		db:             db,
		table:          table,
		logger:         logger,
		incrementQuery: fmt.Sprintf("UPDATE %s SET valor = valor + 1 WHERE nome = $1 RETURNING valor", quoted),
		getQuery:       fmt.Sprintf("SELECT valor FROM %s WHERE nome = $1", quoted),
	}
}

// EnsureSchema creates the counters table if it is missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	nome  TEXT PRIMARY KEY,
	valor BIGINT NOT NULL DEFAULT 0
)`, pq.QuoteIdentifier(p.table))
	if _, err := p.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("creating table %s: %w", p.table, err)
	}
	p.logger.Info("schema ready", "table", p.table)
	return nil
}

// Increment runs a single UPDATE ... RETURNING statement. Row locking in
// PostgreSQL serializes concurrent increments on the same name.
func (p *PostgresStore) Increment(ctx context.Context, name string) (int64, error) {
	var value int64
	err := p.db.QueryRowContext(ctx, p.incrementQuery, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("incrementing %q: %w", name, err)
	}
	return value, nil
}

// Get reads the current value of a counter.
func (p *PostgresStore) Get(ctx context.Context, name string) (*models.Counter, error) {
	var value int64
	err := p.db.QueryRowContext(ctx, p.getQuery, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return &models.Counter{Name: name, Value: value}, nil
}

// Ping verifies a connection can be acquired from the pool.
func (p *PostgresStore) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging postgres: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

// withSSLMode sets sslmode on a connection string that doesn't already
// carry one. Both URL and key=value forms are accepted.
func withSSLMode(dsn, mode string) (string, error) {
	if mode == "" {
		return dsn, nil
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parsing database url: %w", err)
		}
		q := u.Query()
		if q.Get("sslmode") != "" {
			return dsn, nil
		}
		q.Set("sslmode", mode)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	if strings.Contains(dsn, "sslmode=") {
		return dsn, nil
	}
	return strings.TrimSpace(dsn + " sslmode=" + mode), nil
}
