package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jogadas-api/internal/config"
	"github.com/ajitpratap0/jogadas-api/internal/store"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "jogadas-api",
		Short: "Jogadas API: atomic named counters over HTTP",
		Long:  "Serves POST /incrementar-jogadas, which atomically increments a named counter row and returns its new value.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		healthCmd(),
		getCmd(),
		migrateCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newStore(logger *slog.Logger) (store.CounterStore, error) {
	switch cfg.Database.Driver {
	case config.DriverRedis:
		return store.NewRedisStore(cfg.Redis.URL, cfg.Redis.KeyPrefix, cfg.Redis.PoolSize, logger)
	case config.DriverMemory:
		logger.Warn("using in-memory counter store; values are lost on exit")
		return store.NewMockStore(), nil
	default:
		return store.NewPostgresStore(store.PostgresOptions{
			URL:             cfg.Database.URL,
			SSLMode:         cfg.Database.SSLMode,
			Table:           cfg.Database.Table,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
	}
}
