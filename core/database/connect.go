package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/reviewbot/core/logger"
)

const (
	driverName   = "postgres"
	pingInterval = 2 * time.Second

	defaultMaxConnections = 4
)

// Connect waits for Postgres to accept connections, then opens and sizes the pool.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	start := time.Now()
	attrs := []slog.Attr{
		slog.String("host", cfg.Host),
		slog.String("port", cfg.port()),
		slog.String("db", cfg.Name),
	}

	db, err := sqlx.Open(driverName, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = defaultMaxConnections
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	timeout := time.Duration(cfg.ReadyTimeoutSeconds) * time.Second
	if err := waitReady(ctx, db, timeout); err != nil {
		_ = db.Close()
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(attrs,
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
				slog.Duration("duration", logger.Took(start)),
			)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(attrs,
			slog.String("status", "ok"),
			slog.Int("pool_open", cfg.MaxConnections),
			slog.Duration("duration", logger.Took(start)),
		)...,
	)
	return db, nil
}

// waitReady pings until the server answers or timeout passes.
func waitReady(ctx context.Context, db *sqlx.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		pingCtx, pingCancel := context.WithTimeout(ctx, pingInterval)
		lastErr = db.PingContext(pingCtx)
		pingCancel()
		if lastErr == nil {
			return nil
		}

		timer := time.NewTimer(pingInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("database not ready after %s: %w", timeout, lastErr)
		case <-timer.C:
		}
	}
}
