package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/config"
)

// Pool is an alias for pgxpool.Pool
type Pool = pgxpool.Pool

// NewPool creates a PostgreSQL connection pool sized from the configuration
// and tied to the fx lifecycle. The pool is pinged on start so a bad
// DATABASE_URL fails the boot instead of the first upload.
func NewPool(lc fx.Lifecycle, logger *zap.Logger, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				logger.Error("database unreachable",
					zap.Error(err),
					zap.String("url", maskPassword(cfg.URL)),
				)
				return fmt.Errorf("database unreachable, check DATABASE_URL and that postgres is up: %w", err)
			}
			logger.Info("database pool ready",
				zap.String("url", maskPassword(cfg.URL)),
				zap.Int32("max_conns", poolCfg.MaxConns),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			pool.Close()
			logger.Info("database pool closed")
			return nil
		},
	})

	return pool, nil
}

// maskPassword hides the credential part of a connection URL so it can be
// logged.
func maskPassword(url string) string {
	scheme := strings.Index(url, "://")
	at := strings.Index(url, "@")
	if scheme < 0 || at < scheme {
		return url
	}

	creds := url[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return url
	}

	return url[:scheme+3+colon+1] + "***" + url[at:]
}
