// Package warehouse provides connection management, the table registry
// and load primitives for the CityRetail analytics warehouse.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cityretail/cityretail-etl/internal/config"
	"github.com/cityretail/cityretail-etl/internal/logging"
)

// ErrUnavailable is returned when the warehouse cannot be reached after
// all connection retries are exhausted.
var ErrUnavailable = errors.New("warehouse is not available")

// DefaultPoolConfig returns default connection pool configuration.
func DefaultPoolConfig() *pgxpool.Config {
	cfg, _ := pgxpool.ParseConfig("")

	// A single sequential writer needs few connections.
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	return cfg
}

// Connect establishes a connection pool to the warehouse.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	defaults := DefaultPoolConfig()
	poolCfg.MaxConns = defaults.MaxConns
	poolCfg.MinConns = defaults.MinConns
	poolCfg.MaxConnLifetime = defaults.MaxConnLifetime
	poolCfg.MaxConnIdleTime = defaults.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = defaults.HealthCheckPeriod

	logging.Debug().
		Str("host", poolCfg.ConnConfig.Host).
		Uint16("port", poolCfg.ConnConfig.Port).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("Connecting to warehouse")

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	logging.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Msg("Connected to warehouse")

	return pool, nil
}

// ConnectSingle establishes a single connection to the warehouse. The
// incremental load holds one connection for the whole run.
func ConnectSingle(ctx context.Context, cfg *config.Config) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	return conn, nil
}

// RetryOptions controls WaitUntilReady behavior.
type RetryOptions struct {
	// Retries is the number of connection attempts.
	Retries int

	// InitialDelay is the backoff base in seconds; the wait before
	// attempt n is InitialDelay^n seconds.
	InitialDelay int
}

// DefaultRetryOptions returns the standard retry schedule (5 attempts,
// 2s base: 2, 4, 8, 16, 32 seconds).
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{Retries: 5, InitialDelay: 2}
}

// backoffDelay returns the wait after the given 1-based attempt.
func backoffDelay(opts RetryOptions, attempt int) time.Duration {
	secs := math.Pow(float64(opts.InitialDelay), float64(attempt))
	return time.Duration(secs * float64(time.Second))
}

// WaitUntilReady repeatedly attempts to connect to the warehouse with
// exponential backoff. The warehouse container may still be starting
// when an ETL run begins; exhausting all retries aborts the run with
// ErrUnavailable.
func WaitUntilReady(ctx context.Context, cfg *config.Config, opts RetryOptions) error {
	if opts.Retries <= 0 {
		opts = DefaultRetryOptions()
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		conn, err := pgx.Connect(ctx, cfg.ConnString())
		if err == nil {
			conn.Close(ctx)
			logging.Info().Msg("Warehouse is ready")
			return nil
		}
		lastErr = err

		wait := backoffDelay(opts, attempt)
		logging.Warn().
			Int("attempt", attempt).
			Int("retries", opts.Retries).
			Dur("wait", wait).
			Err(err).
			Msg("Warehouse not ready, retrying")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, opts.Retries, lastErr)
}
