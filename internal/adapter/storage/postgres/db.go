package postgres

import (
	"context"
	"fmt"

	"booking-finance-engine/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates a PostgreSQL connection pool using pgx.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("dbname", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL connection pool established")

	return pool, nil
}

// EnsureSchema creates the ledger table and its indexes if absent, so a
// fresh database is usable without a separate migration step.
func EnsureSchema(ctx context.Context, pool Pool) error {
	ddl := `CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		booking_id TEXT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		seller_id UUID NOT NULL,
		buyer_id UUID NOT NULL,
		total_amount BIGINT NOT NULL,
		commission_amount BIGINT NOT NULL,
		net_amount BIGINT NOT NULL,
		display_currency TEXT NOT NULL,
		display_amount NUMERIC NOT NULL,
		applied_rate NUMERIC NOT NULL,
		status TEXT NOT NULL,
		external_ref TEXT,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_seller ON transactions (seller_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_buyer ON transactions (buyer_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions (created_at DESC)`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring ledger schema: %w", err)
	}
	return nil
}
