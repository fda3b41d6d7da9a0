package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MinConns = 0
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	return pool, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id BIGINT PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	agreed_rules BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS listings (
	id BIGSERIAL PRIMARY KEY,
	author_id BIGINT NOT NULL REFERENCES users(telegram_id),
	category TEXT NOT NULL,
	district TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	contacts TEXT NOT NULL,
	status TEXT NOT NULL,
	reject_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	approved_at TIMESTAMPTZ,
	published_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_listings_status_created ON listings(status, created_at);

CREATE TABLE IF NOT EXISTS listing_photos (
	id BIGSERIAL PRIMARY KEY,
	listing_id BIGINT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	file_id TEXT NOT NULL,
	file_unique_id TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS moderation_queue (
	listing_id BIGINT PRIMARY KEY REFERENCES listings(id) ON DELETE CASCADE,
	queued_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS schedules (
	chat_id BIGINT PRIMARY KEY,
	interval_sec BIGINT NOT NULL,
	next_run_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS blacklist (
	user_id BIGINT PRIMARY KEY,
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bad_words (
	word TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS admin_audit (
	id BIGSERIAL PRIMARY KEY,
	admin_id BIGINT NOT NULL,
	action TEXT NOT NULL,
	listing_id BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitSchema is idempotent; the bot applies it on every start.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// WithTx runs fn inside one transaction; any error rolls everything back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
