package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

type BlacklistRepo struct {
	pool *pgxpool.Pool
}

func NewBlacklistRepo(pool *pgxpool.Pool) *BlacklistRepo {
	return &BlacklistRepo{pool: pool}
}

// Add upserts; re-banning refreshes the reason.
func (r *BlacklistRepo) Add(ctx context.Context, userID int64, reason string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO blacklist (user_id, reason)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET reason = EXCLUDED.reason
`, userID, reason); err != nil {
		return fmt.Errorf("add blacklist entry: %w", err)
	}

	return nil
}

func (r *BlacklistRepo) Contains(ctx context.Context, userID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM blacklist WHERE user_id = $1)
`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists, nil
}

func (r *BlacklistRepo) Remove(ctx context.Context, userID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM blacklist WHERE user_id = $1
`, userID); err != nil {
		return fmt.Errorf("remove blacklist entry: %w", err)
	}

	return nil
}

func (r *BlacklistRepo) List(ctx context.Context) ([]model.BlacklistEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, reason, created_at
FROM blacklist
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var entries []model.BlacklistEntry
	for rows.Next() {
		var entry model.BlacklistEntry
		if err := rows.Scan(&entry.UserID, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist: %w", err)
	}

	return entries, nil
}
