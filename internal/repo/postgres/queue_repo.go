package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

type QueueRepo struct {
	pool *pgxpool.Pool
}

func NewQueueRepo(pool *pgxpool.Pool) *QueueRepo {
	return &QueueRepo{pool: pool}
}

// Enqueue is idempotent: an existing entry for the listing stays untouched.
func (r *QueueRepo) Enqueue(ctx context.Context, listingID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 {
		return fmt.Errorf("invalid listing id")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_queue (listing_id)
VALUES ($1)
ON CONFLICT (listing_id) DO NOTHING
`, listingID); err != nil {
		return fmt.Errorf("enqueue listing: %w", err)
	}

	return nil
}

// ListOldest returns up to limit entries, FIFO by enqueue time.
func (r *QueueRepo) ListOldest(ctx context.Context, limit int) ([]model.QueueEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
SELECT listing_id, queued_at
FROM moderation_queue
ORDER BY queued_at ASC, listing_id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list oldest queue entries: %w", err)
	}
	defer rows.Close()

	var entries []model.QueueEntry
	for rows.Next() {
		var entry model.QueueEntry
		if err := rows.Scan(&entry.ListingID, &entry.QueuedAt); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue entries: %w", err)
	}

	return entries, nil
}

// Remove drops the entry without touching the listing row. Used for bans,
// where the listing keeps whatever status it had.
func (r *QueueRepo) Remove(ctx context.Context, listingID int64) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 {
		return false, fmt.Errorf("invalid listing id")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM moderation_queue WHERE listing_id = $1
`, listingID)
	if err != nil {
		return false, fmt.Errorf("remove queue entry: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *QueueRepo) Size(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM moderation_queue
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count queue entries: %w", err)
	}

	return count, nil
}
