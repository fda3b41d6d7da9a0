package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

// EnsureDefaults seeds one schedule row per configured destination. Existing
// rows keep their interval and next-run; operators may have tuned them.
func (r *ScheduleRepo) EnsureDefaults(ctx context.Context, chatIDs []int64, interval time.Duration, now time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if interval <= 0 {
		return fmt.Errorf("invalid default interval")
	}

	for _, chatID := range chatIDs {
		if chatID == 0 {
			continue
		}
		if _, err := r.pool.Exec(ctx, `
INSERT INTO schedules (chat_id, interval_sec, next_run_at)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id) DO NOTHING
`, chatID, int64(interval/time.Second), now); err != nil {
			return fmt.Errorf("seed schedule for chat %d: %w", chatID, err)
		}
	}

	return nil
}

func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time) ([]model.Schedule, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT chat_id, interval_sec, next_run_at
FROM schedules
WHERE next_run_at <= $1
ORDER BY chat_id ASC
`, now)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		var (
			schedule    model.Schedule
			intervalSec int64
		)
		if err := rows.Scan(&schedule.ChatID, &intervalSec, &schedule.NextRunAt); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedule.Interval = time.Duration(intervalSec) * time.Second
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}

// Advance pushes the destination's next run to nextRunAt, unconditionally.
func (r *ScheduleRepo) Advance(ctx context.Context, chatID int64, nextRunAt time.Time) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if chatID == 0 {
		return fmt.Errorf("invalid chat id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE schedules SET next_run_at = $2 WHERE chat_id = $1
`, chatID, nextRunAt); err != nil {
		return fmt.Errorf("advance schedule: %w", err)
	}

	return nil
}
