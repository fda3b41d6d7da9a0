package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/enums"
)

// AuditRepo appends moderator actions. Nothing reads rows back through the
// bot; the table exists for operators.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Append(ctx context.Context, adminID int64, action enums.AuditAction, listingID *int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if adminID == 0 || action == "" {
		return fmt.Errorf("invalid audit payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO admin_audit (admin_id, action, listing_id)
VALUES ($1, $2, $3)
`, adminID, string(action), listingID); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
