package model

import (
	"time"

	"github.com/ivankudzin/classibot/internal/domain/enums"
)

// AuditEntry is append-only; nothing in the pipeline mutates or deletes rows.
type AuditEntry struct {
	ID        int64             `json:"id"`
	AdminID   int64             `json:"admin_id"`
	Action    enums.AuditAction `json:"action"`
	ListingID *int64            `json:"listing_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
