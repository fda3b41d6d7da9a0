package model

import (
	"time"

	"github.com/ivankudzin/classibot/internal/domain/enums"
)

type Listing struct {
	ID           int64               `json:"id"`
	AuthorID     int64               `json:"author_id"`
	Category     string              `json:"category"`
	District     string              `json:"district"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Contacts     string              `json:"contacts"`
	Status       enums.ListingStatus `json:"status"`
	RejectReason string              `json:"reject_reason,omitempty"`
	Photos       []Photo             `json:"photos"`
	CreatedAt    time.Time           `json:"created_at"`
	ApprovedAt   *time.Time          `json:"approved_at,omitempty"`
	PublishedAt  *time.Time          `json:"published_at,omitempty"`
}

// Photo keeps the Telegram file reference together with the perceptual
// fingerprint computed at intake time.
type Photo struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Fingerprint  string `json:"fingerprint"`
}
