package model

import "time"

// QueueEntry is one listing awaiting a moderator decision. At most one entry
// exists per listing.
type QueueEntry struct {
	ListingID int64     `json:"listing_id"`
	QueuedAt  time.Time `json:"queued_at"`
}
