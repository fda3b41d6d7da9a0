// Package moderation applies admin decisions to queued listings. Every
// decision is final: a second press on the same card is a recognizable no-op,
// not a second state change.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/domain/enums"
	"github.com/ivankudzin/classibot/internal/domain/model"
	"github.com/ivankudzin/classibot/internal/repo/postgres"
)

// ErrAlreadyDecided marks a decision against a listing that is no longer in
// the queue.
var ErrAlreadyDecided = errors.New("listing already decided")

var ErrReasonRequired = errors.New("reject reason is required")

type ListingStore interface {
	GetByID(ctx context.Context, listingID int64) (model.Listing, error)
	ApproveQueued(ctx context.Context, listingID int64) error
	RejectQueued(ctx context.Context, listingID int64, reason string) error
}

type QueueStore interface {
	ListOldest(ctx context.Context, limit int) ([]model.QueueEntry, error)
	Remove(ctx context.Context, listingID int64) (bool, error)
	Size(ctx context.Context) (int, error)
}

type BlacklistStore interface {
	Add(ctx context.Context, userID int64, reason string) error
}

type AuditStore interface {
	Append(ctx context.Context, adminID int64, action enums.AuditAction, listingID *int64) error
}

type Service struct {
	listings  ListingStore
	queue     QueueStore
	blacklist BlacklistStore
	audit     AuditStore
	logger    *zap.Logger
}

func NewService(listings ListingStore, queue QueueStore, blacklist BlacklistStore, audit AuditStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		listings:  listings,
		queue:     queue,
		blacklist: blacklist,
		audit:     audit,
		logger:    logger,
	}
}

// PendingEntry is one /queue row: the queue position plus the listing behind it.
type PendingEntry struct {
	Entry   model.QueueEntry
	Listing model.Listing
}

func (s *Service) Pending(ctx context.Context, limit int) ([]PendingEntry, int, error) {
	if s.queue == nil || s.listings == nil {
		return nil, 0, fmt.Errorf("moderation stores are not configured")
	}

	entries, err := s.queue.ListOldest(ctx, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list queue: %w", err)
	}
	size, err := s.queue.Size(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("queue size: %w", err)
	}

	pending := make([]PendingEntry, 0, len(entries))
	for _, entry := range entries {
		listing, err := s.listings.GetByID(ctx, entry.ListingID)
		if err != nil {
			// An entry pointing at a vanished listing is a data bug; skip it
			// rather than break the whole view.
			s.logger.Warn("queue entry without listing",
				zap.Int64("listing_id", entry.ListingID),
				zap.Error(err))
			continue
		}
		pending = append(pending, PendingEntry{Entry: entry, Listing: listing})
	}

	return pending, size, nil
}

// Approve moves the listing from queued to approved and records who did it.
func (s *Service) Approve(ctx context.Context, adminID, listingID int64) (model.Listing, error) {
	if err := s.check(adminID, listingID); err != nil {
		return model.Listing{}, err
	}

	if err := s.listings.ApproveQueued(ctx, listingID); err != nil {
		if errors.Is(err, postgres.ErrNotInQueue) {
			return model.Listing{}, ErrAlreadyDecided
		}
		return model.Listing{}, fmt.Errorf("approve listing: %w", err)
	}

	s.recordAudit(ctx, adminID, enums.AuditActionApprove, listingID)
	return s.fetch(ctx, listingID)
}

// Reject stores the reason on the listing. The reason is shown to the author
// verbatim.
func (s *Service) Reject(ctx context.Context, adminID, listingID int64, reason string) (model.Listing, error) {
	if err := s.check(adminID, listingID); err != nil {
		return model.Listing{}, err
	}
	if reason == "" {
		return model.Listing{}, ErrReasonRequired
	}

	if err := s.listings.RejectQueued(ctx, listingID, reason); err != nil {
		if errors.Is(err, postgres.ErrNotInQueue) {
			return model.Listing{}, ErrAlreadyDecided
		}
		return model.Listing{}, fmt.Errorf("reject listing: %w", err)
	}

	s.recordAudit(ctx, adminID, enums.AuditActionReject, listingID)
	return s.fetch(ctx, listingID)
}

// Ban blacklists the author and removes the queue entry. The listing itself
// stays in its current status: the ban targets the author, not the post.
func (s *Service) Ban(ctx context.Context, adminID, listingID int64, reason string) (model.Listing, error) {
	if err := s.check(adminID, listingID); err != nil {
		return model.Listing{}, err
	}

	listing, err := s.fetch(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}

	removed, err := s.queue.Remove(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("remove queue entry: %w", err)
	}
	if !removed {
		return model.Listing{}, ErrAlreadyDecided
	}

	if err := s.blacklist.Add(ctx, listing.AuthorID, reason); err != nil {
		return model.Listing{}, fmt.Errorf("blacklist author: %w", err)
	}

	s.recordAudit(ctx, adminID, enums.AuditActionBan, listingID)
	return listing, nil
}

func (s *Service) check(adminID, listingID int64) error {
	if s.listings == nil || s.queue == nil {
		return fmt.Errorf("moderation stores are not configured")
	}
	if adminID <= 0 {
		return fmt.Errorf("invalid admin id")
	}
	if listingID <= 0 {
		return fmt.Errorf("invalid listing id")
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, listingID int64) (model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("load listing: %w", err)
	}
	return listing, nil
}

// recordAudit is best-effort: a failed audit write never rolls back a
// decision the moderator already made.
func (s *Service) recordAudit(ctx context.Context, adminID int64, action enums.AuditAction, listingID int64) {
	if s.audit == nil {
		return
	}
	id := listingID
	if err := s.audit.Append(ctx, adminID, action, &id); err != nil {
		s.logger.Warn("audit append failed",
			zap.String("action", string(action)),
			zap.Int64("listing_id", listingID),
			zap.Error(err))
	}
}
