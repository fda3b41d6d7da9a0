// Package autopost drains approved listings into target chats on per-chat
// schedules. One Run call is one pass; the app loops it on the poll interval.
package autopost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/domain/model"
	"github.com/ivankudzin/classibot/internal/infra/telegram"
	"github.com/ivankudzin/classibot/internal/repo/postgres"
)

type ListingSource interface {
	ClaimOldestApproved(ctx context.Context, now time.Time) (model.Listing, error)
	ReleaseClaim(ctx context.Context, listingID int64) error
}

type ScheduleStore interface {
	EnsureDefaults(ctx context.Context, chatIDs []int64, interval time.Duration, now time.Time) error
	ListDue(ctx context.Context, now time.Time) ([]model.Schedule, error)
	Advance(ctx context.Context, chatID int64, nextRunAt time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, chatID int64, listing model.Listing) error
	Mirror(ctx context.Context, chatIDs []int64, listing model.Listing)
}

type Job struct {
	listings  ListingSource
	schedules ScheduleStore
	publisher Publisher

	targetChatIDs   []int64
	backupChatIDs   []int64
	defaultInterval time.Duration

	now        func() time.Time
	retryAfter func(error) (time.Duration, bool)
	logger     *zap.Logger
}

func New(
	listings ListingSource,
	schedules ScheduleStore,
	publisher Publisher,
	targetChatIDs []int64,
	backupChatIDs []int64,
	defaultInterval time.Duration,
	logger *zap.Logger,
) *Job {
	if defaultInterval <= 0 {
		defaultInterval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		listings:        listings,
		schedules:       schedules,
		publisher:       publisher,
		targetChatIDs:   targetChatIDs,
		backupChatIDs:   backupChatIDs,
		defaultInterval: defaultInterval,
		now:             time.Now,
		retryAfter:      telegram.RetryAfter,
		logger:          logger,
	}
}

// Seed creates schedule rows for configured destinations that have none yet.
func (j *Job) Seed(ctx context.Context) error {
	if j.schedules == nil {
		return fmt.Errorf("schedule store is not configured")
	}
	if err := j.schedules.EnsureDefaults(ctx, j.targetChatIDs, j.defaultInterval, j.now()); err != nil {
		return fmt.Errorf("seed schedules: %w", err)
	}
	return nil
}

// Run processes every due destination once. Each destination claims its own
// listing, so two due chats never publish the same post.
func (j *Job) Run(ctx context.Context) error {
	if j.listings == nil || j.schedules == nil || j.publisher == nil {
		return fmt.Errorf("autopost dependencies are not configured")
	}

	now := j.now()
	due, err := j.schedules.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due schedules: %w", err)
	}

	for _, schedule := range due {
		j.serveDestination(ctx, schedule, now)
	}

	return nil
}

// serveDestination publishes at most one listing and always moves the
// schedule forward. A destination that keeps failing must not be retried in a
// hot loop on every poll.
func (j *Job) serveDestination(ctx context.Context, schedule model.Schedule, now time.Time) {
	interval := schedule.Interval
	if interval <= 0 {
		interval = j.defaultInterval
	}
	nextRun := now.Add(interval)

	defer func() {
		if err := j.schedules.Advance(ctx, schedule.ChatID, nextRun); err != nil {
			j.logger.Error("advance schedule failed",
				zap.Int64("chat_id", schedule.ChatID),
				zap.Error(err))
		}
	}()

	listing, err := j.listings.ClaimOldestApproved(ctx, now)
	if err != nil {
		if errors.Is(err, postgres.ErrNoApprovedListing) {
			return
		}
		j.logger.Error("claim approved listing failed",
			zap.Int64("chat_id", schedule.ChatID),
			zap.Error(err))
		return
	}

	if err := j.publisher.Publish(ctx, schedule.ChatID, listing); err != nil {
		j.logger.Error("publish listing failed",
			zap.Int64("listing_id", listing.ID),
			zap.Int64("chat_id", schedule.ChatID),
			zap.Error(err))

		if releaseErr := j.listings.ReleaseClaim(ctx, listing.ID); releaseErr != nil {
			j.logger.Error("release claimed listing failed",
				zap.Int64("listing_id", listing.ID),
				zap.Error(releaseErr))
		}

		// Flood control: push the destination past the platform's cool-down.
		if pause, ok := j.retryAfter(err); ok && now.Add(pause).After(nextRun) {
			nextRun = now.Add(pause)
		}
		return
	}

	j.logger.Info("listing published",
		zap.Int64("listing_id", listing.ID),
		zap.Int64("chat_id", schedule.ChatID))

	j.publisher.Mirror(ctx, j.backupChatIDs, listing)
}
