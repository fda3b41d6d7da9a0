// Package publish renders approved listings into channel posts and delivers
// them to target and backup chats.
package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

// Messenger is the transport slice publishing needs.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendListingPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error
}

type Service struct {
	messenger Messenger
	logger    *zap.Logger
}

func NewService(messenger Messenger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{messenger: messenger, logger: logger}
}

// Publish posts the listing to one destination: the first photo carries the
// caption, remaining photos follow as an album. The album is best-effort; the
// post already stands once the captioned photo is out.
func (s *Service) Publish(ctx context.Context, chatID int64, listing model.Listing) error {
	if s.messenger == nil {
		return fmt.Errorf("publish messenger is not configured")
	}
	if chatID == 0 {
		return fmt.Errorf("invalid chat id")
	}

	caption := RenderCaption(listing)

	if len(listing.Photos) == 0 {
		if err := s.messenger.SendText(ctx, chatID, caption); err != nil {
			return fmt.Errorf("publish text post: %w", err)
		}
		return nil
	}

	if err := s.messenger.SendListingPhoto(ctx, chatID, listing.Photos[0].FileID, caption); err != nil {
		return fmt.Errorf("publish captioned photo: %w", err)
	}

	if len(listing.Photos) > 1 {
		rest := make([]string, 0, len(listing.Photos)-1)
		for _, photo := range listing.Photos[1:] {
			rest = append(rest, photo.FileID)
		}
		if err := s.messenger.SendMediaGroup(ctx, chatID, rest); err != nil {
			s.logger.Warn("listing album not delivered",
				zap.Int64("listing_id", listing.ID),
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	return nil
}

// Mirror copies the post to backup chats. Failures are logged and swallowed:
// backups never block or undo the main publication.
func (s *Service) Mirror(ctx context.Context, chatIDs []int64, listing model.Listing) {
	for _, chatID := range chatIDs {
		if chatID == 0 {
			continue
		}
		if err := s.Publish(ctx, chatID, listing); err != nil {
			s.logger.Warn("backup mirror failed",
				zap.Int64("listing_id", listing.ID),
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
}
