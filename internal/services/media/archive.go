// Package media archives accepted listing photos to object storage. The
// archive is an operator convenience: the bot republishes photos by Telegram
// file id, so a failed upload never blocks the pipeline.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrValidation = errors.New("validation error")

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutPhoto(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Archive copies photo bytes out of Telegram into a bucket, keyed by listing.
type Archive struct {
	storage    ObjectStorage
	downloader FileDownloader
	logger     *zap.Logger
	now        func() time.Time
}

func NewArchive(storage ObjectStorage, downloader FileDownloader, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{
		storage:    storage,
		downloader: downloader,
		logger:     logger,
		now:        time.Now,
	}
}

// Enabled reports whether the archive was wired with real storage. The bot
// runs without it when no S3 endpoint is configured.
func (a *Archive) Enabled() bool {
	return a != nil && a.storage != nil && a.downloader != nil
}

// ArchiveListing uploads every photo of a listing. It keeps going past
// per-photo failures and returns the number of photos stored.
func (a *Archive) ArchiveListing(ctx context.Context, listingID int64, fileIDs []string) (int, error) {
	if !a.Enabled() {
		return 0, nil
	}
	if listingID <= 0 {
		return 0, ErrValidation
	}
	if len(fileIDs) == 0 {
		return 0, nil
	}

	if err := a.storage.EnsureBucket(ctx); err != nil {
		return 0, fmt.Errorf("ensure bucket: %w", err)
	}

	stored := 0
	for _, fileID := range fileIDs {
		if err := a.archivePhoto(ctx, listingID, fileID); err != nil {
			a.logger.Warn("archive photo failed",
				zap.Int64("listing_id", listingID),
				zap.Error(err))
			continue
		}
		stored++
	}

	return stored, nil
}

func (a *Archive) archivePhoto(ctx context.Context, listingID int64, fileID string) error {
	if fileID == "" {
		return ErrValidation
	}

	data, err := a.downloader.DownloadFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("download photo: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty photo body")
	}

	key := buildObjectKey(listingID, a.now())
	contentType := http.DetectContentType(data)

	if err := a.storage.PutPhoto(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return fmt.Errorf("put photo: %w", err)
	}

	return nil
}

func buildObjectKey(listingID int64, now time.Time) string {
	return fmt.Sprintf("listings/%d/%s_%s.jpg",
		listingID,
		now.UTC().Format("20060102T150405"),
		uuid.NewString())
}
