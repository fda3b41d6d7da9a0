package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/classibot/internal/domain/enums"
	"github.com/ivankudzin/classibot/internal/domain/model"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	// ErrNotInQueue marks a decision against a listing that has no pending
	// queue entry: unknown id or already decided. Callers treat it as a no-op
	// outcome, not a failure.
	ErrNotInQueue = errors.New("listing not in moderation queue")
	// ErrNoApprovedListing means the publish claim found nothing to publish.
	ErrNoApprovedListing = errors.New("no approved listing available")
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

// Create persists the listing as queued together with its photos and the
// moderation queue entry in one transaction. A partial commit (listing without
// queue entry or vice versa) is impossible.
func (r *ListingRepo) Create(ctx context.Context, listing model.Listing) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if listing.AuthorID <= 0 {
		return 0, fmt.Errorf("invalid listing author")
	}

	var listingID int64
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
INSERT INTO listings (author_id, category, district, title, description, contacts, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, listing.AuthorID, listing.Category, listing.District, listing.Title,
			listing.Description, listing.Contacts, string(enums.ListingStatusQueued)).Scan(&listingID)
		if err != nil {
			return fmt.Errorf("insert listing: %w", err)
		}

		for _, photo := range listing.Photos {
			if _, err := tx.Exec(ctx, `
INSERT INTO listing_photos (listing_id, file_id, file_unique_id, fingerprint)
VALUES ($1, $2, $3, $4)
`, listingID, photo.FileID, photo.FileUniqueID, photo.Fingerprint); err != nil {
				return fmt.Errorf("insert listing photo: %w", err)
			}
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO moderation_queue (listing_id)
VALUES ($1)
ON CONFLICT (listing_id) DO NOTHING
`, listingID); err != nil {
			return fmt.Errorf("enqueue listing: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return listingID, nil
}

func (r *ListingRepo) GetByID(ctx context.Context, listingID int64) (model.Listing, error) {
	if r.pool == nil {
		return model.Listing{}, fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 {
		return model.Listing{}, fmt.Errorf("invalid listing id")
	}

	var listing model.Listing
	err := r.pool.QueryRow(ctx, `
SELECT id, author_id, category, district, title, description, contacts,
       status, reject_reason, created_at, approved_at, published_at
FROM listings
WHERE id = $1
`, listingID).Scan(
		&listing.ID, &listing.AuthorID, &listing.Category, &listing.District,
		&listing.Title, &listing.Description, &listing.Contacts,
		&listing.Status, &listing.RejectReason, &listing.CreatedAt,
		&listing.ApprovedAt, &listing.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrListingNotFound
		}
		return model.Listing{}, fmt.Errorf("get listing: %w", err)
	}

	photos, err := r.listPhotos(ctx, listingID)
	if err != nil {
		return model.Listing{}, err
	}
	listing.Photos = photos

	return listing, nil
}

func (r *ListingRepo) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]model.Listing, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if authorID <= 0 {
		return nil, fmt.Errorf("invalid author id")
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, author_id, category, district, title, description, contacts,
       status, reject_reason, created_at, approved_at, published_at
FROM listings
WHERE author_id = $1
ORDER BY id DESC
LIMIT $2
`, authorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list listings by author: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// ApproveQueued flips a queued listing to approved and removes its queue entry
// in one transaction. Returns ErrNotInQueue when the listing has no pending
// entry; nothing is modified in that case.
func (r *ListingRepo) ApproveQueued(ctx context.Context, listingID int64) error {
	return r.decideQueued(ctx, listingID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE listings
SET status = $2, approved_at = NOW()
WHERE id = $1 AND status = $3
`, listingID, string(enums.ListingStatusApproved), string(enums.ListingStatusQueued))
		if err != nil {
			return fmt.Errorf("approve listing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotInQueue
		}
		return nil
	})
}

// RejectQueued stores the reason verbatim and removes the queue entry.
func (r *ListingRepo) RejectQueued(ctx context.Context, listingID int64, reason string) error {
	return r.decideQueued(ctx, listingID, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE listings
SET status = $2, reject_reason = $3
WHERE id = $1 AND status = $4
`, listingID, string(enums.ListingStatusRejected), reason, string(enums.ListingStatusQueued))
		if err != nil {
			return fmt.Errorf("reject listing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotInQueue
		}
		return nil
	})
}

func (r *ListingRepo) decideQueued(ctx context.Context, listingID int64, apply func(context.Context, pgx.Tx) error) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 {
		return fmt.Errorf("invalid listing id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
DELETE FROM moderation_queue WHERE listing_id = $1
`, listingID)
		if err != nil {
			return fmt.Errorf("remove queue entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotInQueue
		}

		return apply(ctx, tx)
	})
}

// ClaimOldestApproved selects and marks the oldest approved listing as
// published in a single conditional update. Concurrent claimers cannot pick
// the same listing: the subquery locks the row and a parallel claim skips it.
func (r *ListingRepo) ClaimOldestApproved(ctx context.Context, now time.Time) (model.Listing, error) {
	if r.pool == nil {
		return model.Listing{}, fmt.Errorf("postgres pool is nil")
	}

	var listing model.Listing
	err := r.pool.QueryRow(ctx, `
UPDATE listings
SET status = $1, published_at = $2
WHERE id = (
	SELECT id
	FROM listings
	WHERE status = $3
	ORDER BY created_at ASC, id ASC
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING id, author_id, category, district, title, description, contacts,
          status, reject_reason, created_at, approved_at, published_at
`, string(enums.ListingStatusPublished), now,
		string(enums.ListingStatusApproved)).Scan(
		&listing.ID, &listing.AuthorID, &listing.Category, &listing.District,
		&listing.Title, &listing.Description, &listing.Contacts,
		&listing.Status, &listing.RejectReason, &listing.CreatedAt,
		&listing.ApprovedAt, &listing.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Listing{}, ErrNoApprovedListing
		}
		return model.Listing{}, fmt.Errorf("claim oldest approved listing: %w", err)
	}

	photos, err := r.listPhotos(ctx, listing.ID)
	if err != nil {
		return model.Listing{}, err
	}
	listing.Photos = photos

	return listing, nil
}

// ReleaseClaim puts a claimed listing back to approved after a failed publish
// so the next due cycle retries it.
func (r *ListingRepo) ReleaseClaim(ctx context.Context, listingID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if listingID <= 0 {
		return fmt.Errorf("invalid listing id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE listings
SET status = $2, published_at = NULL
WHERE id = $1 AND status = $3
`, listingID, string(enums.ListingStatusApproved), string(enums.ListingStatusPublished)); err != nil {
		return fmt.Errorf("release claimed listing: %w", err)
	}

	return nil
}

// CountSince returns created and rejected totals for the /stats command.
func (r *ListingRepo) CountSince(ctx context.Context, since time.Time) (created int, rejected int, published int, err error) {
	if r.pool == nil {
		return 0, 0, 0, fmt.Errorf("postgres pool is nil")
	}

	err = r.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = $2),
       COUNT(*) FILTER (WHERE status = $3)
FROM listings
WHERE created_at >= $1
`, since, string(enums.ListingStatusRejected), string(enums.ListingStatusPublished)).
		Scan(&created, &rejected, &published)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count listings since: %w", err)
	}

	return created, rejected, published, nil
}

func (r *ListingRepo) listPhotos(ctx context.Context, listingID int64) ([]model.Photo, error) {
	rows, err := r.pool.Query(ctx, `
SELECT file_id, file_unique_id, fingerprint
FROM listing_photos
WHERE listing_id = $1
ORDER BY id ASC
`, listingID)
	if err != nil {
		return nil, fmt.Errorf("list listing photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var photo model.Photo
		if err := rows.Scan(&photo.FileID, &photo.FileUniqueID, &photo.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan listing photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing photos: %w", err)
	}

	return photos, nil
}

func scanListings(rows pgx.Rows) ([]model.Listing, error) {
	var listings []model.Listing
	for rows.Next() {
		var listing model.Listing
		if err := rows.Scan(
			&listing.ID, &listing.AuthorID, &listing.Category, &listing.District,
			&listing.Title, &listing.Description, &listing.Contacts,
			&listing.Status, &listing.RejectReason, &listing.CreatedAt,
			&listing.ApprovedAt, &listing.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}
