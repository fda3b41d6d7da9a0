// Package submission drives the step-by-step intake dialog: category,
// district, title, description, photos, contacts. Drafts live in memory; only
// a completed submission reaches the database, already queued for moderation.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/domain/model"
	"github.com/ivankudzin/classibot/internal/domain/rules"
	"github.com/ivankudzin/classibot/internal/services/content"
	"github.com/ivankudzin/classibot/internal/services/imagehash"
)

type Step string

const (
	StepCategory    Step = "category"
	StepDistrict    Step = "district"
	StepTitle       Step = "title"
	StepDescription Step = "description"
	StepPhotos      Step = "photos"
	StepContacts    Step = "contacts"
)

var (
	ErrNoActiveDraft  = errors.New("no active draft")
	ErrStepMismatch   = errors.New("input does not match the current step")
	ErrBlacklisted    = errors.New("author is blacklisted")
	ErrInvalidChoice  = errors.New("value is not one of the offered options")
	ErrTextInvalid    = errors.New("text is blank or exceeds the field limit")
	ErrDuplicatePhoto = errors.New("photo already attached to this draft")
	ErrPhotoLimit     = errors.New("draft photo limit reached")
	ErrNoPhotos       = errors.New("draft has no photos yet")
)

// RateLimitError reports how long the author has to wait before the intake
// accepts the next action.
type RateLimitError struct {
	RetryAfterSec int64
}

func (e *RateLimitError) Error() string {
	return "rate limited, retry after " + strconv.FormatInt(e.RetryAfterSec, 10) + "s"
}

// ContentError carries the filter verdict so the router can tell the author
// what exactly was wrong.
type ContentError struct {
	Violation content.Violation
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content rejected: %s (%s)", e.Violation.Kind, e.Violation.Matched)
}

type ListingStore interface {
	Create(ctx context.Context, listing model.Listing) (int64, error)
}

type BlacklistStore interface {
	Contains(ctx context.Context, telegramID int64) (bool, error)
}

type Allower interface {
	Allow(ctx context.Context, userID int64) (int64, bool, error)
}

type PhotoFilter interface {
	Check(text string) content.Violation
}

type PhotoHasher interface {
	Hash(data []byte) (imagehash.Fingerprint, error)
}

type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type draft struct {
	step        Step
	category    string
	district    string
	title       string
	description string
	photos      []model.Photo
	contacts    string
}

// Flow owns the draft registry. One author has at most one draft; a new /add
// replaces nothing until the old draft is cancelled or submitted.
type Flow struct {
	categories []string
	districts  []string
	maxPhotos  int

	listings   ListingStore
	blacklist  BlacklistStore
	limiter    Allower
	filter     PhotoFilter
	hasher     PhotoHasher
	downloader FileDownloader
	logger     *zap.Logger

	mu     sync.Mutex
	drafts map[int64]*draft
}

type Deps struct {
	Categories []string
	Districts  []string
	MaxPhotos  int

	Listings   ListingStore
	Blacklist  BlacklistStore
	Limiter    Allower
	Filter     PhotoFilter
	Hasher     PhotoHasher
	Downloader FileDownloader
	Logger     *zap.Logger
}

func NewFlow(deps Deps) *Flow {
	maxPhotos := deps.MaxPhotos
	if maxPhotos <= 0 || maxPhotos > rules.MaxPhotos {
		maxPhotos = rules.MaxPhotos
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Flow{
		categories: deps.Categories,
		districts:  deps.Districts,
		maxPhotos:  maxPhotos,
		listings:   deps.Listings,
		blacklist:  deps.Blacklist,
		limiter:    deps.Limiter,
		filter:     deps.Filter,
		hasher:     deps.Hasher,
		downloader: deps.Downloader,
		logger:     logger,
	}
}

func (f *Flow) Categories() []string { return f.categories }
func (f *Flow) Districts() []string  { return f.districts }
func (f *Flow) MaxPhotos() int       { return f.maxPhotos }

// Begin opens a fresh draft at the category step. An existing draft is
// replaced: the author asked to start over.
func (f *Flow) Begin(ctx context.Context, authorID int64) error {
	if authorID <= 0 {
		return fmt.Errorf("invalid author id")
	}

	if f.blacklist != nil {
		banned, err := f.blacklist.Contains(ctx, authorID)
		if err != nil {
			return fmt.Errorf("check blacklist: %w", err)
		}
		if banned {
			return ErrBlacklisted
		}
	}

	if err := f.throttle(ctx, authorID); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.drafts == nil {
		f.drafts = make(map[int64]*draft)
	}
	f.drafts[authorID] = &draft{step: StepCategory}

	return nil
}

// Cancel drops the draft and reports whether one existed.
func (f *Flow) Cancel(authorID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.drafts[authorID]; !ok {
		return false
	}
	delete(f.drafts, authorID)
	return true
}

// ActiveStep tells the router where the author's draft stands.
func (f *Flow) ActiveStep(authorID int64) (Step, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[authorID]
	if !ok {
		return "", false
	}
	return d.step, true
}

func (f *Flow) ChooseCategory(ctx context.Context, authorID int64, choice string) (Step, error) {
	return f.advance(ctx, authorID, StepCategory, func(d *draft) error {
		if !rules.ChoiceOK(choice, f.categories) {
			return ErrInvalidChoice
		}
		d.category = choice
		d.step = StepDistrict
		return nil
	})
}

func (f *Flow) ChooseDistrict(ctx context.Context, authorID int64, choice string) (Step, error) {
	return f.advance(ctx, authorID, StepDistrict, func(d *draft) error {
		if !rules.ChoiceOK(choice, f.districts) {
			return ErrInvalidChoice
		}
		d.district = choice
		d.step = StepTitle
		return nil
	})
}

func (f *Flow) SetTitle(ctx context.Context, authorID int64, title string) (Step, error) {
	return f.advance(ctx, authorID, StepTitle, func(d *draft) error {
		if !rules.TitleOK(title) {
			return ErrTextInvalid
		}
		if violation := f.filter.Check(title); !violation.OK() {
			return &ContentError{Violation: violation}
		}
		d.title = title
		d.step = StepDescription
		return nil
	})
}

func (f *Flow) SetDescription(ctx context.Context, authorID int64, description string) (Step, error) {
	return f.advance(ctx, authorID, StepDescription, func(d *draft) error {
		if !rules.DescriptionOK(description) {
			return ErrTextInvalid
		}
		if violation := f.filter.Check(description); !violation.OK() {
			return &ContentError{Violation: violation}
		}
		d.description = description
		d.step = StepPhotos
		return nil
	})
}

// AddPhoto fingerprints the incoming photo and attaches it unless the exact
// same image is already on the draft. Returns the attached count.
func (f *Flow) AddPhoto(ctx context.Context, authorID int64, fileID, fileUniqueID string) (int, error) {
	if fileID == "" {
		return 0, fmt.Errorf("empty file id")
	}

	f.mu.Lock()
	d, ok := f.drafts[authorID]
	if !ok {
		f.mu.Unlock()
		return 0, ErrNoActiveDraft
	}
	if d.step != StepPhotos {
		f.mu.Unlock()
		return 0, ErrStepMismatch
	}
	if len(d.photos) >= f.maxPhotos {
		f.mu.Unlock()
		return len(d.photos), ErrPhotoLimit
	}
	f.mu.Unlock()

	// Hashing happens outside the lock: downloads are slow and the draft map
	// must stay responsive for other authors.
	fingerprint := f.fingerprint(ctx, fileID)

	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok = f.drafts[authorID]
	if !ok {
		return 0, ErrNoActiveDraft
	}
	if d.step != StepPhotos {
		return 0, ErrStepMismatch
	}
	if len(d.photos) >= f.maxPhotos {
		return len(d.photos), ErrPhotoLimit
	}

	for _, photo := range d.photos {
		if photo.FileUniqueID == fileUniqueID {
			return len(d.photos), ErrDuplicatePhoto
		}
		if fingerprint != "" && photo.Fingerprint == fingerprint {
			return len(d.photos), ErrDuplicatePhoto
		}
	}

	d.photos = append(d.photos, model.Photo{
		FileID:       fileID,
		FileUniqueID: fileUniqueID,
		Fingerprint:  fingerprint,
	})

	return len(d.photos), nil
}

// FinishPhotos closes the photo step once at least one photo is attached.
func (f *Flow) FinishPhotos(authorID int64) (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[authorID]
	if !ok {
		return "", ErrNoActiveDraft
	}
	if d.step != StepPhotos {
		return d.step, ErrStepMismatch
	}
	if len(d.photos) == 0 {
		return d.step, ErrNoPhotos
	}

	d.step = StepContacts
	return d.step, nil
}

// SetContacts completes the draft: the listing is persisted as queued with its
// moderation queue entry, and the draft is dropped. On a storage error the
// draft survives so the author can retry.
func (f *Flow) SetContacts(ctx context.Context, authorID int64, contacts string) (model.Listing, error) {
	if !rules.ContactsOK(contacts) {
		return model.Listing{}, ErrTextInvalid
	}
	if violation := f.filter.Check(contacts); violation.Kind == content.ViolationBannedWord {
		// Links are allowed in contacts; that is where the author's own
		// channel or profile belongs.
		return model.Listing{}, &ContentError{Violation: violation}
	}

	f.mu.Lock()
	d, ok := f.drafts[authorID]
	if !ok {
		f.mu.Unlock()
		return model.Listing{}, ErrNoActiveDraft
	}
	if d.step != StepContacts {
		f.mu.Unlock()
		return model.Listing{}, ErrStepMismatch
	}
	d.contacts = contacts
	listing := model.Listing{
		AuthorID:    authorID,
		Category:    d.category,
		District:    d.district,
		Title:       d.title,
		Description: d.description,
		Contacts:    d.contacts,
		Photos:      append([]model.Photo(nil), d.photos...),
	}
	f.mu.Unlock()

	if f.listings == nil {
		return model.Listing{}, fmt.Errorf("listing store is not configured")
	}

	listingID, err := f.listings.Create(ctx, listing)
	if err != nil {
		return model.Listing{}, fmt.Errorf("persist listing: %w", err)
	}
	listing.ID = listingID

	f.mu.Lock()
	delete(f.drafts, authorID)
	f.mu.Unlock()

	return listing, nil
}

func (f *Flow) advance(ctx context.Context, authorID int64, want Step, apply func(*draft) error) (Step, error) {
	if err := f.throttle(ctx, authorID); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.drafts[authorID]
	if !ok {
		return "", ErrNoActiveDraft
	}
	if d.step != want {
		return d.step, ErrStepMismatch
	}

	if err := apply(d); err != nil {
		return d.step, err
	}
	return d.step, nil
}

func (f *Flow) throttle(ctx context.Context, authorID int64) error {
	if f.limiter == nil {
		return nil
	}

	retryAfter, allowed, err := f.limiter.Allow(ctx, authorID)
	if err != nil {
		// A broken limiter backend must not freeze intake.
		f.logger.Warn("rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return &RateLimitError{RetryAfterSec: retryAfter}
	}
	return nil
}

// fingerprint downloads and hashes the photo. Failures degrade to an empty
// fingerprint: dedup then falls back to the file unique id alone.
func (f *Flow) fingerprint(ctx context.Context, fileID string) string {
	if f.hasher == nil || f.downloader == nil {
		return ""
	}

	data, err := f.downloader.DownloadFile(ctx, fileID)
	if err != nil {
		f.logger.Warn("photo download for hashing failed", zap.Error(err))
		return ""
	}

	hash, err := f.hasher.Hash(data)
	if err != nil {
		f.logger.Warn("photo hashing failed", zap.Error(err))
		return ""
	}

	return string(hash)
}
