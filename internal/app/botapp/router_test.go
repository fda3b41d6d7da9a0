package botapp

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/classibot/internal/config"
	"github.com/ivankudzin/classibot/internal/domain/enums"
	"github.com/ivankudzin/classibot/internal/domain/model"
	tginfra "github.com/ivankudzin/classibot/internal/infra/telegram"
	"github.com/ivankudzin/classibot/internal/repo/postgres"
	"github.com/ivankudzin/classibot/internal/services/content"
	"github.com/ivankudzin/classibot/internal/services/imagehash"
	modsvc "github.com/ivankudzin/classibot/internal/services/moderation"
	"github.com/ivankudzin/classibot/internal/services/submission"
)

const (
	adminGroupID = int64(-4000)
	adminID      = int64(555)
	authorID     = int64(100)
	guardedChat  = int64(-5000)
)

type sent struct {
	kind   string
	chatID int64
	text   string
}

type fakeBot struct {
	sends   []sent
	deleted []int
	answers []string
}

func (f *fakeBot) SendText(ctx context.Context, chatID int64, text string) error {
	f.sends = append(f.sends, sent{kind: "text", chatID: chatID, text: text})
	return nil
}

func (f *fakeBot) SendTextWithKeyboard(ctx context.Context, chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.sends = append(f.sends, sent{kind: "keyboard", chatID: chatID, text: text})
	return nil
}

func (f *fakeBot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	f.sends = append(f.sends, sent{kind: "photo", chatID: chatID, text: caption})
	return nil
}

func (f *fakeBot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	f.sends = append(f.sends, sent{kind: "edit", chatID: chatID, text: text})
	return nil
}

func (f *fakeBot) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string) error {
	f.sends = append(f.sends, sent{kind: "caption", chatID: chatID, text: caption})
	return nil
}

func (f *fakeBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeBot) lastTo(chatID int64) string {
	for i := len(f.sends) - 1; i >= 0; i-- {
		if f.sends[i].chatID == chatID {
			return f.sends[i].text
		}
	}
	return ""
}

type fakeUsers struct {
	agreed map[int64]bool
}

func (f *fakeUsers) GetOrCreate(ctx context.Context, id int64, username string) (model.User, error) {
	return model.User{TelegramID: id, Username: username, AgreedRules: f.agreed[id]}, nil
}

func (f *fakeUsers) Get(ctx context.Context, id int64) (model.User, error) {
	return model.User{TelegramID: id, AgreedRules: f.agreed[id]}, nil
}

func (f *fakeUsers) SetAgreedRules(ctx context.Context, id int64) error {
	if f.agreed == nil {
		f.agreed = make(map[int64]bool)
	}
	f.agreed[id] = true
	return nil
}

// testStore backs the flow, the moderation service and the stats commands.
type testStore struct {
	listings map[int64]*model.Listing
	queued   map[int64]bool
	banned   map[int64]bool
	nextID   int64
}

func newTestStore() *testStore {
	return &testStore{
		listings: make(map[int64]*model.Listing),
		queued:   make(map[int64]bool),
		banned:   make(map[int64]bool),
	}
}

func (s *testStore) Create(ctx context.Context, listing model.Listing) (int64, error) {
	s.nextID++
	listing.ID = s.nextID
	listing.Status = enums.ListingStatusQueued
	s.listings[listing.ID] = &listing
	s.queued[listing.ID] = true
	return listing.ID, nil
}

func (s *testStore) Contains(ctx context.Context, id int64) (bool, error) {
	return s.banned[id], nil
}

func (s *testStore) Add(ctx context.Context, id int64, reason string) error {
	s.banned[id] = true
	return nil
}

func (s *testStore) GetByID(ctx context.Context, id int64) (model.Listing, error) {
	listing, ok := s.listings[id]
	if !ok {
		return model.Listing{}, postgres.ErrListingNotFound
	}
	return *listing, nil
}

func (s *testStore) ApproveQueued(ctx context.Context, id int64) error {
	if !s.queued[id] {
		return postgres.ErrNotInQueue
	}
	delete(s.queued, id)
	s.listings[id].Status = enums.ListingStatusApproved
	return nil
}

func (s *testStore) RejectQueued(ctx context.Context, id int64, reason string) error {
	if !s.queued[id] {
		return postgres.ErrNotInQueue
	}
	delete(s.queued, id)
	s.listings[id].Status = enums.ListingStatusRejected
	s.listings[id].RejectReason = reason
	return nil
}

func (s *testStore) ListOldest(ctx context.Context, limit int) ([]model.QueueEntry, error) {
	var entries []model.QueueEntry
	for id := range s.queued {
		entries = append(entries, model.QueueEntry{ListingID: id, QueuedAt: time.Now()})
	}
	return entries, nil
}

func (s *testStore) Remove(ctx context.Context, id int64) (bool, error) {
	if !s.queued[id] {
		return false, nil
	}
	delete(s.queued, id)
	return true, nil
}

func (s *testStore) Size(ctx context.Context) (int, error) { return len(s.queued), nil }

func (s *testStore) ListByAuthor(ctx context.Context, author int64, limit int) ([]model.Listing, error) {
	var out []model.Listing
	for _, listing := range s.listings {
		if listing.AuthorID == author {
			out = append(out, *listing)
		}
	}
	return out, nil
}

func (s *testStore) CountSince(ctx context.Context, since time.Time) (int, int, int, error) {
	return len(s.listings), 0, 0, nil
}

func (s *testStore) Append(ctx context.Context, adminID int64, action enums.AuditAction, listingID *int64) error {
	return nil
}

type openLimiter struct{}

func (openLimiter) Allow(ctx context.Context, userID int64) (int64, bool, error) {
	return 0, true, nil
}

type noHasher struct{}

func (noHasher) Hash(data []byte) (imagehash.Fingerprint, error) {
	return imagehash.Fingerprint("fp"), nil
}

type noDownloader struct{}

func (noDownloader) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	return []byte(fileID), nil
}

type disabledArchive struct{}

func (disabledArchive) Enabled() bool { return false }

func (disabledArchive) ArchiveListing(ctx context.Context, listingID int64, fileIDs []string) (int, error) {
	return 0, nil
}

type wordSink struct{ words []string }

func (w *wordSink) Add(ctx context.Context, word string) error {
	w.words = append(w.words, word)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *fakeBot, *testStore, *fakeUsers) {
	t.Helper()

	store := newTestStore()
	bot := &fakeBot{}
	users := &fakeUsers{agreed: map[int64]bool{authorID: true}}
	filter := content.NewFilter([]string{"казино"})

	cfg := config.Default()
	cfg.Bot.AdminGroupID = adminGroupID
	cfg.Bot.Admins = []int64{adminID}
	cfg.Bot.GuardedChats = []int64{guardedChat}
	cfg.Intake.Categories = []string{"Продам", "Куплю"}
	cfg.Intake.Districts = []string{"Центр"}

	flow := submission.NewFlow(submission.Deps{
		Categories: cfg.Intake.Categories,
		Districts:  cfg.Intake.Districts,
		MaxPhotos:  5,
		Listings:   store,
		Blacklist:  store,
		Limiter:    openLimiter{},
		Filter:     filter,
		Hasher:     noHasher{},
		Downloader: noDownloader{},
	})

	router := NewRouter(RouterDeps{
		Config:     cfg,
		Bot:        bot,
		Users:      users,
		Listings:   store,
		Queue:      store,
		BadWords:   &wordSink{},
		Flow:       flow,
		Moderation: modsvc.NewService(store, store, store, store, nil),
		Filter:     filter,
		Archive:    disabledArchive{},
	})

	return router, bot, store, users
}

func submitListing(t *testing.T, router *Router) int64 {
	t.Helper()
	ctx := context.Background()

	if err := router.handleCommand(ctx, tginfra.CommandUpdate{ChatID: authorID, UserID: authorID, Command: "add"}); err != nil {
		t.Fatalf("/add: %v", err)
	}
	if err := router.handleCallback(ctx, tginfra.CallbackUpdate{CallbackID: "c1", ChatID: authorID, MessageID: 1, UserID: authorID, Data: "cat:Продам"}); err != nil {
		t.Fatalf("category callback: %v", err)
	}
	if err := router.handleCallback(ctx, tginfra.CallbackUpdate{CallbackID: "c2", ChatID: authorID, MessageID: 2, UserID: authorID, Data: "dist:Центр"}); err != nil {
		t.Fatalf("district callback: %v", err)
	}
	if err := router.handleText(ctx, tginfra.TextUpdate{ChatID: authorID, UserID: authorID, Text: "Продам шафу"}); err != nil {
		t.Fatalf("title: %v", err)
	}
	if err := router.handleText(ctx, tginfra.TextUpdate{ChatID: authorID, UserID: authorID, Text: "Гарна дубова шафа"}); err != nil {
		t.Fatalf("description: %v", err)
	}
	if err := router.handlePhoto(ctx, tginfra.PhotoUpdate{ChatID: authorID, UserID: authorID, FileID: "file-1", FileUniqueID: "u-1"}); err != nil {
		t.Fatalf("photo: %v", err)
	}
	if err := router.handleText(ctx, tginfra.TextUpdate{ChatID: authorID, UserID: authorID, Text: "готово"}); err != nil {
		t.Fatalf("done word: %v", err)
	}
	if err := router.handleText(ctx, tginfra.TextUpdate{ChatID: authorID, UserID: authorID, Text: "@author"}); err != nil {
		t.Fatalf("contacts: %v", err)
	}

	return 1
}

func TestSubmissionDialogProducesModerationCard(t *testing.T) {
	router, bot, store, _ := newTestRouter(t)

	listingID := submitListing(t, router)

	listing := store.listings[listingID]
	if listing == nil || listing.Status != enums.ListingStatusQueued {
		t.Fatalf("listing = %+v", listing)
	}
	if !store.queued[listingID] {
		t.Fatal("listing must sit in the moderation queue")
	}

	card := bot.lastTo(adminGroupID)
	if !strings.Contains(card, "Продам шафу") || !strings.Contains(card, "Оголошення №1") {
		t.Fatalf("moderation card = %q", card)
	}
	if !strings.Contains(bot.lastTo(authorID), "№1") {
		t.Fatalf("author confirmation = %q", bot.lastTo(authorID))
	}
}

func TestStartRequiresRulesAgreement(t *testing.T) {
	router, bot, _, users := newTestRouter(t)
	ctx := context.Background()

	if err := router.handleCommand(ctx, tginfra.CommandUpdate{ChatID: 200, UserID: 200, Command: "start"}); err != nil {
		t.Fatalf("/start: %v", err)
	}
	if !strings.Contains(bot.lastTo(200), "Правила") {
		t.Fatalf("new user must see rules, got %q", bot.lastTo(200))
	}

	if err := router.handleCallback(ctx, tginfra.CallbackUpdate{CallbackID: "c", ChatID: 200, MessageID: 1, UserID: 200, Data: "rules:agree"}); err != nil {
		t.Fatalf("agree callback: %v", err)
	}
	if !users.agreed[200] {
		t.Fatal("agreement must be persisted")
	}

	if err := router.handleCommand(ctx, tginfra.CommandUpdate{ChatID: 200, UserID: 200, Command: "start"}); err != nil {
		t.Fatalf("/start after agree: %v", err)
	}
	if !strings.Contains(bot.lastTo(200), "/add") {
		t.Fatalf("agreed user must see the menu, got %q", bot.lastTo(200))
	}
}

func TestApproveCallbackNotifiesAuthor(t *testing.T) {
	router, bot, store, _ := newTestRouter(t)
	listingID := submitListing(t, router)

	err := router.handleCallback(context.Background(), tginfra.CallbackUpdate{
		CallbackID: "m1", ChatID: adminGroupID, MessageID: 9,
		UserID: adminID, Data: "mod:approve:1",
	})
	if err != nil {
		t.Fatalf("approve callback: %v", err)
	}

	if store.listings[listingID].Status != enums.ListingStatusApproved {
		t.Fatalf("status = %q", store.listings[listingID].Status)
	}
	if !strings.Contains(bot.lastTo(authorID), "схвалено") {
		t.Fatalf("author notice = %q", bot.lastTo(authorID))
	}

	// Second press on the stale card.
	err = router.handleCallback(context.Background(), tginfra.CallbackUpdate{
		CallbackID: "m2", ChatID: adminGroupID, MessageID: 9,
		UserID: adminID, Data: "mod:approve:1",
	})
	if err != nil {
		t.Fatalf("repeat approve: %v", err)
	}
	if last := bot.answers[len(bot.answers)-1]; last != msgAlreadyDecided {
		t.Fatalf("repeat answer = %q", last)
	}
}

func TestRejectFlowAsksForReason(t *testing.T) {
	router, bot, store, _ := newTestRouter(t)
	listingID := submitListing(t, router)
	ctx := context.Background()

	err := router.handleCallback(ctx, tginfra.CallbackUpdate{
		CallbackID: "m1", ChatID: adminGroupID, MessageID: 9,
		UserID: adminID, Data: "mod:reject:1",
	})
	if err != nil {
		t.Fatalf("reject callback: %v", err)
	}
	if !strings.Contains(bot.lastTo(adminGroupID), "причину") {
		t.Fatalf("reason prompt = %q", bot.lastTo(adminGroupID))
	}

	err = router.handleText(ctx, tginfra.TextUpdate{
		ChatID: adminGroupID, UserID: adminID, Text: "Нечитабельні фото",
	})
	if err != nil {
		t.Fatalf("reason text: %v", err)
	}

	listing := store.listings[listingID]
	if listing.Status != enums.ListingStatusRejected || listing.RejectReason != "Нечитабельні фото" {
		t.Fatalf("listing = %+v", listing)
	}
	if !strings.Contains(bot.lastTo(authorID), "Нечитабельні фото") {
		t.Fatalf("author notice = %q", bot.lastTo(authorID))
	}
}

func TestBanCallbackBlacklistsAuthorOnly(t *testing.T) {
	router, _, store, _ := newTestRouter(t)
	listingID := submitListing(t, router)

	err := router.handleCallback(context.Background(), tginfra.CallbackUpdate{
		CallbackID: "m1", ChatID: adminGroupID, MessageID: 9,
		UserID: adminID, Data: "mod:ban:1",
	})
	if err != nil {
		t.Fatalf("ban callback: %v", err)
	}

	if !store.banned[authorID] {
		t.Fatal("author must be blacklisted")
	}
	if store.listings[listingID].Status != enums.ListingStatusQueued {
		t.Fatalf("ban must not change listing status, got %q", store.listings[listingID].Status)
	}
}

func TestBanCallbackNotifiesAuthor(t *testing.T) {
	router, bot, _, _ := newTestRouter(t)
	submitListing(t, router)

	err := router.handleCallback(context.Background(), tginfra.CallbackUpdate{
		CallbackID: "m1", ChatID: adminGroupID, MessageID: 9,
		UserID: adminID, Data: "mod:ban:1",
	})
	if err != nil {
		t.Fatalf("ban callback: %v", err)
	}
	if bot.lastTo(authorID) != msgBannedAuthor {
		t.Fatalf("ban notice = %q", bot.lastTo(authorID))
	}
}

func TestDecisionCallbackRequiresAdmin(t *testing.T) {
	router, bot, store, _ := newTestRouter(t)
	submitListing(t, router)

	err := router.handleCallback(context.Background(), tginfra.CallbackUpdate{
		CallbackID: "m1", ChatID: 777, MessageID: 9,
		UserID: 777, Data: "mod:approve:1",
	})
	if err != nil {
		t.Fatalf("non-admin callback: %v", err)
	}

	if store.listings[1].Status != enums.ListingStatusQueued {
		t.Fatal("non-admin must not decide")
	}
	if last := bot.answers[len(bot.answers)-1]; last != msgNotAdmin {
		t.Fatalf("answer = %q", last)
	}
}

func TestGroupLinkGuardDeletesSpam(t *testing.T) {
	router, bot, _, _ := newTestRouter(t)
	ctx := context.Background()

	err := router.handleText(ctx, tginfra.TextUpdate{
		ChatID: guardedChat, UserID: 700, Text: "дивись https://spam.example",
		IsGroup: true, Message: 42,
	})
	if err != nil {
		t.Fatalf("group text: %v", err)
	}
	if len(bot.deleted) != 1 || bot.deleted[0] != 42 {
		t.Fatalf("deleted = %v, want [42]", bot.deleted)
	}

	// Admins keep their links; plain text stays too.
	bot.deleted = nil
	_ = router.handleText(ctx, tginfra.TextUpdate{
		ChatID: guardedChat, UserID: adminID, Text: "https://ok.example",
		IsGroup: true, Message: 43,
	})
	_ = router.handleText(ctx, tginfra.TextUpdate{
		ChatID: guardedChat, UserID: 700, Text: "просто повідомлення",
		IsGroup: true, Message: 44,
	})
	if len(bot.deleted) != 0 {
		t.Fatalf("deleted = %v, want none", bot.deleted)
	}
}

func TestBlacklistedAuthorCannotStartDraft(t *testing.T) {
	router, bot, store, _ := newTestRouter(t)
	store.banned[authorID] = true

	err := router.handleCommand(context.Background(), tginfra.CommandUpdate{
		ChatID: authorID, UserID: authorID, Command: "add",
	})
	if err != nil {
		t.Fatalf("/add: %v", err)
	}
	if bot.lastTo(authorID) != msgBlacklisted {
		t.Fatalf("reply = %q", bot.lastTo(authorID))
	}
}
