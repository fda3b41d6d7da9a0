package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/classibot/internal/config"
	"github.com/ivankudzin/classibot/internal/domain/enums"
	"github.com/ivankudzin/classibot/internal/domain/model"
	tginfra "github.com/ivankudzin/classibot/internal/infra/telegram"
	"github.com/ivankudzin/classibot/internal/services/content"
	modsvc "github.com/ivankudzin/classibot/internal/services/moderation"
	"github.com/ivankudzin/classibot/internal/services/submission"
)

type messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

type userStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (model.User, error)
	Get(ctx context.Context, telegramID int64) (model.User, error)
	SetAgreedRules(ctx context.Context, telegramID int64) error
}

type listingReader interface {
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]model.Listing, error)
	CountSince(ctx context.Context, since time.Time) (created int, rejected int, published int, err error)
}

type queueCounter interface {
	Size(ctx context.Context) (int, error)
}

type wordStore interface {
	Add(ctx context.Context, word string) error
}

type photoArchiver interface {
	Enabled() bool
	ArchiveListing(ctx context.Context, listingID int64, fileIDs []string) (int, error)
}

// rejectCard remembers which moderation card an admin is rejecting while the
// bot waits for the typed reason.
type rejectCard struct {
	ListingID int64
	ChatID    int64
	MessageID int
}

type Router struct {
	cfg        config.Config
	bot        messenger
	users      userStore
	listings   listingReader
	queue      queueCounter
	badWords   wordStore
	flow       *submission.Flow
	moderation *modsvc.Service
	filter     *content.Filter
	archive    photoArchiver
	logger     *zap.Logger
	now        func() time.Time

	rejectMu      sync.Mutex
	rejectByAdmin map[int64]rejectCard
}

type RouterDeps struct {
	Config     config.Config
	Bot        messenger
	Users      userStore
	Listings   listingReader
	Queue      queueCounter
	BadWords   wordStore
	Flow       *submission.Flow
	Moderation *modsvc.Service
	Filter     *content.Filter
	Archive    photoArchiver
	Logger     *zap.Logger
}

func NewRouter(deps RouterDeps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Router{
		cfg:           deps.Config,
		bot:           deps.Bot,
		users:         deps.Users,
		listings:      deps.Listings,
		queue:         deps.Queue,
		badWords:      deps.BadWords,
		flow:          deps.Flow,
		moderation:    deps.Moderation,
		filter:        deps.Filter,
		archive:       deps.Archive,
		logger:        logger,
		now:           time.Now,
		rejectByAdmin: make(map[int64]rejectCard),
	}
}

// Handlers adapts the router to the transport. A failed update is logged and
// dropped; one bad message must not stop the long-poll loop.
func (r *Router) Handlers() tginfra.Handlers {
	return tginfra.Handlers{
		OnCommand: func(ctx context.Context, u tginfra.CommandUpdate) error {
			r.logHandlerErr("command", r.handleCommand(ctx, u))
			return nil
		},
		OnText: func(ctx context.Context, u tginfra.TextUpdate) error {
			r.logHandlerErr("text", r.handleText(ctx, u))
			return nil
		},
		OnPhoto: func(ctx context.Context, u tginfra.PhotoUpdate) error {
			r.logHandlerErr("photo", r.handlePhoto(ctx, u))
			return nil
		},
		OnCallback: func(ctx context.Context, u tginfra.CallbackUpdate) error {
			r.logHandlerErr("callback", r.handleCallback(ctx, u))
			return nil
		},
	}
}

func (r *Router) logHandlerErr(kind string, err error) {
	if err != nil {
		r.logger.Error("update handling failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (r *Router) handleCommand(ctx context.Context, u tginfra.CommandUpdate) error {
	if u.ChatID < 0 {
		// Group chats only react to admin commands.
		switch u.Command {
		case "queue", "stats", "addword":
		default:
			return nil
		}
	}

	switch u.Command {
	case "start":
		return r.cmdStart(ctx, u)
	case "rules":
		return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgRulesText, tginfra.RulesKeyboard())
	case "faq":
		return r.bot.SendText(ctx, u.ChatID, msgFAQ)
	case "add":
		return r.cmdAdd(ctx, u)
	case "cancel":
		if r.flow.Cancel(u.UserID) {
			return r.bot.SendText(ctx, u.ChatID, msgCancelled)
		}
		return r.bot.SendText(ctx, u.ChatID, msgNothingToCancel)
	case "my_posts":
		return r.cmdMyPosts(ctx, u)
	case "queue":
		return r.cmdQueue(ctx, u)
	case "stats":
		return r.cmdStats(ctx, u)
	case "addword":
		return r.cmdAddWord(ctx, u)
	default:
		return nil
	}
}

func (r *Router) cmdStart(ctx context.Context, u tginfra.CommandUpdate) error {
	user, err := r.users.GetOrCreate(ctx, u.UserID, u.Username)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	if !user.AgreedRules {
		return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgRulesText, tginfra.RulesKeyboard())
	}
	return r.bot.SendText(ctx, u.ChatID, msgWelcome)
}

func (r *Router) cmdAdd(ctx context.Context, u tginfra.CommandUpdate) error {
	user, err := r.users.GetOrCreate(ctx, u.UserID, u.Username)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if !user.AgreedRules {
		return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgRulesText, tginfra.RulesKeyboard())
	}

	if err := r.flow.Begin(ctx, u.UserID); err != nil {
		return r.replyFlowError(ctx, u.ChatID, err)
	}

	return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgAskCategory,
		tginfra.ChoiceKeyboard(tginfra.CallbackPrefixCategory, r.flow.Categories()))
}

func (r *Router) cmdMyPosts(ctx context.Context, u tginfra.CommandUpdate) error {
	listings, err := r.listings.ListByAuthor(ctx, u.UserID, 10)
	if err != nil {
		return fmt.Errorf("list author posts: %w", err)
	}
	return r.bot.SendText(ctx, u.ChatID, renderMyPosts(listings))
}

func (r *Router) cmdQueue(ctx context.Context, u tginfra.CommandUpdate) error {
	if !r.isAdmin(u.UserID, u.ChatID) {
		return r.bot.SendText(ctx, u.ChatID, msgNotAdmin)
	}

	pending, total, err := r.moderation.Pending(ctx, 10)
	if err != nil {
		return fmt.Errorf("load moderation queue: %w", err)
	}
	return r.bot.SendText(ctx, u.ChatID, renderQueue(pending, total))
}

func (r *Router) cmdStats(ctx context.Context, u tginfra.CommandUpdate) error {
	if !r.isAdmin(u.UserID, u.ChatID) {
		return r.bot.SendText(ctx, u.ChatID, msgNotAdmin)
	}

	periods := []struct {
		label string
		span  time.Duration
	}{
		{"добу", 24 * time.Hour},
		{"тиждень", 7 * 24 * time.Hour},
		{"місяць", 30 * 24 * time.Hour},
	}

	windows := make([]statsWindow, 0, len(periods))
	for _, p := range periods {
		created, rejected, published, err := r.listings.CountSince(ctx, r.now().Add(-p.span))
		if err != nil {
			return fmt.Errorf("count listings for %s: %w", p.label, err)
		}
		windows = append(windows, statsWindow{
			Label:     p.label,
			Created:   created,
			Rejected:  rejected,
			Published: published,
		})
	}

	size, err := r.queue.Size(ctx)
	if err != nil {
		return fmt.Errorf("queue size: %w", err)
	}
	return r.bot.SendText(ctx, u.ChatID, renderStats(windows, size))
}

func (r *Router) cmdAddWord(ctx context.Context, u tginfra.CommandUpdate) error {
	if !r.isAdmin(u.UserID, u.ChatID) {
		return r.bot.SendText(ctx, u.ChatID, msgNotAdmin)
	}

	word := strings.ToLower(strings.TrimSpace(u.Args))
	if word == "" {
		return r.bot.SendText(ctx, u.ChatID, msgWordUsage)
	}

	if !r.filter.AddTerm(word) {
		return r.bot.SendText(ctx, u.ChatID, msgWordExists)
	}
	if err := r.badWords.Add(ctx, word); err != nil {
		return fmt.Errorf("persist bad word: %w", err)
	}
	return r.bot.SendText(ctx, u.ChatID, msgWordAdded)
}

func (r *Router) handleText(ctx context.Context, u tginfra.TextUpdate) error {
	// Reject reasons are typed in the admin group, so this check runs before
	// the group branch.
	if card, ok := r.takeRejectCard(u.UserID); ok {
		return r.finishReject(ctx, u, card)
	}

	if u.IsGroup {
		return r.guardGroupMessage(ctx, u)
	}

	step, active := r.flow.ActiveStep(u.UserID)
	if !active {
		return r.bot.SendText(ctx, u.ChatID, msgNoDraft)
	}

	switch step {
	case submission.StepCategory:
		if _, err := r.flow.ChooseCategory(ctx, u.UserID, u.Text); err != nil {
			return r.replyFlowError(ctx, u.ChatID, err)
		}
		return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgAskDistrict,
			tginfra.ChoiceKeyboard(tginfra.CallbackPrefixDistrict, r.flow.Districts()))

	case submission.StepDistrict:
		if _, err := r.flow.ChooseDistrict(ctx, u.UserID, u.Text); err != nil {
			return r.replyFlowError(ctx, u.ChatID, err)
		}
		return r.bot.SendText(ctx, u.ChatID, msgAskTitle)

	case submission.StepTitle:
		if _, err := r.flow.SetTitle(ctx, u.UserID, u.Text); err != nil {
			return r.replyFlowError(ctx, u.ChatID, err)
		}
		return r.bot.SendText(ctx, u.ChatID, msgAskDescription)

	case submission.StepDescription:
		if _, err := r.flow.SetDescription(ctx, u.UserID, u.Text); err != nil {
			return r.replyFlowError(ctx, u.ChatID, err)
		}
		return r.bot.SendText(ctx, u.ChatID, askPhotosText(r.flow.MaxPhotos()))

	case submission.StepPhotos:
		if strings.EqualFold(strings.TrimSpace(u.Text), doneWord) {
			if _, err := r.flow.FinishPhotos(u.UserID); err != nil {
				return r.replyFlowError(ctx, u.ChatID, err)
			}
			return r.bot.SendText(ctx, u.ChatID, msgAskContacts)
		}
		return r.bot.SendText(ctx, u.ChatID, msgPhotosOnly)

	case submission.StepContacts:
		listing, err := r.flow.SetContacts(ctx, u.UserID, u.Text)
		if err != nil {
			return r.replyFlowError(ctx, u.ChatID, err)
		}
		if err := r.bot.SendText(ctx, u.ChatID, fmt.Sprintf(msgSubmitted, listing.ID)); err != nil {
			return err
		}
		r.sendModerationCard(ctx, listing, u.Username)
		return nil

	default:
		return nil
	}
}

// guardGroupMessage deletes link spam from non-admins in guarded chats.
func (r *Router) guardGroupMessage(ctx context.Context, u tginfra.TextUpdate) error {
	if !r.isGuardedChat(u.ChatID) || r.isAdminUser(u.UserID) {
		return nil
	}
	if !r.filter.HasLink(u.Text) {
		return nil
	}

	if err := r.bot.DeleteMessage(ctx, u.ChatID, u.Message); err != nil {
		return fmt.Errorf("delete link message: %w", err)
	}
	r.logger.Info("link message removed",
		zap.Int64("chat_id", u.ChatID),
		zap.Int64("user_id", u.UserID))
	return nil
}

func (r *Router) handlePhoto(ctx context.Context, u tginfra.PhotoUpdate) error {
	count, err := r.flow.AddPhoto(ctx, u.UserID, u.FileID, u.FileUniqueID)
	if err != nil {
		if errors.Is(err, submission.ErrNoActiveDraft) || errors.Is(err, submission.ErrStepMismatch) {
			// Stray photo outside the photo step; stay silent.
			return nil
		}
		return r.replyFlowError(ctx, u.ChatID, err)
	}

	return r.bot.SendText(ctx, u.ChatID, fmt.Sprintf(msgPhotoAdded, count, r.flow.MaxPhotos()))
}

func (r *Router) handleCallback(ctx context.Context, u tginfra.CallbackUpdate) error {
	data := u.Data

	switch {
	case data == tginfra.CallbackRulesAgree:
		if err := r.users.SetAgreedRules(ctx, u.UserID); err != nil {
			return fmt.Errorf("save rules agreement: %w", err)
		}
		if err := r.bot.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
			return err
		}
		return r.bot.EditMessageText(ctx, u.ChatID, u.MessageID, msgRulesAgreed)

	case data == tginfra.CallbackRulesDecline:
		if err := r.bot.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
			return err
		}
		return r.bot.EditMessageText(ctx, u.ChatID, u.MessageID, msgRulesDeclined)

	case strings.HasPrefix(data, tginfra.CallbackPrefixCategory):
		choice := strings.TrimPrefix(data, tginfra.CallbackPrefixCategory)
		if _, err := r.flow.ChooseCategory(ctx, u.UserID, choice); err != nil {
			return r.answerFlowError(ctx, u, err)
		}
		if err := r.bot.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
			return err
		}
		if err := r.bot.EditMessageText(ctx, u.ChatID, u.MessageID, choice); err != nil {
			return err
		}
		return r.bot.SendTextWithKeyboard(ctx, u.ChatID, msgAskDistrict,
			tginfra.ChoiceKeyboard(tginfra.CallbackPrefixDistrict, r.flow.Districts()))

	case strings.HasPrefix(data, tginfra.CallbackPrefixDistrict):
		choice := strings.TrimPrefix(data, tginfra.CallbackPrefixDistrict)
		if _, err := r.flow.ChooseDistrict(ctx, u.UserID, choice); err != nil {
			return r.answerFlowError(ctx, u, err)
		}
		if err := r.bot.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
			return err
		}
		if err := r.bot.EditMessageText(ctx, u.ChatID, u.MessageID, choice); err != nil {
			return err
		}
		return r.bot.SendText(ctx, u.ChatID, msgAskTitle)

	case strings.HasPrefix(data, tginfra.CallbackPrefixDecision):
		return r.handleDecision(ctx, u, strings.TrimPrefix(data, tginfra.CallbackPrefixDecision))

	default:
		return r.bot.AnswerCallback(ctx, u.CallbackID, "")
	}
}

func (r *Router) handleDecision(ctx context.Context, u tginfra.CallbackUpdate, payload string) error {
	if !r.isAdmin(u.UserID, u.ChatID) {
		return r.bot.AnswerCallback(ctx, u.CallbackID, msgNotAdmin)
	}

	action, idText, ok := strings.Cut(payload, ":")
	if !ok {
		return r.bot.AnswerCallback(ctx, u.CallbackID, "")
	}
	decision := enums.Decision(action)
	listingID, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || listingID <= 0 || !decision.Valid() {
		return r.bot.AnswerCallback(ctx, u.CallbackID, "")
	}

	switch decision {
	case enums.DecisionApprove:
		return r.decideApprove(ctx, u, listingID)
	case enums.DecisionReject:
		return r.startReject(ctx, u, listingID)
	default:
		return r.decideBan(ctx, u, listingID)
	}
}

func (r *Router) decideApprove(ctx context.Context, u tginfra.CallbackUpdate, listingID int64) error {
	listing, err := r.moderation.Approve(ctx, u.UserID, listingID)
	if err != nil {
		if errors.Is(err, modsvc.ErrAlreadyDecided) {
			return r.bot.AnswerCallback(ctx, u.CallbackID, msgAlreadyDecided)
		}
		return fmt.Errorf("approve listing %d: %w", listingID, err)
	}

	if err := r.bot.AnswerCallback(ctx, u.CallbackID, "Схвалено ✅"); err != nil {
		return err
	}
	r.updateCard(ctx, u.ChatID, u.MessageID, renderDecidedCard(listing, "схвалено ✅"))
	r.notifyAuthor(ctx, listing.AuthorID, fmt.Sprintf(msgApprovedAuthor, listing.Title))
	r.mirrorToLog(ctx, renderLogLine(listing, u.UserID, "схвалено", r.now()))
	r.archivePhotos(ctx, listing)
	return nil
}

func (r *Router) startReject(ctx context.Context, u tginfra.CallbackUpdate, listingID int64) error {
	r.rejectMu.Lock()
	r.rejectByAdmin[u.UserID] = rejectCard{
		ListingID: listingID,
		ChatID:    u.ChatID,
		MessageID: u.MessageID,
	}
	r.rejectMu.Unlock()

	if err := r.bot.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
		return err
	}
	return r.bot.SendText(ctx, u.ChatID, fmt.Sprintf(msgAskRejectReason, listingID))
}

func (r *Router) finishReject(ctx context.Context, u tginfra.TextUpdate, card rejectCard) error {
	listing, err := r.moderation.Reject(ctx, u.UserID, card.ListingID, u.Text)
	if err != nil {
		if errors.Is(err, modsvc.ErrAlreadyDecided) {
			return r.bot.SendText(ctx, u.ChatID, msgAlreadyDecided)
		}
		return fmt.Errorf("reject listing %d: %w", card.ListingID, err)
	}

	r.updateCard(ctx, card.ChatID, card.MessageID, renderDecidedCard(listing, "відхилено ❌"))
	r.notifyAuthor(ctx, listing.AuthorID,
		fmt.Sprintf(msgRejectedAuthor, listing.Title, listing.RejectReason))
	r.mirrorToLog(ctx, renderLogLine(listing, u.UserID, "відхилено: "+listing.RejectReason, r.now()))
	return r.bot.SendText(ctx, u.ChatID, fmt.Sprintf("Оголошення №%d відхилено.", listing.ID))
}

func (r *Router) decideBan(ctx context.Context, u tginfra.CallbackUpdate, listingID int64) error {
	listing, err := r.moderation.Ban(ctx, u.UserID, listingID, "заблоковано модератором")
	if err != nil {
		if errors.Is(err, modsvc.ErrAlreadyDecided) {
			return r.bot.AnswerCallback(ctx, u.CallbackID, msgAlreadyDecided)
		}
		return fmt.Errorf("ban author of listing %d: %w", listingID, err)
	}

	if err := r.bot.AnswerCallback(ctx, u.CallbackID, "Автора заблоковано ⛔"); err != nil {
		return err
	}
	r.updateCard(ctx, u.ChatID, u.MessageID, renderDecidedCard(listing, "автора заблоковано ⛔"))
	r.notifyAuthor(ctx, listing.AuthorID, msgBannedAuthor)
	r.mirrorToLog(ctx, renderLogLine(listing, u.UserID, "бан автора", r.now()))
	return nil
}

func (r *Router) takeRejectCard(adminID int64) (rejectCard, bool) {
	r.rejectMu.Lock()
	defer r.rejectMu.Unlock()

	card, ok := r.rejectByAdmin[adminID]
	if ok {
		delete(r.rejectByAdmin, adminID)
	}
	return card, ok
}

// sendModerationCard shows the fresh submission to admins. Failure is logged
// only: the listing is already queued and reachable via /queue.
func (r *Router) sendModerationCard(ctx context.Context, listing model.Listing, username string) {
	if r.cfg.Bot.AdminGroupID == 0 {
		r.logger.Warn("admin group is not configured, moderation card skipped",
			zap.Int64("listing_id", listing.ID))
		return
	}

	caption := renderModerationCard(listing, username)
	keyboard := tginfra.ModerationKeyboard(listing.ID)

	var err error
	if len(listing.Photos) > 0 {
		err = r.bot.SendPhoto(ctx, r.cfg.Bot.AdminGroupID, listing.Photos[0].FileID, caption, keyboard)
	} else {
		err = r.bot.SendTextWithKeyboard(ctx, r.cfg.Bot.AdminGroupID, caption, keyboard)
	}
	if err != nil {
		r.logger.Error("moderation card not delivered",
			zap.Int64("listing_id", listing.ID),
			zap.Error(err))
	}
}

func (r *Router) updateCard(ctx context.Context, chatID int64, messageID int, caption string) {
	if chatID == 0 || messageID == 0 {
		return
	}
	if err := r.bot.EditMessageCaption(ctx, chatID, messageID, caption); err != nil {
		// Cards without photos are plain messages.
		if err := r.bot.EditMessageText(ctx, chatID, messageID, caption); err != nil {
			r.logger.Warn("moderation card not updated",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}
}

func (r *Router) notifyAuthor(ctx context.Context, authorID int64, text string) {
	if err := r.bot.SendText(ctx, authorID, text); err != nil {
		r.logger.Warn("author notification failed",
			zap.Int64("author_id", authorID),
			zap.Error(err))
	}
}

func (r *Router) mirrorToLog(ctx context.Context, line string) {
	if r.cfg.Bot.LogChannelID == 0 {
		return
	}
	if err := r.bot.SendText(ctx, r.cfg.Bot.LogChannelID, line); err != nil {
		r.logger.Warn("log channel mirror failed", zap.Error(err))
	}
}

func (r *Router) archivePhotos(ctx context.Context, listing model.Listing) {
	if r.archive == nil || !r.archive.Enabled() {
		return
	}

	fileIDs := make([]string, 0, len(listing.Photos))
	for _, photo := range listing.Photos {
		fileIDs = append(fileIDs, photo.FileID)
	}

	stored, err := r.archive.ArchiveListing(ctx, listing.ID, fileIDs)
	if err != nil {
		r.logger.Warn("photo archive failed",
			zap.Int64("listing_id", listing.ID),
			zap.Error(err))
		return
	}
	r.logger.Info("photos archived",
		zap.Int64("listing_id", listing.ID),
		zap.Int("stored", stored))
}

func (r *Router) replyFlowError(ctx context.Context, chatID int64, err error) error {
	text, ok := r.flowErrorReply(err)
	if !ok {
		return err
	}
	return r.bot.SendText(ctx, chatID, text)
}

func (r *Router) answerFlowError(ctx context.Context, u tginfra.CallbackUpdate, err error) error {
	text, ok := r.flowErrorReply(err)
	if !ok {
		return err
	}
	return r.bot.AnswerCallback(ctx, u.CallbackID, text)
}

func (r *Router) flowErrorReply(err error) (string, bool) {
	var rateErr *submission.RateLimitError
	var contentErr *submission.ContentError

	switch {
	case errors.Is(err, submission.ErrNoActiveDraft):
		return msgNoDraft, true
	case errors.Is(err, submission.ErrStepMismatch):
		return msgInvalidChoice, true
	case errors.Is(err, submission.ErrBlacklisted):
		return msgBlacklisted, true
	case errors.Is(err, submission.ErrInvalidChoice):
		return msgInvalidChoice, true
	case errors.Is(err, submission.ErrTextInvalid):
		return msgTextInvalid, true
	case errors.Is(err, submission.ErrDuplicatePhoto):
		return msgDuplicatePhoto, true
	case errors.Is(err, submission.ErrPhotoLimit):
		return msgPhotoLimit, true
	case errors.Is(err, submission.ErrNoPhotos):
		return msgNoPhotos, true
	case errors.As(err, &rateErr):
		return fmt.Sprintf(msgRateLimited, rateErr.RetryAfterSec), true
	case errors.As(err, &contentErr):
		return flowErrorText(contentErr.Violation), true
	default:
		return "", false
	}
}

func (r *Router) isAdmin(userID, chatID int64) bool {
	if r.isAdminUser(userID) {
		return true
	}
	return r.cfg.Bot.AdminGroupID != 0 && chatID == r.cfg.Bot.AdminGroupID
}

func (r *Router) isAdminUser(userID int64) bool {
	for _, id := range r.cfg.Bot.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Router) isGuardedChat(chatID int64) bool {
	for _, id := range r.cfg.Bot.GuardedChats {
		if id == chatID {
			return true
		}
	}
	return false
}
