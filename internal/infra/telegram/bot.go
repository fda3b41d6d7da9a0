// Package telegram wraps the Bot API client behind the narrow surface the
// pipeline needs: long-poll updates in, messages and media batches out.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivankudzin/classibot/internal/domain/rules"
)

type Bot struct {
	api        *tgbotapi.BotAPI
	httpClient *http.Client
}

type CommandUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	Args     string
}

type TextUpdate struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
	IsGroup  bool
	Message  int
}

type PhotoUpdate struct {
	ChatID       int64
	UserID       int64
	Username     string
	FileID       string
	FileUniqueID string
}

type CallbackUpdate struct {
	CallbackID string
	ChatID     int64
	MessageID  int
	UserID     int64
	Username   string
	Data       string
}

type Handlers struct {
	OnCommand  func(context.Context, CommandUpdate) error
	OnText     func(context.Context, TextUpdate) error
	OnPhoto    func(context.Context, PhotoUpdate) error
	OnCallback func(context.Context, CallbackUpdate) error
}

func NewBot(token string) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{
		api: api,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (b *Bot) Listen(ctx context.Context, handlers Handlers) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message != nil && update.Message.From != nil {
				if err := b.dispatchMessage(ctx, handlers, update.Message); err != nil {
					return err
				}
			}

			if update.CallbackQuery != nil && update.CallbackQuery.From != nil && handlers.OnCallback != nil {
				chatID := int64(0)
				messageID := 0
				if update.CallbackQuery.Message != nil {
					chatID = update.CallbackQuery.Message.Chat.ID
					messageID = update.CallbackQuery.Message.MessageID
				}
				err := handlers.OnCallback(ctx, CallbackUpdate{
					CallbackID: update.CallbackQuery.ID,
					ChatID:     chatID,
					MessageID:  messageID,
					UserID:     update.CallbackQuery.From.ID,
					Username:   update.CallbackQuery.From.UserName,
					Data:       update.CallbackQuery.Data,
				})
				if err != nil {
					return err
				}
			}
		}
	}
}

func (b *Bot) dispatchMessage(ctx context.Context, handlers Handlers, message *tgbotapi.Message) error {
	if len(message.Photo) > 0 && handlers.OnPhoto != nil {
		// Telegram sends several sizes of the same photo; the last one is
		// the largest.
		best := message.Photo[len(message.Photo)-1]
		return handlers.OnPhoto(ctx, PhotoUpdate{
			ChatID:       message.Chat.ID,
			UserID:       message.From.ID,
			Username:     message.From.UserName,
			FileID:       best.FileID,
			FileUniqueID: best.FileUniqueID,
		})
	}

	if message.IsCommand() && handlers.OnCommand != nil {
		return handlers.OnCommand(ctx, CommandUpdate{
			ChatID:   message.Chat.ID,
			UserID:   message.From.ID,
			Username: message.From.UserName,
			Command:  message.Command(),
			Args:     message.CommandArguments(),
		})
	}

	text := strings.TrimSpace(message.Text)
	if text != "" && handlers.OnText != nil {
		return handlers.OnText(ctx, TextUpdate{
			ChatID:   message.Chat.ID,
			UserID:   message.From.ID,
			Username: message.From.UserName,
			Text:     text,
			IsGroup:  message.Chat.IsGroup() || message.Chat.IsSuperGroup(),
			Message:  message.MessageID,
		})
	}

	return nil
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	return b.SendTextWithKeyboard(ctx, chatID, text, nil)
}

func (b *Bot) SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || fileID == "" {
		return fmt.Errorf("chat id and file id are required")
	}

	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}

	_ = ctx
	return nil
}

// SendListingPhoto posts a single photo with a caption and no inline keyboard.
func (b *Bot) SendListingPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	return b.SendPhoto(ctx, chatID, fileID, caption, nil)
}

// SendMediaGroup sends up to the platform batch limit; extra items are
// dropped by the caller's contract, not resent.
func (b *Bot) SendMediaGroup(ctx context.Context, chatID int64, fileIDs []string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	if len(fileIDs) == 0 {
		return nil
	}
	if len(fileIDs) > rules.MediaGroupLimit {
		fileIDs = fileIDs[:rules.MediaGroupLimit]
	}

	media := make([]interface{}, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(fileID)))
	}

	group := tgbotapi.NewMediaGroup(chatID, media)
	if _, err := b.api.SendMediaGroup(group); err != nil {
		return fmt.Errorf("send telegram media group: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || messageID == 0 {
		return fmt.Errorf("chat id and message id are required")
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit telegram message: %w", err)
	}

	_ = ctx
	return nil
}

// EditMessageCaption rewrites the caption of a photo message and drops its
// inline keyboard.
func (b *Bot) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 || messageID == 0 {
		return fmt.Errorf("chat id and message id are required")
	}

	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("edit telegram caption: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(callbackID) == "" {
		return nil
	}

	cfg := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	_ = ctx
	return nil
}

func (b *Bot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if b == nil || b.api == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	cfg := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("delete telegram message: %w", err)
	}

	_ = ctx
	return nil
}

// DownloadFile fetches the raw bytes behind a Telegram file reference.
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if b == nil || b.api == nil {
		return nil, fmt.Errorf("telegram bot is not initialized")
	}
	if strings.TrimSpace(fileID) == "" {
		return nil, fmt.Errorf("file id is required")
	}

	tgFile, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get telegram file: %w", err)
	}

	fileURL := tgFile.Link(b.api.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create file request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download telegram file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected telegram file status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read telegram file body: %w", err)
	}

	return data, nil
}

// RetryAfter extracts the flood-control backoff from a send error, when the
// transport signalled one.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second, true
	}
	return 0, false
}
