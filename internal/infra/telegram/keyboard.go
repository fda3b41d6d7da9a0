package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CallbackRulesAgree   = "rules:agree"
	CallbackRulesDecline = "rules:decline"

	CallbackPrefixCategory = "cat:"
	CallbackPrefixDistrict = "dist:"
	CallbackPrefixDecision = "mod:"
)

// ChoiceKeyboard renders one button per option, one per row, with the given
// callback prefix.
func ChoiceKeyboard(prefix string, options []string) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, prefix+option),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func RulesKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Погоджуюсь ✅", CallbackRulesAgree),
			tgbotapi.NewInlineKeyboardButtonData("Не згоден ❌", CallbackRulesDecline),
		),
	)
	return &markup
}

func ModerationKeyboard(listingID int64) *tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(listingID, 10)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Схвалити", CallbackPrefixDecision+"approve:"+id),
			tgbotapi.NewInlineKeyboardButtonData("❌ Відхилити", CallbackPrefixDecision+"reject:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⛔ Бан автора", CallbackPrefixDecision+"ban:"+id),
		),
	)
	return &markup
}
