package botapp

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ivankudzin/classibot/internal/domain/enums"
	"github.com/ivankudzin/classibot/internal/domain/model"
	"github.com/ivankudzin/classibot/internal/domain/rules"
	"github.com/ivankudzin/classibot/internal/services/content"
	"github.com/ivankudzin/classibot/internal/services/moderation"
)

// doneWord closes the photo step; matching ignores case.
const doneWord = "ГОТОВО"

const (
	msgWelcome = "Вітаємо! Це бот оголошень.\n\n" +
		"/add — подати оголошення\n" +
		"/my_posts — мої оголошення\n" +
		"/rules — правила\n" +
		"/faq — відповіді на питання"

	msgRulesText = "<b>Правила розміщення оголошень</b>\n\n" +
		"1. Жодних посилань у тексті оголошення.\n" +
		"2. Оголошення проходять модерацію перед публікацією.\n" +
		"3. За спам і образи — бан без попередження.\n\n" +
		"Щоб подати оголошення, підтвердіть згоду з правилами."

	msgFAQ = "<b>Як це працює?</b>\n\n" +
		"1. Надішліть /add і пройдіть кілька кроків.\n" +
		"2. Модератор перевірить оголошення.\n" +
		"3. Після схвалення воно потрапить у чергу публікації " +
		"і вийде в канал автоматично."

	msgRulesAgreed   = "Дякуємо! Тепер можна подати оголошення: /add"
	msgRulesDeclined = "Без згоди з правилами подати оголошення не можна."

	msgAskCategory    = "Оберіть категорію оголошення:"
	msgAskDistrict    = "Оберіть район:"
	msgAskTitle       = "Введіть заголовок (до 200 символів):"
	msgAskDescription = "Введіть опис (до 2000 символів):"
	msgAskPhotos      = "Надішліть від 1 до %d фото. Коли закінчите, напишіть «" + doneWord + "»."
	msgAskContacts    = "Вкажіть контакти для зв'язку (до 200 символів):"

	msgInvalidChoice = "Оберіть варіант із кнопок нижче."
	msgTextInvalid   = "Текст порожній або задовгий. Спробуйте ще раз."
	msgBannedWord    = "Текст містить заборонене слово «%s». Виправте і надішліть ще раз."
	msgLinkForbidden = "Посилання в оголошенні заборонені. Приберіть «%s» і надішліть ще раз."

	msgPhotoAdded     = "Фото додано (%d з %d). Ще фото або «" + doneWord + "»."
	msgDuplicatePhoto = "Це фото вже додано до оголошення."
	msgPhotoLimit     = "Досягнуто ліміт фото. Напишіть «" + doneWord + "», щоб продовжити."
	msgNoPhotos       = "Потрібно хоча б одне фото."
	msgPhotosOnly     = "Зараз бот чекає фото. Надішліть фото або «" + doneWord + "»."

	msgSubmitted = "Оголошення №%d надіслано на модерацію. " +
		"Після схвалення воно з'явиться в каналі."
	msgNoDraft         = "Активного оголошення немає. Почніть з /add."
	msgCancelled       = "Оголошення скасовано."
	msgNothingToCancel = "Нема чого скасовувати."

	msgBlacklisted = "Вам заборонено подавати оголошення."
	msgRateLimited = "Забагато дій. Зачекайте %d сек."
	msgNotAdmin    = "Команда доступна лише модераторам."

	msgApprovedAuthor = "✅ Ваше оголошення «%s» схвалено і потрапить у чергу публікації."
	msgRejectedAuthor = "❌ Ваше оголошення «%s» відхилено.\nПричина: %s"

	msgBannedAuthor = "⛔ Вам заборонено подавати оголошення через порушення правил."

	msgAskRejectReason = "Вкажіть причину відхилення оголошення №%d одним повідомленням."
	msgAlreadyDecided  = "Рішення по цьому оголошенню вже ухвалено."
	msgQueueEmpty      = "Черга модерації порожня."

	msgWordAdded  = "Слово додано до фільтра."
	msgWordExists = "Таке слово вже у фільтрі."
	msgWordUsage  = "Використання: /addword <слово>"
)

func statusLabel(status enums.ListingStatus) string {
	switch status {
	case enums.ListingStatusQueued:
		return "на модерації"
	case enums.ListingStatusApproved:
		return "у черзі публікації"
	case enums.ListingStatusRejected:
		return "відхилено"
	case enums.ListingStatusPublished:
		return "опубліковано"
	default:
		return string(status)
	}
}

func renderMyPosts(listings []model.Listing) string {
	if len(listings) == 0 {
		return "У вас поки немає оголошень. Почніть з /add."
	}

	var b strings.Builder
	b.WriteString("<b>Ваші оголошення</b>\n")
	for _, listing := range listings {
		fmt.Fprintf(&b, "\n№%d · %s — %s",
			listing.ID, html.EscapeString(listing.Title), statusLabel(listing.Status))
		if listing.Status == enums.ListingStatusRejected && listing.RejectReason != "" {
			fmt.Fprintf(&b, "\n    причина: %s", html.EscapeString(listing.RejectReason))
		}
	}
	return b.String()
}

func renderQueue(pending []moderation.PendingEntry, total int) string {
	if total == 0 {
		return msgQueueEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Черга модерації: %d</b>\n", total)
	for _, entry := range pending {
		fmt.Fprintf(&b, "\n№%d · %s · %s (%s)",
			entry.Listing.ID,
			html.EscapeString(entry.Listing.Title),
			html.EscapeString(entry.Listing.Category),
			entry.Entry.QueuedAt.Format("02.01 15:04"))
	}
	return b.String()
}

// statsWindow is one row of the /stats report.
type statsWindow struct {
	Label     string
	Created   int
	Rejected  int
	Published int
}

func renderStats(windows []statsWindow, queueSize int) string {
	var b strings.Builder
	b.WriteString("<b>Статистика</b>\n")
	for _, w := range windows {
		fmt.Fprintf(&b, "\nЗа %s: подано %d · відхилено %d · опубліковано %d",
			w.Label, w.Created, w.Rejected, w.Published)
	}
	fmt.Fprintf(&b, "\n\nУ черзі модерації: %d", queueSize)
	return b.String()
}

// renderModerationCard is what admins see in the review group.
func renderModerationCard(listing model.Listing, username string) string {
	author := fmt.Sprintf("id %d", listing.AuthorID)
	if username != "" {
		author = "@" + html.EscapeString(username)
	}

	description := listing.Description
	if len([]rune(description)) > 700 {
		description = string([]rune(description)[:700]) + "…"
	}

	return fmt.Sprintf(
		"<b>Оголошення №%d</b>\n"+
			"Автор: %s\n"+
			"Категорія: %s · Район: %s\n\n"+
			"<b>%s</b>\n\n%s\n\n📞 %s\n\nФото: %d",
		listing.ID,
		author,
		html.EscapeString(listing.Category),
		html.EscapeString(listing.District),
		html.EscapeString(listing.Title),
		html.EscapeString(description),
		html.EscapeString(listing.Contacts),
		len(listing.Photos))
}

func renderDecidedCard(listing model.Listing, verdict string) string {
	return fmt.Sprintf("<b>Оголошення №%d</b> — %s\n\n<b>%s</b>",
		listing.ID, verdict, html.EscapeString(listing.Title))
}

func renderLogLine(listing model.Listing, adminID int64, verdict string, at time.Time) string {
	return fmt.Sprintf("[%s] №%d «%s» — %s (модератор %d)",
		at.Format("02.01 15:04"),
		listing.ID,
		html.EscapeString(listing.Title),
		verdict,
		adminID)
}

func flowErrorText(violation content.Violation) string {
	switch violation.Kind {
	case content.ViolationBannedWord:
		return fmt.Sprintf(msgBannedWord, html.EscapeString(violation.Matched))
	case content.ViolationLink:
		return fmt.Sprintf(msgLinkForbidden, html.EscapeString(violation.Matched))
	default:
		return msgTextInvalid
	}
}

func askPhotosText(maxPhotos int) string {
	if maxPhotos <= 0 {
		maxPhotos = rules.MaxPhotos
	}
	return fmt.Sprintf(msgAskPhotos, maxPhotos)
}
