package publish

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ivankudzin/classibot/internal/domain/model"
)

// Telegram rejects captions above this many characters.
const captionLimit = 1024

// RenderCaption builds the channel post body: title, description, contacts
// and a hashtag line from category and district. User text is HTML-escaped;
// the description is trimmed first when the whole caption would not fit.
func RenderCaption(listing model.Listing) string {
	title := html.EscapeString(strings.TrimSpace(listing.Title))
	contacts := html.EscapeString(strings.TrimSpace(listing.Contacts))
	rawDescription := strings.TrimSpace(listing.Description)

	tags := hashtagLine(listing.Category, listing.District)

	render := func(desc string) string {
		var b strings.Builder
		b.WriteString("📢 <b>")
		b.WriteString(title)
		b.WriteString("</b>\n\n")
		if desc != "" {
			b.WriteString(desc)
			b.WriteString("\n\n")
		}
		if contacts != "" {
			b.WriteString("📞 ")
			b.WriteString(contacts)
			b.WriteString("\n\n")
		}
		b.WriteString(tags)
		return strings.TrimSpace(b.String())
	}

	caption := render(html.EscapeString(rawDescription))
	if utf8.RuneCountInString(caption) <= captionLimit {
		return caption
	}

	// Cut the raw text, not the escaped form, so an entity is never split.
	// Escaping can expand the kept part, so shrink until the caption fits.
	keep := utf8.RuneCountInString(rawDescription) -
		(utf8.RuneCountInString(caption) - captionLimit) - 1
	for keep >= 0 {
		caption = render(html.EscapeString(truncateRunes(rawDescription, keep)) + "…")
		over := utf8.RuneCountInString(caption) - captionLimit
		if over <= 0 {
			return caption
		}
		keep -= over
	}

	return render("…")
}

func hashtagLine(parts ...string) string {
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := hashtag(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, " ")
}

// hashtag keeps letters and digits, mapping separators to underscores so the
// tag stays clickable in Telegram.
func hashtag(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r == ' ' || r == '-' || r == '/':
			b.WriteRune('_')
		case r == '_' || isLetterOrDigit(r):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

func isLetterOrDigit(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
