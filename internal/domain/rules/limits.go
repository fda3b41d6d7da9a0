package rules

import (
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 2000
	ContactsMaxLen    = 200
	MaxPhotos         = 20

	// Telegram rejects media groups larger than ten items.
	MediaGroupLimit = 10
)

func TitleOK(title string) bool {
	return withinLimit(title, TitleMaxLen)
}

func DescriptionOK(description string) bool {
	return withinLimit(description, DescriptionMaxLen)
}

func ContactsOK(contacts string) bool {
	return withinLimit(contacts, ContactsMaxLen)
}

// ChoiceOK reports whether value is one of the configured options. Matching is
// exact: the bot presents options as buttons, free-typed variants are rejected.
func ChoiceOK(value string, options []string) bool {
	for _, opt := range options {
		if value == opt {
			return true
		}
	}
	return false
}

func withinLimit(value string, max int) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	return utf8.RuneCountInString(trimmed) <= max
}
