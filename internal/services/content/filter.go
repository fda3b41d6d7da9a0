// Package content screens free-text listing fields for banned terms and links.
package content

import (
	"regexp"
	"strings"
	"sync"
)

// linkRE covers URL schemes, t.me deep links, bare www. domains and Telegram
// @handles.
var linkRE = regexp.MustCompile(`(?i)(https?://|t\.me/|www\.[a-z0-9-]+\.[a-z]{2,}|@\w{3,})`)

type ViolationKind string

const (
	ViolationNone       ViolationKind = ""
	ViolationBannedWord ViolationKind = "banned_word"
	ViolationLink       ViolationKind = "link"
)

// Violation carries enough detail for a user-facing re-prompt.
type Violation struct {
	Kind    ViolationKind
	Matched string
}

func (v Violation) OK() bool {
	return v.Kind == ViolationNone
}

// Filter is safe for concurrent use; admins may add terms at runtime.
type Filter struct {
	mu    sync.RWMutex
	terms []string
}

func NewFilter(bannedTerms []string) *Filter {
	terms := make([]string, 0, len(bannedTerms))
	for _, term := range bannedTerms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return &Filter{terms: terms}
}

// AddTerm registers one more banned term. Duplicates are ignored.
func (f *Filter) AddTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.terms {
		if existing == term {
			return false
		}
	}
	f.terms = append(f.terms, term)
	return true
}

// Check matches banned terms as case-insensitive substrings, then looks for
// link syntax.
func (f *Filter) Check(text string) Violation {
	lowered := strings.ToLower(text)

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return Violation{Kind: ViolationBannedWord, Matched: term}
		}
	}

	if match := linkRE.FindString(text); match != "" {
		return Violation{Kind: ViolationLink, Matched: match}
	}

	return Violation{}
}

// HasLink is the group anti-spam check: links only, banned words are a private
// intake concern.
func (f *Filter) HasLink(text string) bool {
	return linkRE.MatchString(text)
}
