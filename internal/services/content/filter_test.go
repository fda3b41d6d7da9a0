package content

import "testing"

func TestCheckBannedWords(t *testing.T) {
	filter := NewFilter([]string{"Казино", " ставки ", ""})

	tests := []struct {
		name    string
		text    string
		kind    ViolationKind
		matched string
	}{
		{name: "clean", text: "Руде кошеня шукає дім", kind: ViolationNone},
		{name: "exact term", text: "казино на виїзді", kind: ViolationBannedWord, matched: "казино"},
		{name: "case insensitive", text: "КАЗИНО", kind: ViolationBannedWord, matched: "казино"},
		{name: "substring", text: "суперказино2000", kind: ViolationBannedWord, matched: "казино"},
		{name: "trimmed term", text: "приймаю ставки", kind: ViolationBannedWord, matched: "ставки"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := filter.Check(tt.text)
			if v.Kind != tt.kind {
				t.Fatalf("unexpected kind for %q: got %q want %q", tt.text, v.Kind, tt.kind)
			}
			if tt.kind != ViolationNone && v.Matched != tt.matched {
				t.Fatalf("unexpected matched term: got %q want %q", v.Matched, tt.matched)
			}
		})
	}
}

func TestCheckLinks(t *testing.T) {
	filter := NewFilter(nil)

	violating := []string{
		"дивись https://example.com",
		"пиши в t.me/somebot",
		"сайт www.example.com тут",
		"контакт @someusername",
		"HTTP://UPPER.CASE",
	}
	for _, text := range violating {
		if v := filter.Check(text); v.Kind != ViolationLink {
			t.Fatalf("expected link violation for %q, got %q", text, v.Kind)
		}
	}

	clean := []string{
		"зателефонуйте 067-123-45-67",
		"вул. Садова 5, кв. 12",
		"email на око: ivan (at) example",
	}
	for _, text := range clean {
		if v := filter.Check(text); !v.OK() {
			t.Fatalf("expected no violation for %q, got %q on %q", text, v.Kind, v.Matched)
		}
	}
}

func TestAddTerm(t *testing.T) {
	filter := NewFilter(nil)

	if !filter.AddTerm(" Ставки ") {
		t.Fatalf("new term must be accepted")
	}
	if filter.AddTerm("ставки") {
		t.Fatalf("duplicate term must be rejected")
	}
	if filter.AddTerm("   ") {
		t.Fatalf("blank term must be rejected")
	}

	if v := filter.Check("приймаю СТАВКИ щодня"); v.Kind != ViolationBannedWord {
		t.Fatalf("added term must be enforced, got %q", v.Kind)
	}
}

func TestHasLink(t *testing.T) {
	filter := NewFilter(nil)

	if !filter.HasLink("заходь на t.me/spam") {
		t.Fatalf("t.me link must be detected")
	}
	if filter.HasLink("просто текст без посилань") {
		t.Fatalf("plain text must pass")
	}
}
