package rules

import (
	"strings"
	"testing"
)

func TestTitleBoundary(t *testing.T) {
	exact := strings.Repeat("a", TitleMaxLen)
	if !TitleOK(exact) {
		t.Fatalf("title of exactly %d chars must be accepted", TitleMaxLen)
	}
	if TitleOK(exact + "a") {
		t.Fatalf("title of %d chars must be rejected", TitleMaxLen+1)
	}
}

func TestLimitsCountRunesNotBytes(t *testing.T) {
	cyrillic := strings.Repeat("ї", TitleMaxLen)
	if !TitleOK(cyrillic) {
		t.Fatalf("multibyte title of %d runes must be accepted", TitleMaxLen)
	}
}

func TestEmptyValuesRejected(t *testing.T) {
	for _, v := range []string{"", "   ", "\n\t"} {
		if TitleOK(v) || DescriptionOK(v) || ContactsOK(v) {
			t.Fatalf("blank value %q must be rejected", v)
		}
	}
}

func TestChoiceOK(t *testing.T) {
	options := []string{"Знайдена тварина", "Загублена тварина"}

	if !ChoiceOK("Знайдена тварина", options) {
		t.Fatalf("configured option must be accepted")
	}
	if ChoiceOK("знайдена тварина", options) {
		t.Fatalf("case-variant of an option must be rejected")
	}
	if ChoiceOK("Продам гараж", options) {
		t.Fatalf("unknown option must be rejected")
	}
}
