package i18n

import "testing"

func TestTranslator_DefaultAndGerman(t *testing.T) {
	if msg := T("missing_head", nil); msg == "missing_head" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("de")
	if msg := T("missing_head", nil); msg == "head node missing or incomplete" {
		t.Fatalf("expected german message, got %q", msg)
	}

	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("not_a_real_code", nil); msg != "not_a_real_code" {
		t.Fatalf("expected fallback to raw code, got %q", msg)
	}
}
