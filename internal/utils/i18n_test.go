package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to en failed: %s", got)
	}
}

func TestT_Spanish(t *testing.T) {
	if got := T("es", "error.not_found"); got != "No encontrado" {
		t.Fatalf("unexpected translation: %s", got)
	}
}

func TestT_UnknownKey(t *testing.T) {
	if got := T("en", "nope.key"); got != "nope.key" {
		t.Fatalf("want key echoed, got %s", got)
	}
}

func TestT_EveryLocaleCoversEnglishKeys(t *testing.T) {
	for _, loc := range Locales {
		for key := range translations["en"] {
			if _, ok := translations[loc][key]; !ok {
				t.Fatalf("locale %s missing %s", loc, key)
			}
		}
	}
}
