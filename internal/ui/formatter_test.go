package ui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFirstLine(t *testing.T) {
	t.Run("short content passes through", func(t *testing.T) {
		if got := firstLine("Verify login"); got != "Verify login" {
			t.Errorf("firstLine() = %q", got)
		}
	})

	t.Run("multi-line content collapses to first line", func(t *testing.T) {
		got := firstLine("Steps: open page\nExpected Result: form shown")
		if got != "Steps: open page …" {
			t.Errorf("firstLine() = %q", got)
		}
	})

	t.Run("long cyrillic content truncates on runes", func(t *testing.T) {
		in := strings.Repeat("Перевірити вхід ", 10)
		got := firstLine(in)
		if !utf8.ValidString(got) {
			t.Fatalf("truncation produced invalid UTF-8: %q", got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected truncation marker, got %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 90 {
			t.Errorf("rune count = %d, want 90", n)
		}
	})
}

func TestCenterText(t *testing.T) {
	t.Run("pads to width", func(t *testing.T) {
		got := centerText("abc", 7)
		if len(got) != 7 || !strings.Contains(got, "abc") {
			t.Errorf("centerText() = %q", got)
		}
	})

	t.Run("cyrillic overflow truncates on runes", func(t *testing.T) {
		in := strings.Repeat("Тестування", 10)
		got := centerText(in, 61)
		if !utf8.ValidString(got) {
			t.Fatalf("truncation produced invalid UTF-8: %q", got)
		}
		if n := utf8.RuneCountInString(got); n != 61 {
			t.Errorf("rune count = %d, want 61", n)
		}
	})
}
