package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesMarksOrphanLabels(t *testing.T) {
	runes := buildStyledRunes("[virama]ka", false)
	if len(runes) != 10 {
		t.Fatalf("expected 10 runes, got %d", len(runes))
	}
	if runes[0].s != warnStyle.Render("[") || runes[7].s != warnStyle.Render("]") {
		t.Fatalf("expected warning style for label brackets")
	}
	if runes[3].s != warnStyle.Render("r") {
		t.Fatalf("expected warning style inside label")
	}
	if runes[8].s != latinStyle.Render("k") {
		t.Fatalf("expected latin style after label")
	}
}

func TestBuildStyledRunesEmptySentinel(t *testing.T) {
	runes := buildStyledRunes("(no content)", true)
	if runes[0].s != mutedStyle.Render("(") {
		t.Fatalf("expected muted sentinel")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected space flag")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	runes := plainRunes("mahal kita ko")
	out := wrapStyledRunes(runes, 8)
	lines := strings.Split(out, "\n")
	want := []string{"mahal", "kita ko"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapStyledRunesSplitsLongWord(t *testing.T) {
	out := wrapStyledRunes(plainRunes("abcdefgh"), 3)
	if out != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap %q", out)
	}
}

func plainRunes(s string) []styledRune {
	out := make([]styledRune, 0, len(s))
	for _, r := range s {
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}
