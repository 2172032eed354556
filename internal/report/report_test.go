package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/script"
)

func TestFormatTableAlignsWideCells(t *testing.T) {
	headers := []string{"Quest", "Pts"}
	rows := [][]string{
		{"漢字", "5"},
		{"abc", "10"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []string{
		"Quest  Pts",
		"漢字     5",
		"abc     10",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDisplayWidthIgnoresColor(t *testing.T) {
	if got := displayWidth(paint("claimed", colorGreen, true)); got != 7 {
		t.Fatalf("width=%d, want 7", got)
	}
}

func TestProgressBar(t *testing.T) {
	cases := []struct {
		progress, target, width int
		want                    string
	}{
		{3, 3, 10, "[##########]"},
		{1, 3, 10, "[###.......]"},
		{0, 0, 5, "[.....]"},
		{9, 3, 4, "[####]"},
		{1, 1, 0, ""},
	}
	for _, tc := range cases {
		if got := ProgressBar(tc.progress, tc.target, tc.width); got != tc.want {
			t.Fatalf("ProgressBar(%d,%d,%d)=%q, want %q", tc.progress, tc.target, tc.width, got, tc.want)
		}
	}
}

func TestWriteQuests(t *testing.T) {
	now := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	snap := model.Snapshot{
		DayKey:  "2025-03-05",
		WeekKey: "2025-W10",
		Record: model.UserProgressRecord{
			DailyCounters: map[model.ActivityKind]model.Counter{
				model.ActivityTransliteration: {Count: 2, Key: "2025-03-05"},
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteQuests(&buf, quest.EvaluateAll(quest.Catalog(), snap, now), false); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Quest") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "transliterate_3") || !strings.Contains(out, "2/3") || !strings.Contains(out, "in progress") {
		t.Fatalf("missing quest row: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected color codes: %q", out)
	}
}

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderboard(&buf, nil, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "No scores yet.\n" {
		t.Fatalf("unexpected empty board %q", buf.String())
	}

	buf.Reset()
	entries := []model.LeaderboardEntry{
		{Rank: 1, UserID: "ben", DisplayName: "Benjie", TotalScore: 120, LoginStreak: 4},
		{Rank: 2, UserID: "ana", DisplayName: "ana", TotalScore: 15, LoginStreak: 1},
	}
	if err := WriteLeaderboard(&buf, entries, "ana", true); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if !strings.Contains(lines[2], "ana (you)") || !strings.Contains(lines[2], colorCyan) {
		t.Fatalf("current user not highlighted: %q", lines[2])
	}
	if displayWidth(lines[1]) != displayWidth(lines[2]) {
		t.Fatalf("rows not aligned: %q vs %q", lines[1], lines[2])
	}
}

func TestGlyphRows(t *testing.T) {
	rows := GlyphRows(script.Table())
	if len(rows) != len(script.Table()) {
		t.Fatalf("row count mismatch")
	}
	var virama GlyphRow
	for _, r := range rows {
		if r.Code == "U+1714" {
			virama = r
		}
	}
	if virama.Latin != "virama" || virama.Class != "modifier" {
		t.Fatalf("unexpected virama row %+v", virama)
	}
	var buf bytes.Buffer
	if err := WriteGlyphTable(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "U+1703") {
		t.Fatalf("table missing ka: %q", buf.String())
	}
}

func TestWriteDecodeWarnings(t *testing.T) {
	var buf bytes.Buffer
	res := script.DecodeDetailed("ᜒᜃ")
	if err := WriteDecode(&buf, res, []string{"Removed numbers: 1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "[kudlit-i]ka\nwarning: Removed numbers: 1\nwarning: Orphan marks: 1\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}
