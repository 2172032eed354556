package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/script"
)

const barWidth = 10

// WriteQuests renders the quest board.
func WriteQuests(w io.Writer, statuses []quest.Status, color bool) error {
	headers := []string{"Quest", "Period", "Progress", "", "Points", "State"}
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			st.Quest.ID,
			string(st.Quest.Period),
			fmt.Sprintf("%d/%d", st.Progress, st.Quest.Target),
			ProgressBar(st.Progress, st.Quest.Target, barWidth),
			"+" + strconv.Itoa(st.Quest.Points),
			paint(st.State.String(), stateColor(st.State), color),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 4: true}))
}

// WriteProfile renders the counters of a user record for the periods of the
// given snapshot.
func WriteProfile(w io.Writer, snap model.Snapshot) error {
	rec := snap.Record
	name := rec.DisplayName
	if name == "" {
		name = snap.UserID
	}
	lines := []string{
		fmt.Sprintf("User:          %s", name),
		fmt.Sprintf("Total score:   %d", rec.TotalScore),
		fmt.Sprintf("Login streak:  %d", rec.LoginStreak),
		fmt.Sprintf("Today (%s):    %d transliterations", snap.DayKey, rec.Daily(model.ActivityTransliteration, snap.DayKey)),
		fmt.Sprintf("Week (%s):     %d transliterations, %d points",
			snap.WeekKey,
			rec.Weekly(model.ActivityTransliteration, snap.WeekKey),
			rec.Weekly(model.ActivityPoints, snap.WeekKey),
		),
	}
	if rec.LastLoginDayKey != "" {
		lines = append(lines, fmt.Sprintf("Last login:    %s", rec.LastLoginDayKey))
	}
	return writeLines(w, lines)
}

// WriteLeaderboard renders ranked users.
func WriteLeaderboard(w io.Writer, entries []model.LeaderboardEntry, highlight string, color bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No scores yet.")
		return err
	}
	headers := []string{"#", "User", "Score", "Streak"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.DisplayName
		if e.UserID == highlight {
			name = paint(name+" (you)", colorCyan, color)
		}
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			name,
			strconv.Itoa(e.TotalScore),
			strconv.Itoa(e.LoginStreak),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true}))
}

// GlyphRow is one printable line of the glyph table.
type GlyphRow struct {
	Glyph string
	Code  string
	Latin string
	Class string
	Also  string
}

// WriteGlyphTable renders the glyph mapping table.
func WriteGlyphTable(w io.Writer, mappings []GlyphRow) error {
	headers := []string{"Glyph", "Code", "Latin", "Class", "Also"}
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, []string{m.Glyph, m.Code, m.Latin, m.Class, m.Also})
	}
	return writeLines(w, formatTable(headers, rows, nil))
}

// GlyphRows flattens script mappings for WriteGlyphTable.
func GlyphRows(mappings []script.Mapping) []GlyphRow {
	rows := make([]GlyphRow, 0, len(mappings))
	for _, m := range mappings {
		latin := m.Latin
		if m.Class == script.ClassModifier {
			latin = m.Label
		}
		glyph := string(m.Glyph)
		if m.Class == script.ClassModifier {
			glyph = "◌" + glyph
		}
		rows = append(rows, GlyphRow{
			Glyph: glyph,
			Code:  fmt.Sprintf("U+%04X", m.Glyph),
			Latin: latin,
			Class: m.Class.String(),
			Also:  strings.Join(m.Alternates, ","),
		})
	}
	return rows
}

// WriteDecode renders a decode result with the warnings collected on the way.
func WriteDecode(w io.Writer, res script.Result, warnings []string) error {
	if _, err := fmt.Fprintln(w, res.Text); err != nil {
		return err
	}
	if res.OrphanModifiers > 0 {
		warnings = append(warnings, fmt.Sprintf("Orphan marks: %d", res.OrphanModifiers))
	}
	for _, warning := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	return nil
}

// ProgressBar draws an ASCII bar of width cells filled to progress/target.
func ProgressBar(progress, target, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if target > 0 {
		filled = progress * width / target
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func stateColor(s quest.State) string {
	switch s {
	case quest.Completed:
		return colorYellow
	case quest.Claimed:
		return colorGreen
	case quest.NotStarted:
		return colorDim
	default:
		return ""
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
