package quest

import (
	"fmt"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/period"
)

// Catalog returns the static quest list. The slice is freshly allocated on
// every call.
func Catalog() []model.QuestDefinition {
	return []model.QuestDefinition{
		{
			ID:          "daily_login",
			Title:       "Daily Login",
			Description: "Open kudlit today.",
			Period:      model.PeriodDaily,
			Target:      1,
			Points:      2,
			Progress:    loggedInToday,
		},
		{
			ID:          "transliterate_3",
			Title:       "Warm Up",
			Description: "Transliterate 3 texts today.",
			Period:      model.PeriodDaily,
			Target:      3,
			Points:      15,
			Progress:    dailyCount(model.ActivityTransliteration),
		},
		{
			ID:          "login_streak_7",
			Title:       "Seven Day Streak",
			Description: "Log in 7 days in a row.",
			Period:      model.PeriodWeekly,
			Target:      7,
			Points:      50,
			Progress:    currentStreak,
		},
		{
			ID:          "transliterate_20",
			Title:       "Scribe",
			Description: "Transliterate 20 texts this week.",
			Period:      model.PeriodWeekly,
			Target:      20,
			Points:      75,
			Progress:    weeklyCount(model.ActivityTransliteration),
		},
		{
			ID:          "earn_100_points",
			Title:       "Point Collector",
			Description: "Earn 100 points this week.",
			Period:      model.PeriodWeekly,
			Target:      100,
			Points:      40,
			Progress:    weeklyCount(model.ActivityPoints),
		},
	}
}

// Find returns the catalog entry with the given id.
func Find(id string) (model.QuestDefinition, bool) {
	for _, def := range Catalog() {
		if def.ID == id {
			return def, true
		}
	}
	return model.QuestDefinition{}, false
}

// Validate checks that ids are unique and non-empty, targets are positive,
// points are non-negative and every quest has a progress source.
func Validate(defs []model.QuestDefinition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return fmt.Errorf("quest with empty id")
		}
		if _, ok := seen[def.ID]; ok {
			return fmt.Errorf("duplicate quest id %q", def.ID)
		}
		seen[def.ID] = struct{}{}
		if !def.Period.IsValid() {
			return fmt.Errorf("quest %q: invalid period %q", def.ID, def.Period)
		}
		if def.Target <= 0 {
			return fmt.Errorf("quest %q: target must be positive", def.ID)
		}
		if def.Points < 0 {
			return fmt.Errorf("quest %q: points must not be negative", def.ID)
		}
		if def.Progress == nil {
			return fmt.Errorf("quest %q: missing progress source", def.ID)
		}
	}
	return nil
}

func dailyCount(kind model.ActivityKind) model.ProgressSource {
	return func(rec model.UserProgressRecord, now time.Time) int {
		return rec.Daily(kind, period.DayKey(now))
	}
}

func weeklyCount(kind model.ActivityKind) model.ProgressSource {
	return func(rec model.UserProgressRecord, now time.Time) int {
		return rec.Weekly(kind, period.WeekKey(now))
	}
}

func loggedInToday(rec model.UserProgressRecord, now time.Time) int {
	if rec.LastLoginDayKey == period.DayKey(now) {
		return 1
	}
	return 0
}

// currentStreak reports the stored streak while it is still alive, that is
// when the last login was today or yesterday.
func currentStreak(rec model.UserProgressRecord, now time.Time) int {
	switch rec.LastLoginDayKey {
	case period.DayKey(now), period.PreviousDayKey(now):
		return rec.LoginStreak
	default:
		return 0
	}
}
