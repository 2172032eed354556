package quest

import (
	"testing"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
)

var now = time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)

func snapshotOf(rec model.UserProgressRecord) model.Snapshot {
	return model.Snapshot{
		UserID:       "u1",
		Record:       rec,
		DayKey:       "2025-03-05",
		WeekKey:      "2025-W10",
		DailyClaims:  model.ClaimSet{},
		WeeklyClaims: model.ClaimSet{},
	}
}

func mustFind(t *testing.T, id string) model.QuestDefinition {
	t.Helper()
	def, ok := Find(id)
	if !ok {
		t.Fatalf("quest %s not in catalog", id)
	}
	return def
}

func TestCatalogIsValid(t *testing.T) {
	defs := Catalog()
	if err := Validate(defs); err != nil {
		t.Fatalf("catalog invalid: %v", err)
	}
	type shape struct {
		period model.Period
		target int
		points int
	}
	want := map[string]shape{
		"daily_login":      {model.PeriodDaily, 1, 2},
		"transliterate_3":  {model.PeriodDaily, 3, 15},
		"login_streak_7":   {model.PeriodWeekly, 7, 50},
		"transliterate_20": {model.PeriodWeekly, 20, 75},
		"earn_100_points":  {model.PeriodWeekly, 100, 40},
	}
	if len(defs) != len(want) {
		t.Fatalf("expected %d quests, got %d", len(want), len(defs))
	}
	for _, def := range defs {
		w, ok := want[def.ID]
		if !ok {
			t.Fatalf("unexpected quest %s", def.ID)
		}
		if def.Period != w.period || def.Target != w.target || def.Points != w.points {
			t.Fatalf("quest %s = %s/%d/%d", def.ID, def.Period, def.Target, def.Points)
		}
	}
}

func TestValidateRejectsBadDefinitions(t *testing.T) {
	src := func(model.UserProgressRecord, time.Time) int { return 0 }
	cases := []struct {
		name string
		defs []model.QuestDefinition
	}{
		{"duplicate", []model.QuestDefinition{
			{ID: "a", Period: model.PeriodDaily, Target: 1, Progress: src},
			{ID: "a", Period: model.PeriodDaily, Target: 1, Progress: src},
		}},
		{"zero target", []model.QuestDefinition{{ID: "a", Period: model.PeriodDaily, Progress: src}}},
		{"negative points", []model.QuestDefinition{{ID: "a", Period: model.PeriodDaily, Target: 1, Points: -1, Progress: src}}},
		{"bad period", []model.QuestDefinition{{ID: "a", Period: "monthly", Target: 1, Progress: src}}},
		{"no source", []model.QuestDefinition{{ID: "a", Period: model.PeriodDaily, Target: 1}}},
	}
	for _, tc := range cases {
		if err := Validate(tc.defs); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestEvaluateStates(t *testing.T) {
	def := mustFind(t, "transliterate_3")
	counter := func(n int, key string) model.UserProgressRecord {
		return model.UserProgressRecord{
			DailyCounters: map[model.ActivityKind]model.Counter{
				model.ActivityTransliteration: {Count: n, Key: key},
			},
		}
	}
	cases := []struct {
		name     string
		rec      model.UserProgressRecord
		progress int
		state    State
	}{
		{"empty", model.UserProgressRecord{}, 0, NotStarted},
		{"partial", counter(2, "2025-03-05"), 2, InProgress},
		{"done", counter(3, "2025-03-05"), 3, Completed},
		{"capped", counter(9, "2025-03-05"), 3, Completed},
		{"stale key", counter(9, "2025-03-04"), 0, NotStarted},
	}
	for _, tc := range cases {
		st := Evaluate(def, snapshotOf(tc.rec), now)
		if st.Progress != tc.progress || st.State != tc.state {
			t.Fatalf("%s: got %d/%s, want %d/%s", tc.name, st.Progress, st.State, tc.progress, tc.state)
		}
	}
}

func TestEvaluateClaimedWins(t *testing.T) {
	def := mustFind(t, "daily_login")
	snap := snapshotOf(model.UserProgressRecord{LastLoginDayKey: "2025-03-05", LoginStreak: 1})
	snap.DailyClaims["daily_login"] = struct{}{}
	st := Evaluate(def, snap, now)
	if st.State != Claimed || st.Claimable() {
		t.Fatalf("expected claimed, got %s", st.State)
	}
	if st.PeriodKey != "2025-03-05" {
		t.Fatalf("unexpected period key %q", st.PeriodKey)
	}
}

func TestEvaluateIgnoresClaimsFromOtherPeriod(t *testing.T) {
	def := mustFind(t, "daily_login")
	snap := snapshotOf(model.UserProgressRecord{LastLoginDayKey: "2025-03-06", LoginStreak: 2})
	snap.DailyClaims["daily_login"] = struct{}{}
	next := now.Add(24 * time.Hour)
	st := Evaluate(def, snap, next)
	if st.State != Completed {
		t.Fatalf("claim from previous day must not carry over, got %s", st.State)
	}
}

func TestLoginStreakProgress(t *testing.T) {
	def := mustFind(t, "login_streak_7")
	cases := []struct {
		last   string
		streak int
		want   int
	}{
		{"2025-03-05", 4, 4},
		{"2025-03-04", 4, 4},
		{"2025-03-03", 4, 0},
		{"2025-03-05", 12, 7},
	}
	for _, tc := range cases {
		rec := model.UserProgressRecord{LastLoginDayKey: tc.last, LoginStreak: tc.streak}
		if got := Evaluate(def, snapshotOf(rec), now).Progress; got != tc.want {
			t.Fatalf("last=%s streak=%d: progress %d, want %d", tc.last, tc.streak, got, tc.want)
		}
	}
}

func TestWeeklyPointsProgress(t *testing.T) {
	def := mustFind(t, "earn_100_points")
	rec := model.UserProgressRecord{
		TotalScore: 500,
		WeeklyCounters: map[model.ActivityKind]model.Counter{
			model.ActivityPoints: {Count: 60, Key: "2025-W10"},
		},
	}
	st := Evaluate(def, snapshotOf(rec), now)
	if st.Progress != 60 || st.State != InProgress {
		t.Fatalf("got %d/%s", st.Progress, st.State)
	}
}

func TestEvaluateAllKeepsOrder(t *testing.T) {
	defs := Catalog()
	statuses := EvaluateAll(defs, snapshotOf(model.UserProgressRecord{}), now)
	if len(statuses) != len(defs) {
		t.Fatalf("expected %d statuses, got %d", len(defs), len(statuses))
	}
	for i := range defs {
		if statuses[i].Quest.ID != defs[i].ID {
			t.Fatalf("status %d is %s, want %s", i, statuses[i].Quest.ID, defs[i].ID)
		}
		if statuses[i].State != NotStarted {
			t.Fatalf("%s: expected not started", defs[i].ID)
		}
	}
}
