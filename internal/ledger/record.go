package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/verte-zerg/kudlit/internal/model"
)

// decodeRecord reads the ledger fields of a user document. Claim sets and any
// other fields are ignored.
func decodeRecord(body []byte) (model.UserProgressRecord, error) {
	var rec model.UserProgressRecord
	if len(body) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return model.UserProgressRecord{}, fmt.Errorf("decode user record: %w", err)
	}
	return rec, nil
}

// encodeRecord writes the ledger fields of rec into body, keeping every other
// field (claim sets in particular) as it was.
func encodeRecord(body []byte, rec model.UserProgressRecord) ([]byte, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"displayName", rec.DisplayName},
		{"dailyCounters", counters(rec.DailyCounters)},
		{"weeklyCounters", counters(rec.WeeklyCounters)},
		{"lastActivityDayKey", rec.LastActivityDayKey},
		{"lastActivityWeekKey", rec.LastActivityWeekKey},
		{"loginStreak", rec.LoginStreak},
		{"lastLoginDayKey", rec.LastLoginDayKey},
		{"totalScore", rec.TotalScore},
	}
	out := body
	for _, f := range fields {
		var err error
		out, err = sjson.SetBytes(out, f.path, f.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.path, err)
		}
	}
	return out, nil
}

func counters(m map[model.ActivityKind]model.Counter) map[model.ActivityKind]model.Counter {
	if m == nil {
		return map[model.ActivityKind]model.Counter{}
	}
	return m
}

// bump adds n to both counters of kind, resetting any counter whose key is stale.
func bump(rec *model.UserProgressRecord, kind model.ActivityKind, n int, dayKey, weekKey string) {
	if rec.DailyCounters == nil {
		rec.DailyCounters = map[model.ActivityKind]model.Counter{}
	}
	if rec.WeeklyCounters == nil {
		rec.WeeklyCounters = map[model.ActivityKind]model.Counter{}
	}
	daily := rec.DailyCounters[kind]
	if daily.Key != dayKey {
		daily = model.Counter{Key: dayKey}
	}
	daily.Count += n
	rec.DailyCounters[kind] = daily

	weekly := rec.WeeklyCounters[kind]
	if weekly.Key != weekKey {
		weekly = model.Counter{Key: weekKey}
	}
	weekly.Count += n
	rec.WeeklyCounters[kind] = weekly
}
