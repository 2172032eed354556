// Package model defines shared data structures.
package model

import "time"

// ActivityKind identifies a tracked usage counter.
type ActivityKind string

const (
	// ActivityTransliteration counts completed transliterations.
	ActivityTransliteration ActivityKind = "transliteration"
	// ActivityPoints accumulates points earned, not events.
	ActivityPoints ActivityKind = "points"
)

// IsValid reports whether the kind is one of the known activity kinds.
func (k ActivityKind) IsValid() bool {
	switch k {
	case ActivityTransliteration, ActivityPoints:
		return true
	default:
		return false
	}
}

// Period is the reset cycle of a counter, quest or claim set.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// IsValid reports whether the period is daily or weekly.
func (p Period) IsValid() bool {
	return p == PeriodDaily || p == PeriodWeekly
}

// Counter is a count scoped to the period key it was last written under.
type Counter struct {
	Count int    `json:"count"`
	Key   string `json:"key"`
}

// ValueAt returns the count when key matches, and zero for a stale key.
func (c Counter) ValueAt(key string) int {
	if c.Key != key {
		return 0
	}
	return c.Count
}

// UserProgressRecord is the per-user ledger aggregate.
type UserProgressRecord struct {
	DisplayName         string                   `json:"displayName,omitempty"`
	DailyCounters       map[ActivityKind]Counter `json:"dailyCounters,omitempty"`
	WeeklyCounters      map[ActivityKind]Counter `json:"weeklyCounters,omitempty"`
	LastActivityDayKey  string                   `json:"lastActivityDayKey,omitempty"`
	LastActivityWeekKey string                   `json:"lastActivityWeekKey,omitempty"`
	LoginStreak         int                      `json:"loginStreak"`
	LastLoginDayKey     string                   `json:"lastLoginDayKey,omitempty"`
	TotalScore          int                      `json:"totalScore"`
}

// Daily returns the current-day value of a daily counter.
func (r UserProgressRecord) Daily(kind ActivityKind, dayKey string) int {
	return r.DailyCounters[kind].ValueAt(dayKey)
}

// Weekly returns the current-week value of a weekly counter.
func (r UserProgressRecord) Weekly(kind ActivityKind, weekKey string) int {
	return r.WeeklyCounters[kind].ValueAt(weekKey)
}

// ProgressSource computes raw quest progress from a record at a point in time.
type ProgressSource func(rec UserProgressRecord, now time.Time) int

// QuestDefinition is an immutable quest catalog entry.
type QuestDefinition struct {
	ID          string
	Title       string
	Description string
	Period      Period
	Target      int
	Points      int
	Progress    ProgressSource
}

// ClaimSet holds the quest ids already rewarded within one period key.
type ClaimSet map[string]struct{}

// Has reports whether questID is in the set.
func (s ClaimSet) Has(questID string) bool {
	_, ok := s[questID]
	return ok
}

// Snapshot is a consistent read of a user's record and current claim sets.
type Snapshot struct {
	UserID       string
	Record       UserProgressRecord
	DayKey       string
	WeekKey      string
	DailyClaims  ClaimSet
	WeeklyClaims ClaimSet
}

// Claims returns the claim set matching the period.
func (s Snapshot) Claims(p Period) ClaimSet {
	if p == PeriodWeekly {
		return s.WeeklyClaims
	}
	return s.DailyClaims
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	TotalScore  int
	LoginStreak int
}
