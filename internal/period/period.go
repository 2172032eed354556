// Package period computes the day and ISO week keys that scope counters and claims.
//
// All keys are computed in UTC so that every device agrees on when a day or week
// rolls over, regardless of its local time zone.
package period

import (
	"fmt"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
)

const dayLayout = "2006-01-02"

// Zone is the reference time zone for all period keys.
var Zone = time.UTC

// DayKey returns the YYYY-MM-DD key of the day containing t.
func DayKey(t time.Time) string {
	return t.In(Zone).Format(dayLayout)
}

// WeekKey returns the YYYY-Www key of the ISO-8601 week containing t.
// The year is the ISO week-numbering year, which can differ from the calendar
// year in the first and last days of January and December.
func WeekKey(t time.Time) string {
	year, week := t.In(Zone).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// PreviousDayKey returns the key of the calendar day before the one containing t.
func PreviousDayKey(t time.Time) string {
	return DayKey(t.In(Zone).AddDate(0, 0, -1))
}

// Key returns the day or week key for t depending on p.
func Key(p model.Period, t time.Time) string {
	if p == model.PeriodWeekly {
		return WeekKey(t)
	}
	return DayKey(t)
}

// ParseDayKey parses a YYYY-MM-DD key into midnight UTC.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, key, Zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}
