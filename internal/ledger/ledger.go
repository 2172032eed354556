// Package ledger tracks per-user activity counters, login streaks and score.
//
// Every mutating operation is a single read-modify-write of the user document
// through store.Update. Counters are reset lazily: a counter written under an
// older day or week key reads as zero and restarts from zero on the next write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/kudlit/internal/claim"
	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/period"
	"github.com/verte-zerg/kudlit/internal/store"
)

// DefaultReadTimeout bounds every store round trip made by the ledger.
const DefaultReadTimeout = 10 * time.Second

// Ledger reads and updates user progress records.
type Ledger struct {
	store   store.Store
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithReadTimeout overrides DefaultReadTimeout. Non-positive values are ignored.
func WithReadTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a Ledger over st.
func New(st store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:   st,
		timeout: DefaultReadTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordActivity increments the daily and weekly counters of kind.
func (l *Ledger) RecordActivity(ctx context.Context, uid string, kind model.ActivityKind, now time.Time) (model.UserProgressRecord, error) {
	if !kind.IsValid() {
		return model.UserProgressRecord{}, fmt.Errorf("unknown activity kind %q", kind)
	}
	dayKey, weekKey := period.DayKey(now), period.WeekKey(now)
	rec, _, err := l.mutate(ctx, "record activity", uid, func(rec *model.UserProgressRecord) bool {
		bump(rec, kind, 1, dayKey, weekKey)
		rec.LastActivityDayKey = dayKey
		rec.LastActivityWeekKey = weekKey
		return true
	})
	return rec, err
}

// RecordLogin updates the login streak. A second login on the same day is a
// no-op and reports false.
func (l *Ledger) RecordLogin(ctx context.Context, uid string, now time.Time) (model.UserProgressRecord, bool, error) {
	today := period.DayKey(now)
	yesterday := period.PreviousDayKey(now)
	return l.mutate(ctx, "record login", uid, func(rec *model.UserProgressRecord) bool {
		if rec.LastLoginDayKey == today {
			return false
		}
		if rec.LastLoginDayKey == yesterday {
			rec.LoginStreak++
		} else {
			rec.LoginStreak = 1
		}
		rec.LastLoginDayKey = today
		return true
	})
}

// AwardPoints adds delta to the total score, which never drops below zero.
// Positive deltas also count toward the weekly points counter.
func (l *Ledger) AwardPoints(ctx context.Context, uid string, delta int, now time.Time) (model.UserProgressRecord, error) {
	dayKey, weekKey := period.DayKey(now), period.WeekKey(now)
	rec, _, err := l.mutate(ctx, "award points", uid, func(rec *model.UserProgressRecord) bool {
		return applyPoints(rec, delta, dayKey, weekKey)
	})
	return rec, err
}

// AwardEffect returns a claim.Effect that applies AwardPoints(delta) to the
// document being claimed. When the write commits, out holds the stored record.
func (l *Ledger) AwardEffect(delta int, now time.Time, out *model.UserProgressRecord) claim.Effect {
	dayKey, weekKey := period.DayKey(now), period.WeekKey(now)
	return func(body []byte) ([]byte, error) {
		rec, err := decodeRecord(body)
		if err != nil {
			return nil, err
		}
		if out != nil {
			*out = rec
		}
		if !applyPoints(&rec, delta, dayKey, weekKey) {
			return body, nil
		}
		next, err := encodeRecord(body, rec)
		if err != nil {
			return nil, err
		}
		if out != nil {
			*out = rec
		}
		return next, nil
	}
}

func applyPoints(rec *model.UserProgressRecord, delta int, dayKey, weekKey string) bool {
	if delta == 0 {
		return false
	}
	rec.TotalScore += delta
	if rec.TotalScore < 0 {
		rec.TotalScore = 0
	}
	if delta > 0 {
		bump(rec, model.ActivityPoints, delta, dayKey, weekKey)
	}
	return true
}

// SetDisplayName stores the name shown on the leaderboard.
func (l *Ledger) SetDisplayName(ctx context.Context, uid, name string) (model.UserProgressRecord, error) {
	name = strings.TrimSpace(name)
	rec, _, err := l.mutate(ctx, "set display name", uid, func(rec *model.UserProgressRecord) bool {
		if rec.DisplayName == name {
			return false
		}
		rec.DisplayName = name
		return true
	})
	return rec, err
}

// Record returns the stored record, or a zero record for an unknown user.
func (l *Ledger) Record(ctx context.Context, uid string) (model.UserProgressRecord, error) {
	doc, err := l.get(ctx, uid)
	if err != nil {
		return model.UserProgressRecord{}, l.fail("read record", uid, err)
	}
	return decodeRecord(doc.Body)
}

// Snapshot reads the record and the claim sets of the periods containing now.
func (l *Ledger) Snapshot(ctx context.Context, uid string, now time.Time) (model.Snapshot, error) {
	doc, err := l.get(ctx, uid)
	if err != nil {
		return model.Snapshot{}, l.fail("snapshot", uid, err)
	}
	rec, err := decodeRecord(doc.Body)
	if err != nil {
		return model.Snapshot{}, err
	}
	dayKey, weekKey := period.DayKey(now), period.WeekKey(now)
	return model.Snapshot{
		UserID:       uid,
		Record:       rec,
		DayKey:       dayKey,
		WeekKey:      weekKey,
		DailyClaims:  claim.ParseSet(doc.Body, claim.Field(model.PeriodDaily, dayKey)),
		WeeklyClaims: claim.ParseSet(doc.Body, claim.Field(model.PeriodWeekly, weekKey)),
	}, nil
}

func (l *Ledger) get(ctx context.Context, uid string) (store.Document, error) {
	if uid == "" {
		return store.Document{}, fmt.Errorf("user id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	return l.store.Get(ctx, store.UserKey(uid))
}

// mutate applies fn to the decoded record and writes it back when fn reports a
// change. The returned record is the one now stored.
func (l *Ledger) mutate(ctx context.Context, op, uid string, fn func(rec *model.UserProgressRecord) bool) (model.UserProgressRecord, bool, error) {
	if uid == "" {
		return model.UserProgressRecord{}, false, fmt.Errorf("ledger %s: user id is required", op)
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		rec     model.UserProgressRecord
		changed bool
	)
	_, err := store.Update(ctx, l.store, store.UserKey(uid), func(body []byte) ([]byte, error) {
		var err error
		rec, err = decodeRecord(body)
		if err != nil {
			return nil, err
		}
		changed = fn(&rec)
		if !changed {
			return body, nil
		}
		return encodeRecord(body, rec)
	})
	if err != nil {
		return model.UserProgressRecord{}, false, l.fail(op, uid, err)
	}
	return rec, changed, nil
}

func (l *Ledger) fail(op, uid string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, store.ErrStoreUnavailable) {
		err = fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	switch {
	case errors.Is(err, store.ErrStoreUnavailable):
		l.logger.Warn("progress unavailable", "op", op, "user", uid, "err", err)
	case errors.Is(err, store.ErrRaceLost):
		l.logger.Info("ledger write lost race", "op", op, "user", uid)
	}
	return fmt.Errorf("ledger %s: %w", op, err)
}
