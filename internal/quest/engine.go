// Package quest evaluates quest progress against a snapshot of a user's ledger
// record and claim sets. Evaluation is pure: it never reads or writes storage.
package quest

import (
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/period"
)

// State is the display state of a quest.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
	Claimed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Claimed:
		return "claimed"
	default:
		return "unknown"
	}
}

// Status is the evaluated state of one quest for one user.
type Status struct {
	Quest     model.QuestDefinition
	Progress  int
	State     State
	PeriodKey string
}

// Claimable reports whether the quest is completed and not yet claimed.
func (s Status) Claimable() bool {
	return s.State == Completed
}

// Evaluate computes the status of def at now. Progress is capped at the target.
// Membership in the current period's claim set wins over completion.
func Evaluate(def model.QuestDefinition, snap model.Snapshot, now time.Time) Status {
	progress := 0
	if def.Progress != nil {
		progress = def.Progress(snap.Record, now)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > def.Target {
		progress = def.Target
	}
	st := Status{
		Quest:     def,
		Progress:  progress,
		PeriodKey: period.Key(def.Period, now),
	}
	switch {
	case claimsFor(snap, def.Period, st.PeriodKey).Has(def.ID):
		st.State = Claimed
	case progress >= def.Target:
		st.State = Completed
	case progress > 0:
		st.State = InProgress
	default:
		st.State = NotStarted
	}
	return st
}

// EvaluateAll evaluates defs in order.
func EvaluateAll(defs []model.QuestDefinition, snap model.Snapshot, now time.Time) []Status {
	out := make([]Status, 0, len(defs))
	for _, def := range defs {
		out = append(out, Evaluate(def, snap, now))
	}
	return out
}

// claimsFor returns the snapshot claim set only when it was read for the same
// period key as now; a snapshot from an earlier period has no current claims.
func claimsFor(snap model.Snapshot, p model.Period, key string) model.ClaimSet {
	snapKey := snap.DayKey
	if p == model.PeriodWeekly {
		snapKey = snap.WeekKey
	}
	if snapKey != key {
		return nil
	}
	return snap.Claims(p)
}
