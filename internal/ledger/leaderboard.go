package ledger

import (
	"context"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/store"
)

// Leaderboard ranks users by total score, highest first. Ties are ordered by
// user id. A non-positive limit returns every user.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	docs, err := l.store.List(ctx, store.UserPrefix)
	if err != nil {
		return nil, l.fail("leaderboard", "*", err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(docs))
	for _, doc := range docs {
		fields := gjson.GetManyBytes(doc.Body, "displayName", "totalScore", "loginStreak")
		uid := strings.TrimPrefix(doc.Key, store.UserPrefix)
		name := fields[0].String()
		if name == "" {
			name = uid
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:      uid,
			DisplayName: name,
			TotalScore:  int(fields[1].Int()),
			LoginStreak: int(fields[2].Int()),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore == entries[j].TotalScore {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].TotalScore > entries[j].TotalScore
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
