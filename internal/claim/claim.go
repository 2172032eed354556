// Package claim records which quests were already rewarded in a period.
//
// Claim sets live in the user document under dailyQuestClaims_{YYYY-MM-DD} and
// weeklyQuestClaims_{YYYY-Www}. TryClaim is the single idempotency boundary for
// reward issuance: points are awarded by an Effect inside the claim write.
package claim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/store"
)

// Field returns the document field holding the claim set for a period key.
func Field(p model.Period, periodKey string) string {
	if p == model.PeriodWeekly {
		return "weeklyQuestClaims_" + periodKey
	}
	return "dailyQuestClaims_" + periodKey
}

// ParseSet reads the claim set stored under field in a user document.
func ParseSet(body []byte, field string) model.ClaimSet {
	set := model.ClaimSet{}
	for _, id := range listIDs(body, field) {
		set[id] = struct{}{}
	}
	return set
}

func listIDs(body []byte, field string) []string {
	var ids []string
	gjson.GetBytes(body, field).ForEach(func(_, value gjson.Result) bool {
		if id := value.String(); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// DefaultTimeout bounds every store round trip made by a claim Store.
const DefaultTimeout = 10 * time.Second

// Effect rewrites the user document in the same write that records a claim.
// An Effect error aborts the write, leaving neither the claim nor the effect stored.
type Effect func(body []byte) ([]byte, error)

// Store guards quest reward claims.
type Store struct {
	store   store.Store
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New returns a claim Store over st.
func New(st store.Store, opts ...Option) *Store {
	s := &Store{store: st, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TryClaim adds questID to the claim set of (p, periodKey), applies effects to
// the same document and returns true. It returns false without writing when
// questID is already a member. The claim and its effects commit in one
// compare-and-swap or not at all.
func (s *Store) TryClaim(ctx context.Context, uid, questID string, p model.Period, periodKey string, effects ...Effect) (bool, error) {
	if questID == "" {
		return false, fmt.Errorf("quest id is required")
	}
	if uid == "" {
		return false, fmt.Errorf("user id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	field := Field(p, periodKey)
	claimed := false
	_, err := store.Update(ctx, s.store, store.UserKey(uid), func(body []byte) ([]byte, error) {
		claimed = false
		ids := listIDs(body, field)
		for _, id := range ids {
			if id == questID {
				return body, nil
			}
		}
		next, err := sjson.SetBytes(body, field, append(ids, questID))
		if err != nil {
			return nil, fmt.Errorf("append claim: %w", err)
		}
		for _, apply := range effects {
			if next, err = apply(next); err != nil {
				return nil, err
			}
		}
		claimed = true
		return next, nil
	})
	if err != nil {
		return false, fmt.Errorf("claim %s for %s: %w", questID, periodKey, unavailable(err))
	}
	return claimed, nil
}

// IsClaimed reports whether questID was already claimed for (p, periodKey).
func (s *Store) IsClaimed(ctx context.Context, uid, questID string, p model.Period, periodKey string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	doc, err := s.store.Get(ctx, store.UserKey(uid))
	if err != nil {
		return false, fmt.Errorf("read claims: %w", unavailable(err))
	}
	return ParseSet(doc.Body, Field(p, periodKey)).Has(questID), nil
}

// unavailable marks a deadline hit as ErrStoreUnavailable.
func unavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, store.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}
	return err
}
