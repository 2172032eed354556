package claim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/store"
)

func TestTryClaimOncePerPeriod(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	claims := New(st)

	ok, err := claims.TryClaim(ctx, "u1", "transliterate_3", model.PeriodDaily, "2025-01-01")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	before, _ := st.Get(ctx, store.UserKey("u1"))
	for i := 0; i < 3; i++ {
		ok, err = claims.TryClaim(ctx, "u1", "transliterate_3", model.PeriodDaily, "2025-01-01")
		if err != nil || ok {
			t.Fatalf("repeat claim %d: ok=%v err=%v", i, ok, err)
		}
	}
	after, _ := st.Get(ctx, store.UserKey("u1"))
	if after.Version != before.Version {
		t.Fatalf("rejected claim must not write: %d -> %d", before.Version, after.Version)
	}

	ok, err = claims.TryClaim(ctx, "u1", "transliterate_3", model.PeriodDaily, "2025-01-02")
	if err != nil || !ok {
		t.Fatalf("next day claim: ok=%v err=%v", ok, err)
	}
}

func TestTryClaimDailyAndWeeklyAreSeparate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	claims := New(st)

	if ok, _ := claims.TryClaim(ctx, "u1", "q", model.PeriodDaily, "2025-01-06"); !ok {
		t.Fatalf("daily claim rejected")
	}
	if ok, _ := claims.TryClaim(ctx, "u1", "q", model.PeriodWeekly, "2025-W02"); !ok {
		t.Fatalf("weekly claim rejected")
	}
	doc, _ := st.Get(ctx, store.UserKey("u1"))
	if got := gjson.GetBytes(doc.Body, "weeklyQuestClaims_2025-W02.0").String(); got != "q" {
		t.Fatalf("unexpected weekly claims: %s", doc.Body)
	}
	claimed, err := claims.IsClaimed(ctx, "u1", "q", model.PeriodDaily, "2025-01-06")
	if err != nil || !claimed {
		t.Fatalf("IsClaimed=%v err=%v", claimed, err)
	}
}

func TestTryClaimPreservesOtherFields(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	if _, err := st.CompareAndSwap(ctx, store.UserKey("u1"), 0, []byte(`{"totalScore":42}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, err := New(st).TryClaim(ctx, "u1", "daily_login", model.PeriodDaily, "2025-01-01"); err != nil || !ok {
		t.Fatalf("claim: %v %v", ok, err)
	}
	doc, _ := st.Get(ctx, store.UserKey("u1"))
	if gjson.GetBytes(doc.Body, "totalScore").Int() != 42 {
		t.Fatalf("claim clobbered score: %s", doc.Body)
	}
}

type racingStore struct {
	*store.MemoryStore
}

func (r racingStore) CompareAndSwap(ctx context.Context, key string, version int64, body []byte) (int64, error) {
	// Another device wins between our read and our swap.
	if _, err := r.MemoryStore.CompareAndSwap(ctx, key, version, []byte(`{"dailyQuestClaims_2025-01-01":["q"]}`)); err != nil {
		return 0, err
	}
	return r.MemoryStore.CompareAndSwap(ctx, key, version, body)
}

func TestTryClaimLostRace(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	ok, err := New(racingStore{mem}).TryClaim(ctx, "u1", "q", model.PeriodDaily, "2025-01-01")
	if ok || !errors.Is(err, store.ErrRaceLost) {
		t.Fatalf("expected lost race, got ok=%v err=%v", ok, err)
	}
	claimed, _ := New(mem).IsClaimed(ctx, "u1", "q", model.PeriodDaily, "2025-01-01")
	if !claimed {
		t.Fatalf("winning writer's claim should be stored")
	}
	if ok, _ := New(mem).TryClaim(ctx, "u1", "q", model.PeriodDaily, "2025-01-01"); ok {
		t.Fatalf("quest must not be claimable twice after a lost race")
	}
}

func TestParseSetIgnoresMissingField(t *testing.T) {
	if set := ParseSet([]byte(`{}`), Field(model.PeriodDaily, "2025-01-01")); len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestTryClaimAppliesEffectsInTheSameWrite(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	claims := New(st)

	mark := func(body []byte) ([]byte, error) {
		return sjson.SetBytes(body, "totalScore", 15)
	}
	ok, err := claims.TryClaim(ctx, "u1", "q", model.PeriodDaily, "2025-01-06", mark)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	doc, _ := st.Get(ctx, store.UserKey("u1"))
	if doc.Version != 1 {
		t.Fatalf("expected a single write, got version %d", doc.Version)
	}
	if got := gjson.GetBytes(doc.Body, "totalScore").Int(); got != 15 {
		t.Fatalf("effect not applied: %s", doc.Body)
	}

	failing := func([]byte) ([]byte, error) { return nil, errors.New("boom") }
	if _, err := claims.TryClaim(ctx, "u1", "other", model.PeriodDaily, "2025-01-06", failing); err == nil {
		t.Fatalf("expected effect error")
	}
	claimed, err := claims.IsClaimed(ctx, "u1", "other", model.PeriodDaily, "2025-01-06")
	if err != nil || claimed {
		t.Fatalf("failed effect must not store the claim: claimed=%v err=%v", claimed, err)
	}
}

// blockingStore never answers a read before its context ends.
type blockingStore struct {
	*store.MemoryStore
}

func (s blockingStore) Get(ctx context.Context, _ string) (store.Document, error) {
	<-ctx.Done()
	return store.Document{}, ctx.Err()
}

func TestClaimReadsAreBounded(t *testing.T) {
	claims := New(blockingStore{store.NewMemory()}, WithTimeout(20*time.Millisecond))

	done := make(chan error, 2)
	go func() {
		_, err := claims.TryClaim(context.Background(), "u1", "q", model.PeriodDaily, "2025-01-06")
		done <- err
	}()
	go func() {
		_, err := claims.IsClaimed(context.Background(), "u1", "q", model.PeriodDaily, "2025-01-06")
		done <- err
	}()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if !errors.Is(err, store.ErrStoreUnavailable) {
				t.Fatalf("expected ErrStoreUnavailable, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("claim store call did not time out")
		}
	}
}
