// Package rewards connects user actions to the ledger, the quest engine and
// the claim store, and announces every change on the event bus.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/verte-zerg/kudlit/internal/claim"
	"github.com/verte-zerg/kudlit/internal/ledger"
	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/notify"
	"github.com/verte-zerg/kudlit/internal/period"
	"github.com/verte-zerg/kudlit/internal/quest"
)

var (
	// ErrUnknownQuest is returned when a claim names a quest outside the catalog.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrQuestNotCompleted is returned when a claim is made before the target is reached.
	ErrQuestNotCompleted = errors.New("quest not completed")
)

// ClaimOutcome describes the result of a claim attempt. Claimed is false when
// the quest was already claimed in the current period.
type ClaimOutcome struct {
	Quest      quest.Status
	Claimed    bool
	Points     int
	TotalScore int
}

// LoginOutcome describes the result of a login.
type LoginOutcome struct {
	Record     model.UserProgressRecord
	FirstToday bool
	Quests     []quest.Status
}

// Service is the entry point used by the CLI, TUI and HTTP API.
type Service struct {
	ledger  *ledger.Ledger
	claims  *claim.Store
	catalog []model.QuestDefinition
	clock   period.Clock
	bus     *notify.Bus
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog replaces the default quest catalog.
func WithCatalog(defs []model.QuestDefinition) Option {
	return func(s *Service) { s.catalog = defs }
}

// WithClock sets the time source.
func WithClock(c period.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithBus sets the bus that receives change events.
func WithBus(b *notify.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Service. It fails when the catalog is invalid.
func New(l *ledger.Ledger, c *claim.Store, opts ...Option) (*Service, error) {
	s := &Service{
		ledger:  l,
		claims:  c,
		catalog: quest.Catalog(),
		clock:   period.RealClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := quest.Validate(s.catalog); err != nil {
		return nil, fmt.Errorf("invalid quest catalog: %w", err)
	}
	return s, nil
}

// Catalog returns the quest definitions served by s.
func (s *Service) Catalog() []model.QuestDefinition {
	out := make([]model.QuestDefinition, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Transliterated records one completed transliteration and returns the
// refreshed quest board.
func (s *Service) Transliterated(ctx context.Context, uid string) ([]quest.Status, error) {
	now := s.clock.Now()
	if _, err := s.ledger.RecordActivity(ctx, uid, model.ActivityTransliteration, now); err != nil {
		return nil, err
	}
	s.publish(notify.Event{Topic: notify.TopicActivity, UserID: uid, At: now})
	return s.quests(ctx, uid, now)
}

// Login records a login for today and returns the refreshed quest board.
func (s *Service) Login(ctx context.Context, uid string) (LoginOutcome, error) {
	now := s.clock.Now()
	rec, first, err := s.ledger.RecordLogin(ctx, uid, now)
	if err != nil {
		return LoginOutcome{}, err
	}
	if first {
		s.publish(notify.Event{Topic: notify.TopicLogin, UserID: uid, At: now})
	}
	statuses, err := s.quests(ctx, uid, now)
	if err != nil {
		return LoginOutcome{}, err
	}
	return LoginOutcome{Record: rec, FirstToday: first, Quests: statuses}, nil
}

// Quests evaluates every catalog quest for uid.
func (s *Service) Quests(ctx context.Context, uid string) ([]quest.Status, error) {
	return s.quests(ctx, uid, s.clock.Now())
}

// Profile returns the user's progress record.
func (s *Service) Profile(ctx context.Context, uid string) (model.UserProgressRecord, error) {
	return s.ledger.Record(ctx, uid)
}

// Leaderboard returns the top users by score.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return s.ledger.Leaderboard(ctx, limit)
}

// SetDisplayName updates the name shown on the leaderboard.
func (s *Service) SetDisplayName(ctx context.Context, uid, name string) (model.UserProgressRecord, error) {
	return s.ledger.SetDisplayName(ctx, uid, name)
}

// Claim awards the points of a completed quest at most once per period.
func (s *Service) Claim(ctx context.Context, uid, questID string) (ClaimOutcome, error) {
	def, ok := s.find(questID)
	if !ok {
		return ClaimOutcome{}, fmt.Errorf("%w: %s", ErrUnknownQuest, questID)
	}
	now := s.clock.Now()
	snap, err := s.ledger.Snapshot(ctx, uid, now)
	if err != nil {
		return ClaimOutcome{}, err
	}
	st := quest.Evaluate(def, snap, now)
	out := ClaimOutcome{Quest: st, TotalScore: snap.Record.TotalScore}
	switch st.State {
	case quest.Claimed:
		return out, nil
	case quest.Completed:
	default:
		return out, fmt.Errorf("%w: %s at %d/%d", ErrQuestNotCompleted, def.ID, st.Progress, def.Target)
	}

	var rec model.UserProgressRecord
	award := s.ledger.AwardEffect(def.Points, now, &rec)
	claimed, err := s.claims.TryClaim(ctx, uid, def.ID, def.Period, st.PeriodKey, award)
	if err != nil {
		s.logger.Warn("claim not stored", "user", uid, "quest", def.ID, "err", err)
		return out, err
	}
	if !claimed {
		out.Quest.State = quest.Claimed
		return out, nil
	}
	out.Quest.State = quest.Claimed
	out.Claimed = true
	out.Points = def.Points
	out.TotalScore = rec.TotalScore
	s.logger.Info("quest claimed", "user", uid, "quest", def.ID, "points", def.Points)
	s.publish(notify.Event{Topic: notify.TopicClaim, UserID: uid, QuestID: def.ID, Points: def.Points, At: now})
	return out, nil
}

func (s *Service) quests(ctx context.Context, uid string, now time.Time) ([]quest.Status, error) {
	snap, err := s.ledger.Snapshot(ctx, uid, now)
	if err != nil {
		return nil, err
	}
	return quest.EvaluateAll(s.catalog, snap, now), nil
}

func (s *Service) find(id string) (model.QuestDefinition, bool) {
	for _, def := range s.catalog {
		if def.ID == id {
			return def, true
		}
	}
	return model.QuestDefinition{}, false
}

func (s *Service) publish(ev notify.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ev)
}
