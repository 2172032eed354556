package rewards

import (
	"context"

	"github.com/verte-zerg/kudlit/internal/ledger"
	"github.com/verte-zerg/kudlit/internal/model"
	"github.com/verte-zerg/kudlit/internal/quest"
)

// Board is an evaluated quest board together with the snapshot it came from.
type Board struct {
	Snapshot model.Snapshot
	Quests   []quest.Status
}

// BoardLoader loads quest boards for one view. Starting a load supersedes the
// one in flight, which then fails with ledger.ErrSuperseded.
type BoardLoader struct {
	svc    *Service
	loader *ledger.Loader
}

// NewBoardLoader returns a loader bound to s.
func (s *Service) NewBoardLoader() *BoardLoader {
	return &BoardLoader{svc: s, loader: ledger.NewLoader(s.ledger)}
}

// Load reads and evaluates the board for uid.
func (b *BoardLoader) Load(ctx context.Context, uid string) (Board, error) {
	now := b.svc.clock.Now()
	snap, err := b.loader.Load(ctx, uid, now)
	if err != nil {
		return Board{}, err
	}
	return Board{Snapshot: snap, Quests: quest.EvaluateAll(b.svc.catalog, snap, now)}, nil
}

// Reset discards the load in flight, if any.
func (b *BoardLoader) Reset() {
	b.loader.Reset()
}
