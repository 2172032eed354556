package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/verte-zerg/kudlit/internal/model"
)

// ErrSuperseded is returned by Loader.Load when a newer load or a Reset
// started before the read finished. The result of such a read is discarded.
var ErrSuperseded = errors.New("snapshot load superseded")

// Loader serializes snapshot reads for one view: starting a new load cancels
// the previous one, and only the latest load may deliver a result.
type Loader struct {
	ledger *Ledger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewLoader returns a Loader reading through l.
func NewLoader(l *Ledger) *Loader {
	return &Loader{ledger: l}
}

// Load reads a snapshot for uid, superseding any load still in flight.
func (ld *Loader) Load(ctx context.Context, uid string, now time.Time) (model.Snapshot, error) {
	ctx, gen := ld.begin(ctx)
	snap, err := ld.ledger.Snapshot(ctx, uid, now)
	if !ld.finish(gen) {
		return model.Snapshot{}, ErrSuperseded
	}
	return snap, err
}

// Reset supersedes the load in flight, if any. Call it when the user context
// changes, for example on sign-out.
func (ld *Loader) Reset() {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.gen++
	if ld.cancel != nil {
		ld.cancel()
		ld.cancel = nil
	}
}

func (ld *Loader) begin(parent context.Context) (context.Context, uint64) {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if ld.cancel != nil {
		ld.cancel()
	}
	ld.gen++
	ctx, cancel := context.WithCancel(parent)
	ld.cancel = cancel
	return ctx, ld.gen
}

func (ld *Loader) finish(gen uint64) bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	if gen != ld.gen {
		return false
	}
	if ld.cancel != nil {
		ld.cancel()
		ld.cancel = nil
	}
	return true
}
