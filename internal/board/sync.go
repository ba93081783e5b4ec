// Package board keeps a leaderboard view eventually consistent with the
// judge. Every tick replaces the previous snapshot wholesale; there is
// no incremental merge to drift.
package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/openjudge/arena/api"
)

const DefaultInterval = 15 * time.Second

type LeaderboardFetcher interface {
	Leaderboard(ctx context.Context, contestID int64) ([]api.LeaderboardEntry, error)
}

// Sink receives leaderboard snapshots. Entries arrive in server rank
// order and must be displayed as-is.
type Sink interface {
	Snapshot(contestID int64, entries []api.LeaderboardEntry)
}

// Synchronizer refreshes one contest's leaderboard on a fixed cadence
// for the lifetime of a contest view. A failed tick is logged and the
// prior snapshot stays in place; stale-but-available beats blanking the
// view. Exactly one synchronizer should be live per contest view —
// tear the old one down before starting another.
type Synchronizer struct {
	fetch    LeaderboardFetcher
	sink     Sink
	log      *slog.Logger
	interval time.Duration

	contestID int64
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSynchronizer(fetch LeaderboardFetcher, sink Sink, log *slog.Logger, contestID int64) *Synchronizer {
	return &Synchronizer{
		fetch:     fetch,
		sink:      sink,
		log:       log,
		interval:  DefaultInterval,
		contestID: contestID,
		done:      make(chan struct{}),
	}
}

// WithInterval overrides the refresh cadence. Call before Start.
func (s *Synchronizer) WithInterval(interval time.Duration) *Synchronizer {
	s.interval = interval
	return s
}

// Start fetches once immediately, then keeps refreshing until Stop.
func (s *Synchronizer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Stop halts refreshing. No snapshot fetched under this synchronizer is
// applied after Stop returns and the Done channel closes. Idempotent.
func (s *Synchronizer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Synchronizer) Done() <-chan struct{} {
	return s.done
}

func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("leaderboard sync stopped", slog.Int64("contest", s.contestID))
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Synchronizer) tick(ctx context.Context) {
	entries, err := s.fetch.Leaderboard(ctx, s.contestID)
	if ctx.Err() != nil {
		// Torn down mid-fetch; a late snapshot must not reach the sink.
		return
	}
	if err != nil {
		s.log.Warn("leaderboard refresh failed",
			slog.Int64("contest", s.contestID), slog.Any("error", err))
		return
	}
	s.sink.Snapshot(s.contestID, entries)
}
