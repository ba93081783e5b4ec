package board_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openjudge/arena/api"
	"github.com/openjudge/arena/internal/board"
)

const tick = 3 * time.Millisecond

type fakeBoard struct {
	mu      sync.Mutex
	entries map[int64][]api.LeaderboardEntry
	failing bool
	calls   int
}

func (f *fakeBoard) Leaderboard(ctx context.Context, contestID int64) ([]api.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return nil, errors.New("bad gateway")
	}
	return f.entries[contestID], nil
}

func (f *fakeBoard) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

type snapshotRec struct {
	mu    sync.Mutex
	got   [][]api.LeaderboardEntry
	byCID []int64
}

func (r *snapshotRec) Snapshot(contestID int64, entries []api.LeaderboardEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, entries)
	r.byCID = append(r.byCID, contestID)
}

func (r *snapshotRec) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *snapshotRec) first() []api.LeaderboardEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.got[0]
}

func (r *snapshotRec) contests() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.byCID...)
}

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached in time")
		}
		time.Sleep(tick)
	}
}

func TestSynchronizerDeliversSnapshots(t *testing.T) {
	fetch := &fakeBoard{entries: map[int64][]api.LeaderboardEntry{
		1: {{Username: "alice", SolvedProblems: 1}},
	}}
	rec := &snapshotRec{}

	s := board.NewSynchronizer(fetch, rec, testLogger(), 1).WithInterval(tick)
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return rec.count() >= 3 })
	require.Equal(t, "alice", rec.first()[0].Username)
}

func TestSynchronizerSurvivesFailedTicks(t *testing.T) {
	fetch := &fakeBoard{entries: map[int64][]api.LeaderboardEntry{2: {{Username: "bob"}}}}
	rec := &snapshotRec{}

	s := board.NewSynchronizer(fetch, rec, testLogger(), 2).WithInterval(tick)
	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return rec.count() >= 1 })
	before := rec.count()

	fetch.setFailing(true)
	time.Sleep(6 * tick)
	require.Equal(t, before, rec.count(), "failed ticks must not produce snapshots")

	fetch.setFailing(false)
	waitFor(t, func() bool { return rec.count() > before })
}

func TestSynchronizerTeardownBeforeSwitch(t *testing.T) {
	fetch := &fakeBoard{entries: map[int64][]api.LeaderboardEntry{
		1: {{Username: "alice"}},
		2: {{Username: "bob"}},
	}}
	rec := &snapshotRec{}

	sX := board.NewSynchronizer(fetch, rec, testLogger(), 1).WithInterval(tick)
	sX.Start()
	waitFor(t, func() bool { return rec.count() >= 1 })

	sX.Stop()
	<-sX.Done()
	switched := rec.count()

	sY := board.NewSynchronizer(fetch, rec, testLogger(), 2).WithInterval(tick)
	sY.Start()
	defer sY.Stop()
	waitFor(t, func() bool { return rec.count() > switched })

	// Nothing fetched under contest 1's timer lands after the switch.
	for _, cid := range rec.contests()[switched:] {
		require.Equal(t, int64(2), cid)
	}
}

func TestSynchronizerStopIsIdempotent(t *testing.T) {
	fetch := &fakeBoard{}
	s := board.NewSynchronizer(fetch, &snapshotRec{}, testLogger(), 1).WithInterval(tick)
	s.Start()
	s.Stop()
	s.Stop()
	<-s.Done()
}

func TestSolvedDelta(t *testing.T) {
	prev := []api.LeaderboardEntry{{Username: "alice", SolvedProblems: 1}}
	curr := []api.LeaderboardEntry{
		{Username: "alice", SolvedProblems: 2},
		{Username: "carol", SolvedProblems: 1},
	}
	require.Equal(t, 1, board.SolvedDelta(prev, curr, "alice"))
	require.Equal(t, 1, board.SolvedDelta(prev, curr, "carol"))
	require.Equal(t, 0, board.SolvedDelta(prev, curr, "dave"))
	require.ElementsMatch(t, []string{"carol"}, board.Newcomers(prev, curr))
}
