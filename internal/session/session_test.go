package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openjudge/arena/api"
	"github.com/openjudge/arena/internal/judge"
	"github.com/openjudge/arena/internal/session"
)

type fakeVerifier struct {
	known map[int64]bool
	calls int
}

func (f *fakeVerifier) Contest(ctx context.Context, contestID int64) (*api.Contest, error) {
	f.calls++
	if !f.known[contestID] {
		return nil, judge.ErrNotFound
	}
	return &api.Contest{ID: contestID, Name: "Weekly Round"}, nil
}

func tempStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStoreAt(filepath.Join(t.TempDir(), "session.toml"))
}

func TestStoreRoundTrip(t *testing.T) {
	store := tempStore(t)

	// A fresh store has no session.
	id, err := store.Load()
	require.NoError(t, err)
	require.False(t, id.Valid())

	require.NoError(t, store.Save(session.Identity{Username: "alice", ContestID: 1}))

	id, err = store.Load()
	require.NoError(t, err)
	require.Equal(t, session.Identity{Username: "alice", ContestID: 1}, id)
}

func TestJoinVerifiesThenPersists(t *testing.T) {
	store := tempStore(t)
	verify := &fakeVerifier{known: map[int64]bool{1: true}}

	id, err := session.Join(context.Background(), verify, store, 1, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, 1, verify.calls)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, id, persisted)
}

func TestJoinUnknownContestPersistsNothing(t *testing.T) {
	store := tempStore(t)
	verify := &fakeVerifier{known: map[int64]bool{}}

	_, err := session.Join(context.Background(), verify, store, 999, "alice")
	require.ErrorIs(t, err, judge.ErrNotFound)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.False(t, persisted.Valid(), "failed join must not persist identity")
}

func TestJoinRejectsEmptyUsername(t *testing.T) {
	store := tempStore(t)
	verify := &fakeVerifier{known: map[int64]bool{1: true}}

	_, err := session.Join(context.Background(), verify, store, 1, "")
	require.ErrorIs(t, err, session.ErrEmptyUsername)
	require.Zero(t, verify.calls, "validation precedes any network call")
}
