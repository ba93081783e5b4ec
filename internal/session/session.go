// Package session holds who the participant is. The identity is written
// only by the join flow and handed explicitly to everything that scopes
// a query by it; nothing reads it ad hoc from ambient storage.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/openjudge/arena/api"
)

// Identity is the participant's display name and active contest.
type Identity struct {
	Username  string `toml:"username"`
	ContestID int64  `toml:"contest_id"`
}

func (id Identity) Valid() bool {
	return id.Username != "" && id.ContestID != 0
}

// ContestVerifier is the single judge operation joining needs.
type ContestVerifier interface {
	Contest(ctx context.Context, contestID int64) (*api.Contest, error)
}

var ErrEmptyUsername = errors.New("username must not be empty")

// Join verifies that the contest exists, then persists the identity.
// On any failure nothing is persisted and the previous session state is
// left untouched.
func Join(ctx context.Context, verify ContestVerifier, store *Store, contestID int64, username string) (Identity, error) {
	if username == "" {
		return Identity{}, ErrEmptyUsername
	}

	if _, err := verify.Contest(ctx, contestID); err != nil {
		return Identity{}, fmt.Errorf("join contest %d: %w", contestID, err)
	}

	id := Identity{Username: username, ContestID: contestID}
	if err := store.Save(id); err != nil {
		return Identity{}, fmt.Errorf("persist session: %w", err)
	}
	return id, nil
}
