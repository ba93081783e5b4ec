package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/openjudge/arena/internal/xdg"
)

const stateFileName = "session.toml"

// Store persists the last-joined identity so a later run can prefill it.
type Store struct {
	path string
}

// NewStore places the session file under the XDG state dir for the app.
func NewStore(appName string) *Store {
	return &Store{path: filepath.Join(xdg.AppStateDir(appName), stateFileName)}
}

// NewStoreAt uses an explicit file path. Tests use this.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted identity. A missing file is not an error; it
// yields a zero Identity, meaning no prior session.
func (s *Store) Load() (Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Identity{}, nil
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read session file: %w", err)
	}

	var id Identity
	if err := toml.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parse session file: %w", err)
	}
	return id, nil
}

func (s *Store) Save(id Identity) error {
	data, err := toml.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
