// Package xdg resolves the XDG Base Directory paths this client needs
// for its persisted session state.
package xdg

import (
	"os"
	"path/filepath"
)

// StateHome returns the base directory for user-specific state data
// ($XDG_STATE_HOME, defaulting to ~/.local/state).
func StateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".local", "state")
}

// ConfigHome returns the base directory for user-specific configuration
// ($XDG_CONFIG_HOME, defaulting to ~/.config).
func ConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(homeDir(), ".config")
}

// AppStateDir returns the application-specific state directory.
func AppStateDir(appName string) string {
	return filepath.Join(StateHome(), appName)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
		if home == "" {
			home = "/tmp"
		}
	}
	return home
}
