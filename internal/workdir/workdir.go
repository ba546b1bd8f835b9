// Package workdir resolves the directories voiceover keeps its files in.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// AuthFile is the name of the file-backed token store inside the state dir.
const AuthFile = "auth.json"

// Root returns the base directory for all voiceover files.
// The path is expanded at runtime to resolve to:
//
//	$HOME/.voiceover
func Root() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".voiceover"), nil
}

// StateDir returns override when set, otherwise <root>/state.
func StateDir(override string) (string, error) {
	return subdir(override, "state")
}

// DownloadDir returns override when set, otherwise <root>/downloads.
func DownloadDir(override string) (string, error) {
	return subdir(override, "downloads")
}

// AuthPath returns the path of the file-backed token store.
func AuthPath(stateOverride string) (string, error) {
	dir, err := StateDir(stateOverride)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AuthFile), nil
}

// LogPath returns the path of the TUI's log file.
func LogPath(stateOverride string) (string, error) {
	dir, err := StateDir(stateOverride)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "voiceover.log"), nil
}

// Prep ensures that dir exists on fs.
func Prep(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}

func subdir(override, name string) (string, error) {
	if override != "" {
		return override, nil
	}

	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
