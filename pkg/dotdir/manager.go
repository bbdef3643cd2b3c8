// Package dotdir resolves the .llmemb/ directory that holds config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the llmemb directory.
	DirName = ".llmemb"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .llmemb/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.llmemb/ dir
//  3. Home ~/.llmemb/ dir
//
// An empty string is returned when none of the above apply.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating llmemb directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if dirExists(filepath.Join(cwd, DirName)) {
		return filepath.Abs(filepath.Join(cwd, DirName))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	if dirExists(filepath.Join(home, DirName)) {
		return filepath.Abs(filepath.Join(home, DirName))
	}

	return "", nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
