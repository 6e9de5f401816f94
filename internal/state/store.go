// Package state persists the vbranch project state: the target, the
// workspace tree and the virtual branch registry.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/git"
)

const (
	stateDir      = "vbranch"
	stateFileName = "virtual_branches.yaml"
)

// State is everything vbranch remembers about a project between runs
type State struct {
	Target *git.Target `yaml:"target,omitempty"`
	// WorkspaceTree is the target tree plus the committed changes of every
	// active branch. Uncommitted hunks are diffed against it.
	WorkspaceTree string          `yaml:"workspaceTree,omitempty"`
	Registry      branch.Snapshot `yaml:"registry"`
}

// Store reads and writes the state file
type Store struct {
	path string
}

// NewStore creates a store under the repository .git directory
func NewStore(gitDir string) *Store {
	return &Store{path: filepath.Join(gitDir, stateDir, stateFileName)}
}

// Path returns the state file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the state. A missing file yields the zero state.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read state: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse state %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes the state atomically: a reader sees either the previous file
// or the new one
func (s *Store) Save(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, stateFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}
