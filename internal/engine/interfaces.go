package engine

import (
	"context"

	"vbranch.dev/vbranch/internal/credentials"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/state"
)

// DiffSource computes the uncommitted changes of the working directory
// against a tree
type DiffSource interface {
	Diff(ctx context.Context, treeSha string) (hunk.Diff, error)
}

// ObjectLayer is the git object store, ref and working directory access the
// engine drives. *git.Repository implements it.
type ObjectLayer interface {
	DiffSource

	// Trees and commits
	CommitTree(sha string) (string, error)
	TreeEntries(treeSha string) (map[string]git.Entry, error)
	ReadFile(treeSha, path string) (string, bool, error)
	WriteTree(treeSha string, edits map[string]*string) (string, error)
	CreateCommit(ctx context.Context, treeSha, parentSha, message string) (string, error)

	// Working directory
	ReadWorktreeFile(name string) (string, bool, error)
	WriteWorktreeFile(name, content string) error
	RemoveWorktreeFile(name string) error

	// Refs
	ResolveTarget(ref string) (git.Target, error)
	RefExists(name string) bool
	ResolveRef(name string) (string, error)
	UpdateRef(name, sha string) error
	DeleteRef(name string) error
	LoadRef(name, targetSha string) (git.History, error)

	// Remotes
	Push(ctx context.Context, remoteName string, endpoints []git.Endpoint, src, dst string) error
	Fetch(ctx context.Context, remoteName string, endpoints []git.Endpoint) error
}

// StateStore persists the project state
type StateStore interface {
	Load() (state.State, error)
	Save(st state.State) error
}

// CredentialResolver produces the ordered credential attempts for a remote
type CredentialResolver interface {
	Help(ctx context.Context, remoteURL string, opts credentials.Options) ([]credentials.Attempt, error)
}

var (
	_ ObjectLayer        = (*git.Repository)(nil)
	_ StateStore         = (*state.Store)(nil)
	_ CredentialResolver = (*credentials.Helper)(nil)
)
