package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	vberrors "vbranch.dev/vbranch/internal/errors"
)

const (
	fallbackName  = "vbranch"
	fallbackEmail = "vbranch@localhost"
)

// Repository wraps a go-git repository with a working tree
type Repository struct {
	repo   *gogit.Repository
	fs     billy.Filesystem
	root   string
	runner *CommandRunner
}

// Open opens the repository containing path
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	return &Repository{
		repo:   repo,
		fs:     worktree.Filesystem,
		root:   root,
		runner: NewCommandRunner(root),
	}, nil
}

// Root returns the working directory root
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the path of the .git directory
func (r *Repository) GitDir() string {
	return filepath.Join(r.root, gogit.GitDirName)
}

// Runner returns a git CLI runner bound to the working directory
func (r *Repository) Runner() *CommandRunner {
	return r.runner
}

// Signature returns the committer identity from git config, or a fallback
// identity when none is configured
func (r *Repository) Signature() object.Signature {
	sig := object.Signature{Name: fallbackName, Email: fallbackEmail}
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func gitErr(op string, err error) error {
	return vberrors.NewGitOperationError(op, err)
}
