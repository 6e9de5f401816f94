// Package testhelpers provides testing utilities for vbranch: throwaway
// repositories built with go-git, a scene system and custom assertions.
package testhelpers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir  string
	Repo *gogit.Repository
}

// testSignature is the identity used for every test commit
func testSignature() *object.Signature {
	return &object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// NewGitRepo initializes a new repository on branch main in dir.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, err
	}
	cfg.User.Name = "Test User"
	cfg.User.Email = "test@example.com"
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to configure user: %w", err)
	}

	return &GitRepo{Dir: dir, Repo: repo}, nil
}

// WriteFile writes a working directory file, creating parent directories.
func (r *GitRepo) WriteFile(name, content string) error {
	full := filepath.Join(r.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0o644)
}

// ReadFile reads a working directory file.
func (r *GitRepo) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir, filepath.FromSlash(name)))
	return string(data), err
}

// RemoveFile deletes a working directory file.
func (r *GitRepo) RemoveFile(name string) error {
	return os.Remove(filepath.Join(r.Dir, filepath.FromSlash(name)))
}

// FileExists reports whether a working directory file exists.
func (r *GitRepo) FileExists(name string) bool {
	_, err := os.Stat(filepath.Join(r.Dir, filepath.FromSlash(name)))
	return err == nil
}

// CommitAll stages every change and commits it on the current branch.
func (r *GitRepo) CommitAll(message string) (string, error) {
	wt, err := r.Repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to stage: %w", err)
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:            testSignature(),
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// CreateBareRemote creates a bare repository next to the repo and adds it
// as a remote. Returns the path to the bare repository.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	bareDir := r.Dir + "-" + name + ".git"
	if _, err := gogit.PlainInit(bareDir, true); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %w", err)
	}
	if _, err := r.Repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{bareDir},
	}); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}
	return bareDir, nil
}

// AddRemote adds a remote without creating anything behind its URL.
func (r *GitRepo) AddRemote(name, url string) error {
	_, err := r.Repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}})
	return err
}

// SetRemoteRef points refs/remotes/<remote>/<branch> at sha.
func (r *GitRepo) SetRemoteRef(remote, branch, sha string) error {
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, branch), plumbing.NewHash(sha))
	return r.Repo.Storer.SetReference(ref)
}

// GetRef returns the hash a ref points to.
func (r *GitRepo) GetRef(name string) (string, error) {
	ref, err := r.Repo.Reference(plumbing.ReferenceName(name), true)
	if err != nil {
		return "", err
	}
	return ref.Hash().String(), nil
}

// CommitFiles returns the files of a commit keyed by path.
func (r *GitRepo) CommitFiles(sha string) (map[string]string, error) {
	commit, err := r.Repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, err
	}
	return commitFiles(commit)
}

// CommitMessages returns the first-parent messages from sha, newest first.
func (r *GitRepo) CommitMessages(sha string) ([]string, error) {
	commit, err := r.Repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, err
	}
	var out []string
	for {
		out = append(out, commit.Message)
		if commit.NumParents() == 0 {
			return out, nil
		}
		if commit, err = commit.Parent(0); err != nil {
			return nil, err
		}
	}
}

func commitFiles(commit *object.Commit) (map[string]string, error) {
	files, err := commit.Files()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	err = files.ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		out[f.Name] = content
		return nil
	})
	return out, err
}

// RemoteRepo opens a bare remote created by CreateBareRemote.
func RemoteRepo(bareDir string) (*GitRepo, error) {
	repo, err := gogit.PlainOpen(bareDir)
	if err != nil {
		return nil, err
	}
	return &GitRepo{Dir: bareDir, Repo: repo}, nil
}
