package git

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ReadWorktreeFile returns the contents of a working directory file and
// whether it exists
func (r *Repository) ReadWorktreeFile(name string) (string, bool, error) {
	data, err := util.ReadFile(r.fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), true, nil
}

// WriteWorktreeFile writes a working directory file, creating parent directories
func (r *Repository) WriteWorktreeFile(name, content string) error {
	if dir := path.Dir(name); dir != "." {
		if err := r.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	mode := os.FileMode(0o644)
	if info, err := r.fs.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}
	if err := util.WriteFile(r.fs, name, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// RemoveWorktreeFile deletes a working directory file. Missing files are ignored.
func (r *Repository) RemoveWorktreeFile(name string) error {
	if err := r.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// worktreeFiles lists the working directory files that are not ignored,
// as slash-separated paths
func (r *Repository) worktreeFiles() ([]string, error) {
	patterns, err := gitignore.ReadPatterns(r.fs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore patterns: %w", err)
	}
	matcher := gitignore.NewMatcher(patterns)

	var files []string
	err = util.Walk(r.fs, "", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name = filepath.ToSlash(strings.TrimPrefix(name, "/"))
		if name == "" || name == "." {
			return nil
		}
		if info.IsDir() {
			if info.Name() == gogit.GitDirName || matcher.Match(strings.Split(name, "/"), true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if matcher.Match(strings.Split(name, "/"), false) {
			return nil
		}
		files = append(files, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk working directory: %w", err)
	}
	return files, nil
}
