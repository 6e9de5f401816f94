// Package git is the object layer of vbranch.
//
// It wraps go-git and provides a Go-friendly interface for:
//   - Workspace diffs (worktree against a tree, as zero-context hunks)
//   - Tree and commit writing without touching the index
//   - Ref management and first-parent history loading
//   - Remote operations (push, fetch) with pluggable authentication
//
// This package should be the only place where git commands are executed.
package git
