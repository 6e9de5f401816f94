package engine

import (
	"context"
	"maps"
	"slices"

	"vbranch.dev/vbranch/internal/branch"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/hunk"
)

// CreateCommit commits every hunk the branch owns. The owned lines become
// the commit's lock surface and the hunks leave the uncommitted view.
// Committing never changes the selection.
func (e *engineImpl) CreateCommit(ctx context.Context, id, message string) (string, error) {
	var sha string
	err := e.mutate(ctx, "commit", func(tx *txn) error {
		b, err := tx.activeBranch(id)
		if err != nil {
			return err
		}
		files, diff, err := tx.owned(ctx, id)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return vberrors.NewNoChangesError(b.Name)
		}
		sha, err = tx.commitOwned(ctx, b, files, diff, message)
		return err
	})
	if err != nil {
		return "", err
	}
	e.splog.Debug("committed %s on branch %s", sha, id)
	return sha, nil
}

// commitOwned writes a commit of files on top of the branch head, then moves
// the committed lines from the uncommitted view into the workspace tree
func (tx *txn) commitOwned(ctx context.Context, b branch.VirtualBranch, files, diff hunk.Diff, message string) (string, error) {
	workspaceEdits := make(map[string]*string, len(files))
	for _, fd := range files {
		current, err := tx.readTree(tx.workspace, fd.Path)
		if err != nil {
			return "", err
		}
		full, _ := diff.Find(fd.Path)
		if fd.Status == hunk.StatusDeleted && len(full.Hunks) == len(fd.Hunks) {
			workspaceEdits[fd.Path] = nil
			continue
		}
		next, err := hunk.Apply(deref(current), fd.Hunks)
		if err != nil {
			return "", vberrors.NewGitOperationError("apply hunks to "+fd.Path, err)
		}
		workspaceEdits[fd.Path] = &next
	}

	parent := b.Head()
	headTree, err := tx.e.repo.CommitTree(parent)
	if err != nil {
		return "", err
	}
	headEdits := make(map[string]*string, len(workspaceEdits))
	for _, path := range slices.Sorted(maps.Keys(workspaceEdits)) {
		from, err := tx.readTree(tx.workspace, path)
		if err != nil {
			return "", err
		}
		onHead, err := tx.readTree(headTree, path)
		if err != nil {
			return "", err
		}
		next, err := transferFile(from, workspaceEdits[path], onHead)
		if err != nil {
			return "", vberrors.NewGitOperationError("apply hunks to branch head "+path, err)
		}
		headEdits[path] = next
	}
	tree, err := tx.e.repo.WriteTree(headTree, headEdits)
	if err != nil {
		return "", err
	}
	sha, err := tx.e.repo.CreateCommit(ctx, tree, parent, message)
	if err != nil {
		return "", err
	}

	changes, err := tx.advanceWorkspace(workspaceEdits)
	if err != nil {
		return "", err
	}
	if err := tx.registry.AddCommit(b.ID, branch.Commit{
		ID:      sha,
		Message: message,
		Ranges:  committedRanges(changes),
	}); err != nil {
		return "", err
	}
	return sha, nil
}
