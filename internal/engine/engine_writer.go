package engine

import (
	"context"
	"fmt"

	"vbranch.dev/vbranch/internal/branch"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/hunk"
)

// SetTarget replaces the upstream target. The workspace tree restarts from
// the target tree and every claim and lock derived from the old base is
// dropped; the next read resolves everything again.
func (e *engineImpl) SetTarget(ctx context.Context, ref string) (git.Target, error) {
	var target git.Target
	err := e.mutate(ctx, "set target", func(tx *txn) error {
		t, err := e.repo.ResolveTarget(ref)
		if err != nil {
			return err
		}
		tree, err := e.repo.CommitTree(t.Sha)
		if err != nil {
			return vberrors.NewInvalidTargetError(ref, "cannot read target commit", err)
		}
		tx.target = &t
		tx.workspace = tree
		tx.registry.ResetDerived(t.Sha)
		target = t
		return nil
	})
	if err != nil {
		return git.Target{}, err
	}
	e.splog.Debug("target set to %s at %s", target.Ref(), target.Sha)
	return target, nil
}

// CreateBranch adds a new active branch based on the target
func (e *engineImpl) CreateBranch(ctx context.Context, opts CreateOptions) (branch.VirtualBranch, error) {
	var created branch.VirtualBranch
	err := e.mutate(ctx, "create branch", func(tx *txn) error {
		target, err := tx.requireTarget()
		if err != nil {
			return err
		}
		name := opts.Name
		if name == "" {
			name = e.cfg.BranchName()
		}
		b, err := tx.registry.Create(branch.CreateOptions{
			Name:               name,
			SelectedForChanges: opts.SelectedForChanges,
			Ownership:          opts.Ownership,
			Base:               target.Sha,
		})
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return branch.VirtualBranch{}, err
	}
	return e.GetBranch(created.ID)
}

// UpdateBranch renames, reselects or re-owns an active branch
func (e *engineImpl) UpdateBranch(ctx context.Context, id string, opts UpdateOptions) (branch.VirtualBranch, error) {
	err := e.mutate(ctx, "update branch", func(tx *txn) error {
		if _, err := tx.requireTarget(); err != nil {
			return err
		}
		if _, err := tx.activeBranch(id); err != nil {
			return err
		}
		_, err := tx.registry.Update(id, branch.UpdateOptions{
			Name:               opts.Name,
			SelectedForChanges: opts.SelectedForChanges,
			Ownership:          opts.Ownership,
		})
		return err
	})
	if err != nil {
		return branch.VirtualBranch{}, err
	}
	return e.GetBranch(id)
}

// DeleteBranch removes a branch together with its changes. The working
// directory loses both the branch's uncommitted hunks and its commits.
// Deleting a stashed branch only forgets it.
func (e *engineImpl) DeleteBranch(ctx context.Context, id string) error {
	return e.mutate(ctx, "delete branch", func(tx *txn) error {
		b, err := tx.registry.Get(id)
		if err != nil {
			return err
		}
		if !b.Active {
			return tx.registry.Delete(id)
		}
		if err := tx.revertUncommitted(ctx, b.ID); err != nil {
			return err
		}
		if err := tx.registry.Delete(id); err != nil {
			return err
		}
		if err := tx.removeCommitted(b); err != nil {
			return err
		}
		e.splog.Debug("deleted branch %q (%s)", b.Name, b.ID)
		return nil
	})
}

// activeBranch returns an applied branch or NotFound
func (tx *txn) activeBranch(id string) (branch.VirtualBranch, error) {
	b, err := tx.registry.Get(id)
	if err != nil {
		return branch.VirtualBranch{}, err
	}
	if !b.Active {
		return branch.VirtualBranch{}, fmt.Errorf("branch %q is not applied: %w", b.Name, vberrors.NewBranchNotFoundError(id))
	}
	return b, nil
}

// owned resolves the current diff and returns the files of one branch along
// with the full diff
func (tx *txn) owned(ctx context.Context, id string) (files, diff hunk.Diff, err error) {
	target, err := tx.requireTarget()
	if err != nil {
		return nil, nil, err
	}
	diff, err = tx.e.repo.Diff(ctx, tx.workspace)
	if err != nil {
		return nil, nil, err
	}
	a, _, err := tx.e.settle(tx.registry, target, diff)
	if err != nil {
		return nil, nil, err
	}
	return a.Files(id, diff), diff, nil
}

// revertUncommitted restores the working directory lines behind the hunks
// a branch owns
func (tx *txn) revertUncommitted(ctx context.Context, id string) error {
	files, diff, err := tx.owned(ctx, id)
	if err != nil {
		return err
	}
	for _, fd := range files {
		current, err := tx.readWorktree(fd.Path)
		if err != nil {
			return err
		}
		reverted, err := hunk.Revert(deref(current), fd.Hunks)
		if err != nil {
			return vberrors.NewGitOperationError("revert "+fd.Path, err)
		}
		full, _ := diff.Find(fd.Path)
		if fd.Status == hunk.StatusAdded && len(full.Hunks) == len(fd.Hunks) {
			tx.writeWorktree(fd.Path, nil)
			continue
		}
		tx.writeWorktree(fd.Path, &reverted)
	}
	return nil
}

// removeCommitted takes the committed changes of b out of the workspace tree
// and the working directory. b must already have left the active set so its
// own ranges are not remapped.
func (tx *txn) removeCommitted(b branch.VirtualBranch) error {
	if len(b.Commits) == 0 {
		return nil
	}
	headTree, err := tx.e.repo.CommitTree(b.Head())
	if err != nil {
		return err
	}
	baseTree, err := tx.e.repo.CommitTree(b.Base)
	if err != nil {
		return err
	}
	edits, err := tx.moveChanges(headTree, baseTree)
	if err != nil {
		return err
	}
	_, err = tx.advanceWorkspace(edits)
	return err
}
