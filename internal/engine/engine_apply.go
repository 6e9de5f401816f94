package engine

import (
	"context"
	"fmt"
	"strings"

	"vbranch.dev/vbranch/internal/branch"
)

const (
	headsPrefix     = "refs/heads/"
	vbranchesPrefix = "refs/vbranches/"
	wipMessage      = "WIP"
)

// ConvertToRealBranch unapplies a branch. Uncommitted hunks it owns are first
// saved as a WIP commit, the head is stored under refs/heads/<slug> and the
// branch's changes leave the working directory. A stashed record keeps the
// ref for list --all.
func (e *engineImpl) ConvertToRealBranch(ctx context.Context, id string) (string, error) {
	var ref string
	err := e.mutate(ctx, "unapply", func(tx *txn) error {
		b, err := tx.activeBranch(id)
		if err != nil {
			return err
		}
		files, diff, err := tx.owned(ctx, id)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			if _, err := tx.commitOwned(ctx, b, files, diff, wipMessage); err != nil {
				return err
			}
			if b, err = tx.registry.Get(id); err != nil {
				return err
			}
		}

		ref = tx.freeRef(b)
		tx.updateRef(ref, b.Head())

		stashed, err := tx.registry.Deactivate(id)
		if err != nil {
			return err
		}
		if err := tx.registry.SetStashedRef(id, ref); err != nil {
			return err
		}
		return tx.removeCommitted(stashed)
	})
	if err != nil {
		return "", err
	}
	e.splog.Debug("unapplied branch %s into %s", id, ref)
	return ref, nil
}

// freeRef returns refs/heads/<slug>, suffixed until it names no existing ref.
// A branch converted before reuses its own ref.
func (tx *txn) freeRef(b branch.VirtualBranch) string {
	if b.Ref != "" && strings.HasPrefix(b.Ref, headsPrefix) {
		return b.Ref
	}
	base := headsPrefix + branch.Slug(b.Name)
	ref := base
	for i := 1; tx.refExists(ref); i++ {
		ref = fmt.Sprintf("%s-%d", base, i)
	}
	return ref
}

// CreateBranchFromRef applies a real branch. Its history back to the target
// is replayed onto the workspace tree and the working directory, and the
// lines it changed become the lock surface of its head commit.
func (e *engineImpl) CreateBranchFromRef(ctx context.Context, ref string) (branch.VirtualBranch, error) {
	var created branch.VirtualBranch
	err := e.mutate(ctx, "apply", func(tx *txn) error {
		target, err := tx.requireTarget()
		if err != nil {
			return err
		}
		h, err := e.repo.LoadRef(ref, target.Sha)
		if err != nil {
			return err
		}
		headTree, err := e.repo.CommitTree(h.Head)
		if err != nil {
			return err
		}
		edits, err := tx.moveChanges(h.BaseTree, headTree)
		if err != nil {
			return err
		}
		changes, err := tx.advanceWorkspace(edits)
		if err != nil {
			return err
		}

		commits := make([]branch.Commit, 0, len(h.Commits))
		for _, c := range h.Commits {
			commits = append(commits, branch.Commit{ID: c.Sha, Message: strings.TrimSpace(c.Message)})
		}
		if len(commits) > 0 {
			commits[0].Ranges = committedRanges(changes)
		}

		created, err = tx.registry.Activate(branch.ActivateOptions{
			Name:    refBranchName(ref),
			Base:    h.Base,
			Ref:     ref,
			Commits: commits,
		})
		return err
	})
	if err != nil {
		return branch.VirtualBranch{}, err
	}
	e.splog.Debug("applied %s as branch %s", ref, created.ID)
	return e.GetBranch(created.ID)
}

// refBranchName derives a branch name from a ref
func refBranchName(ref string) string {
	if name, ok := strings.CutPrefix(ref, headsPrefix); ok {
		return name
	}
	if rest, ok := strings.CutPrefix(ref, "refs/remotes/"); ok {
		if _, name, ok := strings.Cut(rest, "/"); ok {
			return name
		}
	}
	if name, ok := strings.CutPrefix(ref, vbranchesPrefix); ok {
		return name
	}
	return ref
}
