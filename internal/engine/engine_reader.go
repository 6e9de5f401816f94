package engine

import (
	"context"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/ownership"
)

// ListBranches diffs the working directory outside the project lock, then
// resolves ownership. The resulting claims are persisted so the next pass
// keeps hunks where they are. When another mutation won the race the
// resolution is redone against the newer state.
func (e *engineImpl) ListBranches(ctx context.Context, filter branch.Filter) (Listing, error) {
	snap := e.snapshot()
	target, err := snap.requireTarget()
	if err != nil {
		return Listing{}, err
	}
	diff, err := e.repo.Diff(ctx, snap.workspace)
	if err != nil {
		return Listing{}, err
	}
	a, dirty, err := e.settle(snap.registry, target, diff)
	if err != nil {
		return Listing{}, err
	}
	if !dirty {
		return buildListing(snap.registry, a, diff, filter), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != snap.generation {
		snap = e.snapshotLocked()
		if target, err = snap.requireTarget(); err != nil {
			return Listing{}, err
		}
		if diff, err = e.repo.Diff(ctx, snap.workspace); err != nil {
			return Listing{}, err
		}
		if a, dirty, err = e.settle(snap.registry, target, diff); err != nil {
			return Listing{}, err
		}
	}
	if dirty {
		if err := snap.registry.CheckInvariant(); err != nil {
			return Listing{}, err
		}
		tx := newTxn(e, snap)
		if err := e.store.Save(tx.state()); err != nil {
			return Listing{}, err
		}
		e.swap("list", snap)
	}
	return buildListing(snap.registry, a, diff, filter), nil
}

func buildListing(reg *branch.Registry, a ownership.Assignment, diff hunk.Diff, filter branch.Filter) Listing {
	out := Listing{Orphans: a.Orphans}
	for b := range reg.List(filter) {
		view := BranchView{VirtualBranch: b}
		if b.Active {
			view.Files = a.Files(b.ID, diff)
			view.Placements = a.Hunks(b.ID)
		}
		out.Branches = append(out.Branches, view)
	}
	return out
}

// GetBranch returns a branch by id, active or stashed
func (e *engineImpl) GetBranch(id string) (branch.VirtualBranch, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Get(id)
}

// Target returns the upstream target, if one is set
func (e *engineImpl) Target() (git.Target, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.target == nil {
		return git.Target{}, false
	}
	return *e.target, true
}
