package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/config"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/output"
	"vbranch.dev/vbranch/internal/ownership"
)

// Options wires an engine to its collaborators
type Options struct {
	Repo        ObjectLayer
	Store       StateStore
	Credentials CredentialResolver
	Config      *config.RepoConfig
	Splog       *output.Splog
}

// engineImpl implements Engine for one project
type engineImpl struct {
	repo   ObjectLayer
	store  StateStore
	creds  CredentialResolver
	cfg    *config.RepoConfig
	splog  *output.Splog
	mu     sync.RWMutex
	target *git.Target
	// workspace is the target tree plus the committed changes of every
	// active branch
	workspace  string
	registry   *branch.Registry
	generation uint64 // bumped on every swap
}

// NewEngine creates an engine and loads the persisted project state
func NewEngine(opts Options) (Engine, error) {
	if opts.Repo == nil || opts.Store == nil {
		return nil, fmt.Errorf("engine requires a repository and a state store")
	}
	e := &engineImpl{
		repo:  opts.Repo,
		store: opts.Store,
		creds: opts.Credentials,
		cfg:   opts.Config,
		splog: opts.Splog,
	}
	if e.cfg == nil {
		e.cfg = &config.RepoConfig{}
	}
	if e.splog == nil {
		e.splog = output.NewSplog()
	}
	if err := e.load(); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return e, nil
}

func (e *engineImpl) load() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.store.Load()
	if err != nil {
		return err
	}
	reg, err := branch.FromSnapshot(st.Registry)
	if err != nil {
		return err
	}
	e.registry = reg
	e.target = st.Target
	e.workspace = st.WorkspaceTree
	if e.target != nil && e.workspace == "" {
		tree, err := e.repo.CommitTree(e.target.Sha)
		if err != nil {
			return err
		}
		e.workspace = tree
	}
	return nil
}

// snapshot is a consistent copy of the engine state
type snapshot struct {
	target     *git.Target
	workspace  string
	registry   *branch.Registry
	generation uint64
}

func (e *engineImpl) snapshot() snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *engineImpl) snapshotLocked() snapshot {
	var target *git.Target
	if e.target != nil {
		t := *e.target
		target = &t
	}
	return snapshot{
		target:     target,
		workspace:  e.workspace,
		registry:   e.registry.Clone(),
		generation: e.generation,
	}
}

func (s snapshot) requireTarget() (git.Target, error) {
	if s.target == nil {
		return git.Target{}, vberrors.NewInvalidTargetError("", "no target set", nil)
	}
	return *s.target, nil
}

// mutate runs fn against a copy of the engine state under the project lock.
// The copy replaces the live state only after the working directory was
// written, ownership was resolved again and the state was saved.
func (e *engineImpl) mutate(ctx context.Context, op string, fn func(tx *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := newTxn(e, e.snapshotLocked())
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.flush(); err != nil {
		tx.rollback()
		return err
	}
	if tx.target != nil {
		diff, err := e.repo.Diff(ctx, tx.workspace)
		if err != nil {
			tx.rollback()
			return err
		}
		if _, _, err := e.settle(tx.registry, *tx.target, diff); err != nil {
			tx.rollback()
			return err
		}
	}
	if err := tx.registry.CheckInvariant(); err != nil {
		tx.rollback()
		return err
	}
	if err := e.store.Save(tx.state()); err != nil {
		tx.rollback()
		return err
	}
	e.swap(op, tx.snapshot)
	return nil
}

// swap installs new state; the caller holds the write lock
func (e *engineImpl) swap(op string, s snapshot) {
	prev, _ := e.registry.Selected()
	next, _ := s.registry.Selected()
	if prev != next {
		e.splog.Debug("%s: selected for changes %s -> %s", op, displayID(prev), displayID(next))
	}
	e.target = s.target
	e.workspace = s.workspace
	e.registry = s.registry
	e.generation++
}

// settle resolves the diff against the registry and stores the resulting
// ownership on every active branch. Unowned hunks with nowhere to go get a
// new default branch when the config allows it. It reports whether the
// registry changed.
func (e *engineImpl) settle(reg *branch.Registry, target git.Target, diff hunk.Diff) (ownership.Assignment, bool, error) {
	a := resolve(reg, diff)
	dirty := false
	if len(a.Orphans) > 0 && reg.ActiveCount() == 0 && e.cfg.AutoCreate() {
		b, err := reg.Create(branch.CreateOptions{Name: e.cfg.BranchName(), Base: target.Sha})
		if err != nil {
			return ownership.Assignment{}, false, err
		}
		e.splog.Debug("created default branch %q for %d unowned hunks", b.Name, len(a.Orphans))
		dirty = true
		a = resolve(reg, diff)
	}

	for b := range reg.List(branch.FilterActive) {
		claims := a.Claims(b.ID)
		if slices.Equal(claims, b.Ownership) {
			continue
		}
		if err := reg.SetOwnership(b.ID, claims); err != nil {
			return ownership.Assignment{}, false, err
		}
		dirty = true
	}
	for _, p := range a.Placements {
		if p.Reason == ownership.ReasonLocked {
			e.splog.Debug("hunk %s %s locked to %s", p.Hunk.Path, p.Hunk.Header(), p.BranchID)
		}
	}
	return a, dirty, nil
}

func resolve(reg *branch.Registry, diff hunk.Diff) ownership.Assignment {
	selected, _ := reg.Selected()
	return ownership.Resolve(ownership.Input{
		Diff:     diff,
		Branches: reg.ResolverBranches(),
		Locks:    reg.LockIndex(),
		Selected: selected,
	})
}

func displayID(id string) string {
	if id == "" {
		return "none"
	}
	return id
}
