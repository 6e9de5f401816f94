package engine

import (
	"maps"
	"slices"

	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/lock"
	"vbranch.dev/vbranch/internal/state"
)

// txn is one mutation in progress: a private copy of the engine state plus
// the working directory edits it wants to make
type txn struct {
	snapshot
	e         *engineImpl
	pending   map[string]*string // working directory edits, nil removes
	originals map[string]*string // content before flush, for rollback
	refs      map[string]string  // ref updates, written by flush
	prevRefs  map[string]string  // ref targets before flush, "" when absent
}

func newTxn(e *engineImpl, s snapshot) *txn {
	return &txn{
		snapshot:  s,
		e:         e,
		pending:   make(map[string]*string),
		originals: make(map[string]*string),
		refs:      make(map[string]string),
		prevRefs:  make(map[string]string),
	}
}

func (tx *txn) state() state.State {
	return state.State{
		Target:        tx.target,
		WorkspaceTree: tx.workspace,
		Registry:      tx.registry.Snapshot(),
	}
}

// readWorktree returns a working directory file as the transaction sees it
func (tx *txn) readWorktree(path string) (*string, error) {
	if content, ok := tx.pending[path]; ok {
		return content, nil
	}
	content, exists, err := tx.e.repo.ReadWorktreeFile(path)
	if err != nil || !exists {
		return nil, err
	}
	return &content, nil
}

func (tx *txn) writeWorktree(path string, content *string) {
	tx.pending[path] = content
}

// updateRef queues a ref update until the transaction flushes
func (tx *txn) updateRef(name, sha string) {
	tx.refs[name] = sha
}

// refExists reports whether a ref exists once the transaction flushed
func (tx *txn) refExists(name string) bool {
	if _, ok := tx.refs[name]; ok {
		return true
	}
	return tx.e.repo.RefExists(name)
}

// readTree returns a file of a tree, nil when absent
func (tx *txn) readTree(treeSha, path string) (*string, error) {
	content, exists, err := tx.e.repo.ReadFile(treeSha, path)
	if err != nil || !exists {
		return nil, err
	}
	return &content, nil
}

// flush writes the pending edits to the working directory, then the queued refs
func (tx *txn) flush() error {
	for _, path := range slices.Sorted(maps.Keys(tx.pending)) {
		original, err := tx.readOriginal(path)
		if err != nil {
			return err
		}
		tx.originals[path] = original
		if err := tx.writeFile(path, tx.pending[path]); err != nil {
			return err
		}
	}
	if len(tx.pending) > 0 {
		tx.e.splog.Debug("rewrote %d working directory files", len(tx.pending))
	}
	for _, name := range slices.Sorted(maps.Keys(tx.refs)) {
		prev := ""
		if tx.e.repo.RefExists(name) {
			sha, err := tx.e.repo.ResolveRef(name)
			if err != nil {
				return err
			}
			prev = sha
		}
		tx.prevRefs[name] = prev
		if err := tx.e.repo.UpdateRef(name, tx.refs[name]); err != nil {
			return err
		}
	}
	return nil
}

func (tx *txn) readOriginal(path string) (*string, error) {
	content, exists, err := tx.e.repo.ReadWorktreeFile(path)
	if err != nil || !exists {
		return nil, err
	}
	return &content, nil
}

func (tx *txn) writeFile(path string, content *string) error {
	if content == nil {
		return tx.e.repo.RemoveWorktreeFile(path)
	}
	return tx.e.repo.WriteWorktreeFile(path, *content)
}

// rollback restores every file and ref flush touched
func (tx *txn) rollback() {
	for path, original := range tx.originals {
		if err := tx.writeFile(path, original); err != nil {
			tx.e.splog.Warn("failed to restore %s: %v", path, err)
		}
	}
	for name, prev := range tx.prevRefs {
		var err error
		if prev == "" {
			err = tx.e.repo.DeleteRef(name)
		} else {
			err = tx.e.repo.UpdateRef(name, prev)
		}
		if err != nil {
			tx.e.splog.Warn("failed to restore %s: %v", name, err)
		}
	}
}

// advanceWorkspace writes the workspace tree with edits applied and remaps
// the ownership and lock ranges of every active branch into the new tree.
// It returns the line changes per file.
func (tx *txn) advanceWorkspace(edits map[string]*string) (map[string][]hunk.Hunk, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	changes := make(map[string][]hunk.Hunk, len(edits))
	for path, next := range edits {
		prev, err := tx.readTree(tx.workspace, path)
		if err != nil {
			return nil, err
		}
		if c := hunk.Changes(path, deref(prev), deref(next)); len(c) > 0 {
			changes[path] = c
		}
	}
	tree, err := tx.e.repo.WriteTree(tx.workspace, edits)
	if err != nil {
		return nil, err
	}
	tx.workspace = tree
	tx.registry.Remap(changes)
	return changes, nil
}

// changedPaths lists the files that differ between two trees
func (tx *txn) changedPaths(fromTree, toTree string) ([]string, error) {
	from, err := tx.e.repo.TreeEntries(fromTree)
	if err != nil {
		return nil, err
	}
	to, err := tx.e.repo.TreeEntries(toTree)
	if err != nil {
		return nil, err
	}
	var out []string
	for path, e := range from {
		if other, ok := to[path]; !ok || other.Hash != e.Hash {
			out = append(out, path)
		}
	}
	for path := range to {
		if _, ok := from[path]; !ok {
			out = append(out, path)
		}
	}
	slices.Sort(out)
	return out, nil
}

// moveChanges replays the change between two trees onto the workspace tree
// and the working directory. It returns the workspace tree edits.
func (tx *txn) moveChanges(fromTree, toTree string) (map[string]*string, error) {
	paths, err := tx.changedPaths(fromTree, toTree)
	if err != nil {
		return nil, err
	}
	edits := make(map[string]*string, len(paths))
	for _, path := range paths {
		from, err := tx.readTree(fromTree, path)
		if err != nil {
			return nil, err
		}
		to, err := tx.readTree(toTree, path)
		if err != nil {
			return nil, err
		}

		current, err := tx.readTree(tx.workspace, path)
		if err != nil {
			return nil, err
		}
		next, err := transferFile(from, to, current)
		if err != nil {
			return nil, vberrors.NewGitOperationError("move changes of "+path, err)
		}
		edits[path] = next

		onDisk, err := tx.readWorktree(path)
		if err != nil {
			return nil, err
		}
		nextOnDisk, err := transferFile(from, to, onDisk)
		if err != nil {
			return nil, vberrors.NewGitOperationError("move changes of "+path, err)
		}
		tx.writeWorktree(path, nextOnDisk)
	}
	return edits, nil
}

// transferFile moves cur along the change from -> to. nil content is an
// absent file.
func transferFile(from, to, cur *string) (*string, error) {
	if sameContent(cur, from) {
		return to, nil
	}
	if sameContent(from, to) {
		return cur, nil
	}
	out, err := hunk.Transfer(deref(from), deref(to), deref(cur))
	if err != nil {
		return nil, err
	}
	if to == nil && out == "" {
		return nil, nil
	}
	return &out, nil
}

// committedRanges returns the lines changes produced, in the coordinates of
// the new workspace tree. Pure deletions lock the lines around them.
func committedRanges(changes map[string][]hunk.Hunk) []lock.FileRange {
	var out []lock.FileRange
	for _, path := range slices.Sorted(maps.Keys(changes)) {
		for _, c := range changes[path] {
			rng := c.NewRange()
			if rng.IsEmpty() {
				rng = hunk.LineRange{Start: max(c.NewStart-1, 1), End: max(c.NewStart, 1)}
			}
			out = append(out, lock.FileRange{Path: path, Range: rng})
		}
	}
	return out
}

func sameContent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
