package git

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"

	"vbranch.dev/vbranch/internal/hunk"
)

// Diff compares the working directory against a tree and returns the
// changed files with zero-context hunks, sorted by path. Files present in the
// tree are compared even when ignored.
func (r *Repository) Diff(ctx context.Context, treeSha string) (hunk.Diff, error) {
	entries, err := r.TreeEntries(treeSha)
	if err != nil {
		return nil, err
	}
	files, err := r.worktreeFiles()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		seen[f] = struct{}{}
	}
	for p := range entries {
		seen[p] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out hunk.Diff
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fd, changed, err := r.diffFile(p, entries)
		if err != nil {
			return nil, err
		}
		if changed {
			out = append(out, fd)
		}
	}
	return out, nil
}

func (r *Repository) diffFile(p string, entries map[string]Entry) (hunk.FileDiff, bool, error) {
	entry, inTree := entries[p]
	if inTree && entry.Mode == filemode.Submodule {
		return hunk.FileDiff{}, false, nil
	}
	current, onDisk, err := r.ReadWorktreeFile(p)
	if err != nil {
		return hunk.FileDiff{}, false, err
	}

	switch {
	case !inTree && !onDisk:
		return hunk.FileDiff{}, false, nil
	case !inTree:
		return hunk.Compute(p, "", current, hunk.StatusAdded), true, nil
	case !onDisk:
		old, err := r.ReadBlob(entry.Hash)
		if err != nil {
			return hunk.FileDiff{}, false, err
		}
		return hunk.Compute(p, old, "", hunk.StatusDeleted), true, nil
	}

	if plumbing.ComputeHash(plumbing.BlobObject, []byte(current)) == entry.Hash {
		return hunk.FileDiff{}, false, nil
	}
	old, err := r.ReadBlob(entry.Hash)
	if err != nil {
		return hunk.FileDiff{}, false, err
	}
	fd := hunk.Compute(p, old, current, hunk.StatusModified)
	return fd, len(fd.Hunks) > 0, nil
}
