// Package lock implements the commit history index: the line ranges each
// virtual branch has committed, per file, used to lock hunks to their branch.
package lock

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"

	"vbranch.dev/vbranch/internal/hunk"
)

// FileRange is a committed line range of one file
type FileRange struct {
	Path  string         `yaml:"path"`
	Range hunk.LineRange `yaml:"range"`
}

// entry is one committed range owned by a branch
type entry struct {
	branchID string
	rng      hunk.LineRange
}

// Index answers "which branch committed lines overlapping this hunk".
// For every file it keeps a tree map keyed by range start line.
// Not safe for concurrent mutation; the engine builds one per resolution.
type Index struct {
	files map[string]*treemap.Map
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{files: make(map[string]*treemap.Map)}
}

// Add records that branchID committed rng in path
func (x *Index) Add(branchID, path string, rng hunk.LineRange) {
	if rng.IsEmpty() {
		return
	}
	m, ok := x.files[path]
	if !ok {
		m = treemap.NewWithIntComparator()
		x.files[path] = m
	}
	var entries []entry
	if v, found := m.Get(rng.Start); found {
		entries = v.([]entry)
	}
	m.Put(rng.Start, append(entries, entry{branchID: branchID, rng: rng}))
}

// AddSurface records every range of a branch's lock surface
func (x *Index) AddSurface(branchID string, surface []FileRange) {
	for _, fr := range surface {
		x.Add(branchID, fr.Path, fr.Range)
	}
}

// Owner returns the branch whose committed ranges overlap rng in path.
// The overlapping range with the lowest start line wins; ranges with the same
// start are ordered by insertion.
func (x *Index) Owner(path string, rng hunk.LineRange) (string, bool) {
	m, ok := x.files[path]
	if !ok || rng.IsEmpty() {
		return "", false
	}
	it := m.Iterator()
	for it.Next() {
		if it.Key().(int) > rng.End {
			break
		}
		for _, e := range it.Value().([]entry) {
			if e.rng.Overlaps(rng) {
				return e.branchID, true
			}
		}
	}
	return "", false
}

// Surface returns the lock surface of a branch, sorted by path and line
func (x *Index) Surface(branchID string) []FileRange {
	var out []FileRange
	for path, m := range x.files {
		it := m.Iterator()
		for it.Next() {
			for _, e := range it.Value().([]entry) {
				if e.branchID == branchID {
					out = append(out, FileRange{Path: path, Range: e.rng})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Range.Start < out[j].Range.Start
	})
	return out
}

// Len returns the number of indexed ranges
func (x *Index) Len() int {
	n := 0
	for _, m := range x.files {
		for _, v := range m.Values() {
			n += len(v.([]entry))
		}
	}
	return n
}

// Remap translates ranges through line changes of the file they belong to.
// Ranges of other files are returned unchanged.
func Remap(ranges []FileRange, changes map[string][]hunk.Hunk) []FileRange {
	if len(changes) == 0 {
		return ranges
	}
	out := make([]FileRange, 0, len(ranges))
	for _, fr := range ranges {
		if c, ok := changes[fr.Path]; ok {
			fr.Range = hunk.MapRange(fr.Range, c)
		}
		out = append(out, fr)
	}
	return out
}
