// Package hunk models uncommitted changes as hunks: contiguous changed line
// ranges of one file, computed between the workspace tree and the working directory.
package hunk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// LineRange is an inclusive, 1-indexed range of lines.
// An empty range (End == Start-1) marks an insertion point before line Start.
type LineRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// NewLineRange returns the range covering count lines from start
func NewLineRange(start, count int) LineRange {
	return LineRange{Start: start, End: start + count - 1}
}

// Len returns the number of lines in the range
func (r LineRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// IsEmpty reports whether the range covers no lines
func (r LineRange) IsEmpty() bool {
	return r.End < r.Start
}

// Overlaps reports whether two non-empty ranges share at least one line
func (r LineRange) Overlaps(o LineRange) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Start <= o.End && o.Start <= r.End
}

func (r LineRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// ParseLineRange parses the "start-end" form produced by String
func ParseLineRange(s string) (LineRange, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return LineRange{}, fmt.Errorf("invalid line range %q", s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid line range %q: %w", s, err)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return LineRange{}, fmt.Errorf("invalid line range %q: %w", s, err)
	}
	if start < 0 || end < start-1 {
		return LineRange{}, fmt.Errorf("invalid line range %q", s)
	}
	return LineRange{Start: start, End: end}, nil
}

// Hunk represents a single contiguous change.
// Old coordinates refer to the workspace tree, new coordinates to the working file.
type Hunk struct {
	Path     string
	OldStart int      // First replaced line, or the line the insertion precedes
	OldCount int      // Number of lines removed
	NewStart int      // First added line, or the line following the deletion
	NewCount int      // Number of lines added
	Removed  []string // Removed lines, terminators included
	Added    []string // Added lines, terminators included
	Hash     string   // Content hash of the diff body
}

// OldRange returns the range the hunk replaces in the workspace tree.
// It identifies the hunk across recomputations.
func (h Hunk) OldRange() LineRange {
	return NewLineRange(h.OldStart, h.OldCount)
}

// NewRange returns the range the hunk occupies in the working file
func (h Hunk) NewRange() LineRange {
	return NewLineRange(h.NewStart, h.NewCount)
}

// TouchRange returns the workspace lines the hunk touches for lock detection.
// Pure insertions touch both lines adjacent to the insertion point.
func (h Hunk) TouchRange() LineRange {
	if h.OldCount > 0 {
		return h.OldRange()
	}
	start := h.OldStart - 1
	if start < 1 {
		start = 1
	}
	end := h.OldStart
	if end < start {
		end = start
	}
	return LineRange{Start: start, End: end}
}

// Delta returns the change in line count the hunk introduces
func (h Hunk) Delta() int {
	return h.NewCount - h.OldCount
}

// Header returns the unified diff header of the hunk
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Body returns the diff body of the hunk, one prefixed line per change
func (h Hunk) Body() string {
	var b strings.Builder
	for _, line := range h.Removed {
		b.WriteString("-")
		b.WriteString(withNewline(line))
	}
	for _, line := range h.Added {
		b.WriteString("+")
		b.WriteString(withNewline(line))
	}
	return b.String()
}

func (h Hunk) String() string {
	return h.Header() + "\n" + h.Body()
}

// ContentHash hashes the diff body with xxh3
func ContentHash(body string) string {
	return fmt.Sprintf("%x", xxh3.HashString128(body).Bytes())
}

func withNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n\\ No newline at end of file\n"
}

// FileStatus describes how a file differs from the workspace tree
type FileStatus int

const (
	// StatusModified indicates the file exists on both sides
	StatusModified FileStatus = iota
	// StatusAdded indicates the file only exists in the working directory
	StatusAdded
	// StatusDeleted indicates the file only exists in the workspace tree
	StatusDeleted
)

func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// FileDiff holds the ordered hunks of one changed file
type FileDiff struct {
	Path   string
	Status FileStatus
	Hunks  []Hunk
}

// Diff is the set of changed files, sorted by path
type Diff []FileDiff

// Find returns the diff of the given path
func (d Diff) Find(path string) (FileDiff, bool) {
	i := sort.Search(len(d), func(i int) bool { return d[i].Path >= path })
	if i < len(d) && d[i].Path == path {
		return d[i], true
	}
	return FileDiff{}, false
}

// HunkCount returns the total number of hunks in the diff
func (d Diff) HunkCount() int {
	n := 0
	for _, f := range d {
		n += len(f.Hunks)
	}
	return n
}

// Sort orders the diff by path
func (d Diff) Sort() {
	sort.Slice(d, func(i, j int) bool { return d[i].Path < d[j].Path })
}
