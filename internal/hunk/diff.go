package hunk

import (
	"strings"

	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SplitLines splits content into lines, keeping line terminators
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Compute diffs old against new line by line and returns zero-context hunks.
// Added or deleted files without content produce one empty hunk so the file
// can still be owned.
func Compute(path, oldContent, newContent string, status FileStatus) FileDiff {
	fd := FileDiff{Path: path, Status: status}

	var (
		current          *Hunk
		oldLine, newLine = 1, 1
	)
	flush := func() {
		if current == nil {
			return
		}
		current.OldCount = len(current.Removed)
		current.NewCount = len(current.Added)
		current.Hash = ContentHash(current.Body())
		fd.Hunks = append(fd.Hunks, *current)
		current = nil
	}
	start := func() {
		if current == nil {
			current = &Hunk{Path: path, OldStart: oldLine, NewStart: newLine}
		}
	}

	for _, d := range diff.Do(oldContent, newContent) {
		lines := SplitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			oldLine += len(lines)
			newLine += len(lines)
		case diffmatchpatch.DiffDelete:
			start()
			current.Removed = append(current.Removed, lines...)
			oldLine += len(lines)
		case diffmatchpatch.DiffInsert:
			start()
			current.Added = append(current.Added, lines...)
			newLine += len(lines)
		}
	}
	flush()

	if len(fd.Hunks) == 0 && status != StatusModified {
		h := Hunk{Path: path, OldStart: 1, NewStart: 1}
		h.Hash = ContentHash(status.String() + " " + path)
		fd.Hunks = append(fd.Hunks, h)
	}
	return fd
}

// Changes returns the line changes that turn old into new, used to remap
// ranges expressed against old.
func Changes(path, oldContent, newContent string) []Hunk {
	if oldContent == newContent {
		return nil
	}
	return Compute(path, oldContent, newContent, StatusModified).Hunks
}
