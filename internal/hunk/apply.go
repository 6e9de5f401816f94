package hunk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Apply replays hunks onto the content they were computed against.
// Every hunk is checked against the lines it claims to remove.
func Apply(oldContent string, hunks []Hunk) (string, error) {
	lines := SplitLines(oldContent)
	sorted := append([]Hunk(nil), hunks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OldStart > sorted[j].OldStart })

	for _, h := range sorted {
		idx := h.OldStart - 1
		if idx < 0 || idx+h.OldCount > len(lines) {
			return "", fmt.Errorf("hunk %s does not fit %s", h.Header(), h.Path)
		}
		if !equalLines(lines[idx:idx+h.OldCount], h.Removed) {
			return "", fmt.Errorf("hunk %s does not match %s", h.Header(), h.Path)
		}
		lines = splice(lines, idx, h.OldCount, h.Added)
	}
	return strings.Join(lines, ""), nil
}

// Revert undoes hunks in the content they produced.
func Revert(newContent string, hunks []Hunk) (string, error) {
	lines := SplitLines(newContent)
	sorted := append([]Hunk(nil), hunks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].NewStart > sorted[j].NewStart })

	for _, h := range sorted {
		idx := h.NewStart - 1
		if idx < 0 || idx+h.NewCount > len(lines) {
			return "", fmt.Errorf("hunk %s does not fit %s", h.Header(), h.Path)
		}
		if !equalLines(lines[idx:idx+h.NewCount], h.Added) {
			return "", fmt.Errorf("hunk %s does not match %s", h.Header(), h.Path)
		}
		lines = splice(lines, idx, h.NewCount, h.Removed)
	}
	return strings.Join(lines, ""), nil
}

// Transfer replays the change from -> to onto target, which may have drifted
// from "from". Exact when target equals from, fuzzy otherwise.
func Transfer(from, to, target string) (string, error) {
	if target == from {
		return to, nil
	}
	if from == to {
		return target, nil
	}
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(from, to)
	result, applied := dmp.PatchApply(patches, target)
	for i, ok := range applied {
		if !ok {
			return "", fmt.Errorf("patch %d of %d does not apply", i+1, len(applied))
		}
	}
	return result, nil
}

func splice(lines []string, idx, count int, replacement []string) []string {
	out := make([]string, 0, len(lines)-count+len(replacement))
	out = append(out, lines[:idx]...)
	out = append(out, replacement...)
	out = append(out, lines[idx+count:]...)
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
