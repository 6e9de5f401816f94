// Package branch holds the virtual branch registry: the set of virtual
// branches of one project, their activation state and the single branch
// selected for changes.
package branch

import (
	"regexp"
	"strings"

	"vbranch.dev/vbranch/internal/lock"
	"vbranch.dev/vbranch/internal/ownership"
)

// Commit is an immutable commit created on a virtual branch
type Commit struct {
	ID      string           `yaml:"id"`
	Message string           `yaml:"message"`
	Ranges  []lock.FileRange `yaml:"ranges,omitempty"` // lines the commit changed, in workspace coordinates
}

// VirtualBranch is a named, independently committable subset of the
// working directory changes
type VirtualBranch struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Active bool   `yaml:"active"`
	// SelectedForChanges is derived from the registry on every read and
	// never stored on the branch itself.
	SelectedForChanges bool              `yaml:"-"`
	Ownership          []ownership.Claim `yaml:"ownership,omitempty"`
	Commits            []Commit          `yaml:"commits,omitempty"` // newest first
	Base               string            `yaml:"base,omitempty"`    // target commit the branch started from
	Ref                string            `yaml:"ref,omitempty"`     // real branch ref, set once converted
	Order              int               `yaml:"order"`             // creation sequence
}

// Head returns the newest commit id, or the base when nothing was committed
func (b VirtualBranch) Head() string {
	if len(b.Commits) > 0 {
		return b.Commits[0].ID
	}
	return b.Base
}

// LockSurface returns every line range committed by the branch
func (b VirtualBranch) LockSurface() []lock.FileRange {
	var out []lock.FileRange
	for _, c := range b.Commits {
		out = append(out, c.Ranges...)
	}
	return out
}

// State is the lifecycle state of a branch
type State int

const (
	// StateActiveSelected is an applied branch receiving unowned hunks
	StateActiveSelected State = iota
	// StateActiveUnselected is an applied branch that only keeps what it owns
	StateActiveUnselected
	// StateDeactivated is a branch that left the working directory
	StateDeactivated
)

func (s State) String() string {
	switch s {
	case StateActiveSelected:
		return "active+selected"
	case StateActiveUnselected:
		return "active"
	default:
		return "deactivated"
	}
}

// StateOf returns the lifecycle state of a branch view
func StateOf(b VirtualBranch) State {
	switch {
	case !b.Active:
		return StateDeactivated
	case b.SelectedForChanges:
		return StateActiveSelected
	default:
		return StateActiveUnselected
	}
}

func (b VirtualBranch) clone() VirtualBranch {
	out := b
	out.Ownership = append([]ownership.Claim(nil), b.Ownership...)
	out.Commits = nil
	for _, c := range b.Commits {
		c.Ranges = append([]lock.FileRange(nil), c.Ranges...)
		out.Commits = append(out.Commits, c)
	}
	return out
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9._/-]+`)

// Slug turns a branch name into a ref-safe name
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-./")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	if s == "" {
		return "virtual-branch"
	}
	return s
}
