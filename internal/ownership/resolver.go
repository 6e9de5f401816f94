package ownership

import (
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/lock"
)

// Reason explains why a hunk was placed on a branch
type Reason int

const (
	// ReasonDefault means the hunk went to the branch selected for changes
	ReasonDefault Reason = iota
	// ReasonLocked means the hunk overlaps lines the branch already committed
	ReasonLocked
	// ReasonKept means the hunk stayed on the branch that owned it before
	ReasonKept
)

func (r Reason) String() string {
	switch r {
	case ReasonLocked:
		return "locked"
	case ReasonKept:
		return "kept"
	default:
		return "default"
	}
}

// Branch is the resolver's view of an active branch
type Branch struct {
	ID     string
	Claims []Claim // ownership from the previous pass
}

// Input is everything a resolution depends on
type Input struct {
	Diff     hunk.Diff
	Branches []Branch // active branches in registry order
	Locks    *lock.Index
	Selected string // id of the branch selected for changes, empty if none
}

// Placement is the owner of one hunk
type Placement struct {
	Hunk     hunk.Hunk
	BranchID string
	Reason   Reason
}

// Assignment is the result of a resolution
type Assignment struct {
	Placements []Placement // in diff order
	Orphans    []hunk.Hunk // hunks without a branch to go to
}

// Resolve assigns every hunk of the diff to exactly one branch. Precedence:
// a lock on an active branch, then the previous owner, then the selected
// branch. Each hunk is judged on its own, so a locked hunk never moves
// other hunks of the same file. Resolve is pure and deterministic.
func Resolve(in Input) Assignment {
	active := make(map[string]struct{}, len(in.Branches))
	previous := make(map[Claim]string)
	for _, b := range in.Branches {
		active[b.ID] = struct{}{}
		for _, c := range b.Claims {
			if _, taken := previous[c]; !taken {
				previous[c] = b.ID
			}
		}
	}
	selected := in.Selected
	if _, ok := active[selected]; !ok {
		selected = ""
	}

	var out Assignment
	for _, fd := range in.Diff {
		for _, h := range fd.Hunks {
			if owner, ok := lockOwner(in.Locks, h, active); ok {
				out.Placements = append(out.Placements, Placement{Hunk: h, BranchID: owner, Reason: ReasonLocked})
				continue
			}
			if owner, ok := previous[ClaimOf(h)]; ok {
				out.Placements = append(out.Placements, Placement{Hunk: h, BranchID: owner, Reason: ReasonKept})
				continue
			}
			if selected == "" {
				out.Orphans = append(out.Orphans, h)
				continue
			}
			out.Placements = append(out.Placements, Placement{Hunk: h, BranchID: selected, Reason: ReasonDefault})
		}
	}
	return out
}

func lockOwner(locks *lock.Index, h hunk.Hunk, active map[string]struct{}) (string, bool) {
	if locks == nil {
		return "", false
	}
	owner, ok := locks.Owner(h.Path, h.TouchRange())
	if !ok {
		return "", false
	}
	if _, isActive := active[owner]; !isActive {
		return "", false
	}
	return owner, true
}

// Hunks returns the placements of one branch in diff order
func (a Assignment) Hunks(branchID string) []Placement {
	var out []Placement
	for _, p := range a.Placements {
		if p.BranchID == branchID {
			out = append(out, p)
		}
	}
	return out
}

// Claims returns the ownership of one branch
func (a Assignment) Claims(branchID string) []Claim {
	var out []Claim
	for _, p := range a.Placements {
		if p.BranchID == branchID {
			out = append(out, ClaimOf(p.Hunk))
		}
	}
	return out
}

// Files groups the hunks owned by a branch per file
func (a Assignment) Files(branchID string, diff hunk.Diff) hunk.Diff {
	owned := make(map[string][]hunk.Hunk)
	for _, p := range a.Placements {
		if p.BranchID == branchID {
			owned[p.Hunk.Path] = append(owned[p.Hunk.Path], p.Hunk)
		}
	}
	var out hunk.Diff
	for _, fd := range diff {
		if hunks, ok := owned[fd.Path]; ok {
			out = append(out, hunk.FileDiff{Path: fd.Path, Status: fd.Status, Hunks: hunks})
		}
	}
	return out
}
