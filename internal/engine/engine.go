package engine

import (
	"context"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/git"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/ownership"
)

// BranchView is a virtual branch together with the uncommitted changes it
// owns right now
type BranchView struct {
	branch.VirtualBranch
	Files      hunk.Diff             // owned hunks grouped per file
	Placements []ownership.Placement // owned hunks with the reason they landed here
}

// Listing is the result of one ownership resolution
type Listing struct {
	Branches []BranchView
	Orphans  []hunk.Hunk // hunks no active branch could take
}

// Find returns the view of a branch in the listing
func (l Listing) Find(id string) (BranchView, bool) {
	for _, b := range l.Branches {
		if b.ID == id {
			return b, true
		}
	}
	return BranchView{}, false
}

// CreateOptions configures a new virtual branch
type CreateOptions struct {
	Name               string
	SelectedForChanges *bool
	Ownership          []ownership.Claim
}

// UpdateOptions holds the branch fields to change; nil fields are kept
type UpdateOptions struct {
	Name               *string
	SelectedForChanges *bool
	Ownership          []ownership.Claim
}

// BranchReader provides read access to the virtual branches
// Thread-safe: All methods are safe for concurrent use
type BranchReader interface {
	// ListBranches resolves the ownership of every uncommitted hunk and
	// returns the branches with their files
	ListBranches(ctx context.Context, filter branch.Filter) (Listing, error)
	GetBranch(id string) (branch.VirtualBranch, error)
	Target() (git.Target, bool)
}

// BranchWriter provides the branch lifecycle operations
// Thread-safe: All methods are safe for concurrent use
type BranchWriter interface {
	SetTarget(ctx context.Context, ref string) (git.Target, error)
	CreateBranch(ctx context.Context, opts CreateOptions) (branch.VirtualBranch, error)
	UpdateBranch(ctx context.Context, id string, opts UpdateOptions) (branch.VirtualBranch, error)
	DeleteBranch(ctx context.Context, id string) error

	// CreateCommit commits the hunks the branch owns and returns the commit id
	CreateCommit(ctx context.Context, id, message string) (string, error)
	// ConvertToRealBranch unapplies a branch into a real ref and returns the ref
	ConvertToRealBranch(ctx context.Context, id string) (string, error)
	// CreateBranchFromRef applies a real ref as a new virtual branch
	CreateBranchFromRef(ctx context.Context, ref string) (branch.VirtualBranch, error)
}

// RemoteManager provides the operations that talk to the target remote
// Thread-safe: All methods are safe for concurrent use
type RemoteManager interface {
	// Push publishes a branch head and returns the remote ref it was pushed to
	Push(ctx context.Context, id string) (string, error)
	Fetch(ctx context.Context) error
}

// Engine is the lifecycle controller of one project
// Thread-safe: All methods are safe for concurrent use
type Engine interface {
	BranchReader
	BranchWriter
	RemoteManager
}
