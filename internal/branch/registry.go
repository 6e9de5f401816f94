package branch

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/lock"
	"vbranch.dev/vbranch/internal/ownership"
)

// DefaultName is the name given to branches created without one
const DefaultName = "Virtual branch"

// Filter selects which branches List yields
type Filter int

const (
	// FilterActive yields applied branches only
	FilterActive Filter = iota
	// FilterAll yields applied branches followed by stashed ones
	FilterAll
)

// Registry owns the virtual branches of one project. The branch selected
// for changes is stored once, as an id, so two branches can never both
// claim it. Registry is not safe for concurrent use; the engine serializes
// access and mutates clones so a failed operation leaves no trace.
type Registry struct {
	active   []VirtualBranch // insertion order
	stashed  []VirtualBranch
	selected string
	seq      int
	newID    func() string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{newID: uuid.NewString}
}

// Clone returns a deep copy of the registry
func (r *Registry) Clone() *Registry {
	out := &Registry{
		selected: r.selected,
		seq:      r.seq,
		newID:    r.newID,
	}
	for _, b := range r.active {
		out.active = append(out.active, b.clone())
	}
	for _, b := range r.stashed {
		out.stashed = append(out.stashed, b.clone())
	}
	return out
}

// CreateOptions configures a new branch
type CreateOptions struct {
	Name               string
	SelectedForChanges *bool // nil: selected only if no active branch is
	Ownership          []ownership.Claim
	Base               string
}

// Create adds a new active branch
func (r *Registry) Create(opts CreateOptions) (VirtualBranch, error) {
	b := r.newBranch(opts.Name, opts.Base)
	b.Active = true
	r.active = append(r.active, b)
	r.claim(b.ID, opts.Ownership)

	if opts.SelectedForChanges != nil {
		if *opts.SelectedForChanges {
			r.selected = b.ID
		}
	} else if r.selected == "" {
		r.selected = b.ID
	}

	if err := r.ensureSelection(); err != nil {
		return VirtualBranch{}, err
	}
	return r.Get(b.ID)
}

// UpdateOptions holds the fields to change; nil fields are left alone
type UpdateOptions struct {
	Name               *string
	SelectedForChanges *bool
	Ownership          []ownership.Claim // claims taken from every other branch
}

// Update mutates an active branch. Selecting a branch deselects every other
// one in the same step. Deselecting the selected branch hands the selection
// to another active branch when there is one.
func (r *Registry) Update(id string, opts UpdateOptions) (VirtualBranch, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return VirtualBranch{}, vberrors.NewBranchNotFoundError(id)
	}

	if opts.Name != nil && *opts.Name != r.active[idx].Name {
		r.active[idx].Name = r.uniqueName(*opts.Name, id)
	}
	if opts.Ownership != nil {
		r.claim(id, opts.Ownership)
	}
	if opts.SelectedForChanges != nil {
		switch {
		case *opts.SelectedForChanges:
			r.selected = id
		case r.selected == id:
			if next, ok := r.elect(id); ok {
				r.selected = next
			}
		}
	}

	if err := r.ensureSelection(); err != nil {
		return VirtualBranch{}, err
	}
	return r.Get(id)
}

// Delete removes a branch, active or stashed. When the selected branch goes
// another active branch is elected.
func (r *Registry) Delete(id string) error {
	if idx := r.stashedIndexOf(id); idx >= 0 {
		r.stashed = append(r.stashed[:idx], r.stashed[idx+1:]...)
		return nil
	}
	idx := r.indexOf(id)
	if idx < 0 {
		return vberrors.NewBranchNotFoundError(id)
	}
	r.active = append(r.active[:idx], r.active[idx+1:]...)
	return r.reelect(id)
}

// Deactivate moves an active branch to the stashed store with Active false,
// electing a new selected branch if needed
func (r *Registry) Deactivate(id string) (VirtualBranch, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return VirtualBranch{}, vberrors.NewBranchNotFoundError(id)
	}
	b := r.active[idx]
	r.active = append(r.active[:idx], r.active[idx+1:]...)

	b.Active = false
	b.Ownership = nil
	r.stashed = append(r.stashed, b)

	if err := r.reelect(id); err != nil {
		return VirtualBranch{}, err
	}
	return b.clone(), nil
}

// ActivateOptions describes a branch entering the workspace from a real ref
type ActivateOptions struct {
	Name    string
	Base    string
	Ref     string
	Commits []Commit
}

// Activate registers a new active branch from an external reference. A
// stashed record of the same ref is replaced. The branch is selected when no
// other active branch is.
func (r *Registry) Activate(opts ActivateOptions) (VirtualBranch, error) {
	if opts.Ref != "" {
		for i := len(r.stashed) - 1; i >= 0; i-- {
			if r.stashed[i].Ref == opts.Ref {
				r.stashed = append(r.stashed[:i], r.stashed[i+1:]...)
			}
		}
	}

	b := r.newBranch(opts.Name, opts.Base)
	b.Active = true
	b.Ref = opts.Ref
	b.Commits = opts.Commits
	r.active = append(r.active, b)
	if r.selected == "" {
		r.selected = b.ID
	}

	if err := r.ensureSelection(); err != nil {
		return VirtualBranch{}, err
	}
	return r.Get(b.ID)
}

// SetStashedRef records the real ref a stashed branch was converted to
func (r *Registry) SetStashedRef(id, ref string) error {
	idx := r.stashedIndexOf(id)
	if idx < 0 {
		return vberrors.NewBranchNotFoundError(id)
	}
	r.stashed[idx].Ref = ref
	return nil
}

// Get returns a copy of the branch with the given id
func (r *Registry) Get(id string) (VirtualBranch, error) {
	if idx := r.indexOf(id); idx >= 0 {
		return r.view(r.active[idx]), nil
	}
	if idx := r.stashedIndexOf(id); idx >= 0 {
		return r.view(r.stashed[idx]), nil
	}
	return VirtualBranch{}, vberrors.NewBranchNotFoundError(id)
}

// Selected returns the id of the branch selected for changes
func (r *Registry) Selected() (string, bool) {
	return r.selected, r.selected != ""
}

// ActiveCount returns the number of active branches
func (r *Registry) ActiveCount() int {
	return len(r.active)
}

// List returns a lazy, restartable sequence of branches. Active branches come
// in insertion order.
func (r *Registry) List(filter Filter) iter.Seq[VirtualBranch] {
	active := append([]VirtualBranch(nil), r.active...)
	var stashed []VirtualBranch
	if filter == FilterAll {
		stashed = append(stashed, r.stashed...)
	}
	selected := r.selected
	return func(yield func(VirtualBranch) bool) {
		for _, set := range [][]VirtualBranch{active, stashed} {
			for _, b := range set {
				v := b.clone()
				v.SelectedForChanges = v.Active && v.ID == selected
				if !yield(v) {
					return
				}
			}
		}
	}
}

// SetOwnership replaces the ownership of an active branch with the result of
// a resolution pass
func (r *Registry) SetOwnership(id string, claims []ownership.Claim) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return vberrors.NewBranchNotFoundError(id)
	}
	r.active[idx].Ownership = append([]ownership.Claim(nil), claims...)
	return nil
}

// AddCommit records a new head commit on an active branch
func (r *Registry) AddCommit(id string, c Commit) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return vberrors.NewBranchNotFoundError(id)
	}
	r.active[idx].Commits = append([]Commit{c}, r.active[idx].Commits...)
	return nil
}

// Remap translates every active branch's ownership and lock ranges through
// line changes of the workspace tree
func (r *Registry) Remap(changes map[string][]hunk.Hunk) {
	if len(changes) == 0 {
		return
	}
	for i := range r.active {
		r.active[i].Ownership = ownership.Remap(r.active[i].Ownership, changes)
		for j := range r.active[i].Commits {
			r.active[i].Commits[j].Ranges = lock.Remap(r.active[i].Commits[j].Ranges, changes)
		}
	}
}

// ResetDerived drops ownership and lock ranges of active branches and moves
// their base to a new target commit
func (r *Registry) ResetDerived(base string) {
	for i := range r.active {
		r.active[i].Ownership = nil
		r.active[i].Base = base
		for j := range r.active[i].Commits {
			r.active[i].Commits[j].Ranges = nil
		}
	}
}

// LockIndex builds the commit history index of the active branches
func (r *Registry) LockIndex() *lock.Index {
	x := lock.NewIndex()
	for _, b := range r.active {
		x.AddSurface(b.ID, b.LockSurface())
	}
	return x
}

// ResolverBranches returns the resolver's view of the active branches
func (r *Registry) ResolverBranches() []ownership.Branch {
	out := make([]ownership.Branch, 0, len(r.active))
	for _, b := range r.active {
		out = append(out, ownership.Branch{ID: b.ID, Claims: b.Ownership})
	}
	return out
}

// CheckInvariant verifies the single selection rule
func (r *Registry) CheckInvariant() error {
	if len(r.active) == 0 {
		if r.selected != "" {
			return vberrors.NewInvariantViolationError("branch %s selected with no active branches", r.selected)
		}
		return nil
	}
	if r.indexOf(r.selected) < 0 {
		return vberrors.NewInvariantViolationError("selected branch %q is not active", r.selected)
	}
	return nil
}

func (r *Registry) view(b VirtualBranch) VirtualBranch {
	v := b.clone()
	v.SelectedForChanges = v.Active && v.ID == r.selected
	return v
}

func (r *Registry) newBranch(name, base string) VirtualBranch {
	if name == "" {
		name = DefaultName
	}
	r.seq++
	return VirtualBranch{
		ID:    r.newID(),
		Name:  r.uniqueName(name, ""),
		Base:  base,
		Order: r.seq,
	}
}

// claim gives claims to id and removes them from every other active branch
func (r *Registry) claim(id string, claims []ownership.Claim) {
	if claims == nil {
		return
	}
	for i := range r.active {
		if r.active[i].ID == id {
			r.active[i].Ownership = append([]ownership.Claim(nil), claims...)
			ownership.SortClaims(r.active[i].Ownership)
			continue
		}
		r.active[i].Ownership = ownership.Without(r.active[i].Ownership, claims)
	}
}

// reelect replaces the selection after removed left the active set
func (r *Registry) reelect(removed string) error {
	if r.selected == removed {
		r.selected = ""
	}
	return r.ensureSelection()
}

// ensureSelection restores the single selection rule after a mutation
func (r *Registry) ensureSelection() error {
	if len(r.active) == 0 {
		r.selected = ""
		return nil
	}
	if r.indexOf(r.selected) >= 0 {
		return nil
	}
	next, ok := r.elect("")
	if !ok {
		return vberrors.NewInvariantViolationError("no replacement for selected branch among %d active branches", len(r.active))
	}
	r.selected = next
	return r.CheckInvariant()
}

// elect picks the most recently created active branch other than exclude
func (r *Registry) elect(exclude string) (string, bool) {
	best := -1
	for i, b := range r.active {
		if b.ID == exclude {
			continue
		}
		if best < 0 || b.Order > r.active[best].Order {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return r.active[best].ID, true
}

// uniqueName suffixes name with a counter until no other branch uses it
func (r *Registry) uniqueName(name, self string) string {
	taken := func(candidate string) bool {
		for _, set := range [][]VirtualBranch{r.active, r.stashed} {
			for _, b := range set {
				if b.ID != self && b.Name == candidate {
					return true
				}
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s %d", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func (r *Registry) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, b := range r.active {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) stashedIndexOf(id string) int {
	for i, b := range r.stashed {
		if b.ID == id {
			return i
		}
	}
	return -1
}
