package branch

import (
	"github.com/google/uuid"
)

// Snapshot is the persisted form of a registry
type Snapshot struct {
	Selected string          `yaml:"selected,omitempty"`
	Seq      int             `yaml:"seq"`
	Branches []VirtualBranch `yaml:"branches"`
	Stashed  []VirtualBranch `yaml:"stashed,omitempty"`
}

// Snapshot returns a copy of the registry contents for persistence
func (r *Registry) Snapshot() Snapshot {
	c := r.Clone()
	return Snapshot{
		Selected: c.selected,
		Seq:      c.seq,
		Branches: c.active,
		Stashed:  c.stashed,
	}
}

// FromSnapshot rebuilds a registry and validates it
func FromSnapshot(s Snapshot) (*Registry, error) {
	r := &Registry{
		selected: s.Selected,
		seq:      s.Seq,
		newID:    uuid.NewString,
	}
	for _, b := range s.Branches {
		b.Active = true
		b.SelectedForChanges = false
		r.active = append(r.active, b.clone())
		r.seq = max(r.seq, b.Order)
	}
	for _, b := range s.Stashed {
		b.Active = false
		b.SelectedForChanges = false
		r.stashed = append(r.stashed, b.clone())
		r.seq = max(r.seq, b.Order)
	}
	if err := r.CheckInvariant(); err != nil {
		return nil, err
	}
	return r, nil
}
