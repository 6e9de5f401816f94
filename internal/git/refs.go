package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ResolveRef returns the commit a ref points to
func (r *Repository) ResolveRef(name string) (string, error) {
	ref, err := r.repo.Reference(plumbing.ReferenceName(name), true)
	if err != nil {
		return "", gitErr("resolve "+name, err)
	}
	return ref.Hash().String(), nil
}

// RefExists reports whether a ref is present
func (r *Repository) RefExists(name string) bool {
	_, err := r.repo.Reference(plumbing.ReferenceName(name), false)
	return err == nil
}

// UpdateRef creates or moves a ref
func (r *Repository) UpdateRef(name, sha string) error {
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return gitErr("update "+name, err)
	}
	return nil
}

// DeleteRef removes a ref. Missing refs are ignored.
func (r *Repository) DeleteRef(name string) error {
	if err := r.repo.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		return gitErr("delete "+name, err)
	}
	return nil
}

// HistoryCommit is one commit of a loaded branch
type HistoryCommit struct {
	Sha     string
	Message string
	Tree    string
}

// History is a real branch reduced to what it adds on top of a base
type History struct {
	Ref      string
	Head     string
	Base     string          // first commit reachable from the target
	BaseTree string
	Commits  []HistoryCommit // newest first, Base excluded
}

// LoadRef walks the first-parent history of ref until it reaches a commit
// that is the target or one of its ancestors
func (r *Repository) LoadRef(name, targetSha string) (History, error) {
	head, err := r.ResolveRef(name)
	if err != nil {
		return History{}, err
	}
	target, err := r.repo.CommitObject(plumbing.NewHash(targetSha))
	if err != nil {
		return History{}, gitErr("read target "+targetSha, err)
	}

	h := History{Ref: name, Head: head}
	commit, err := r.repo.CommitObject(plumbing.NewHash(head))
	if err != nil {
		return History{}, gitErr("read commit "+head, err)
	}
	for {
		reached, err := r.reachesTarget(commit, target)
		if err != nil {
			return History{}, err
		}
		if reached {
			h.Base = commit.Hash.String()
			h.BaseTree = commit.TreeHash.String()
			return h, nil
		}
		h.Commits = append(h.Commits, HistoryCommit{
			Sha:     commit.Hash.String(),
			Message: commit.Message,
			Tree:    commit.TreeHash.String(),
		})
		if commit.NumParents() == 0 {
			return History{}, gitErr("load "+name, fmt.Errorf("no common history with target %s", targetSha))
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return History{}, gitErr("load "+name, err)
		}
	}
}

func (r *Repository) reachesTarget(c, target *object.Commit) (bool, error) {
	if c.Hash == target.Hash {
		return true, nil
	}
	ok, err := c.IsAncestor(target)
	if err != nil && !errors.Is(err, plumbing.ErrObjectNotFound) {
		return false, gitErr("ancestry of "+c.Hash.String(), err)
	}
	return ok, nil
}
