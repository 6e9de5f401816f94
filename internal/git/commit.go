package git

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CreateCommit writes a commit object for tree with an optional parent and
// returns its hash. No ref is moved.
func (r *Repository) CreateCommit(ctx context.Context, treeSha, parentSha, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sig := r.Signature()
	sig.When = time.Now()

	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   message,
		TreeHash:  plumbing.NewHash(treeSha),
	}
	if parentSha != "" {
		commit.ParentHashes = []plumbing.Hash{plumbing.NewHash(parentSha)}
	}

	obj := r.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", gitErr("encode commit", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", gitErr("write commit", err)
	}
	return hash.String(), nil
}

// CommitMessage returns the message of a commit
func (r *Repository) CommitMessage(sha string) (string, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return "", gitErr("read commit "+sha, err)
	}
	return commit.Message, nil
}
