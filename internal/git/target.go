package git

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	vberrors "vbranch.dev/vbranch/internal/errors"
)

const remotesPrefix = "refs/remotes/"

// Target is the upstream branch every virtual branch is based on
type Target struct {
	Remote    string `yaml:"remote"`
	Branch    string `yaml:"branch"`
	RemoteURL string `yaml:"remoteUrl"`
	Sha       string `yaml:"sha"`
}

// Ref returns the remote tracking ref of the target
func (t Target) Ref() string {
	return remotesPrefix + t.Remote + "/" + t.Branch
}

// ParseTargetRef splits refs/remotes/<remote>/<branch>
func ParseTargetRef(ref string) (remote, branch string, err error) {
	rest, ok := strings.CutPrefix(ref, remotesPrefix)
	if !ok {
		return "", "", vberrors.NewInvalidTargetError(ref, "expected refs/remotes/<remote>/<branch>", nil)
	}
	remote, branch, ok = strings.Cut(rest, "/")
	if !ok || remote == "" || branch == "" {
		return "", "", vberrors.NewInvalidTargetError(ref, "expected refs/remotes/<remote>/<branch>", nil)
	}
	return remote, branch, nil
}

// ResolveTarget parses a remote tracking ref and resolves its commit and the
// remote URL
func (r *Repository) ResolveTarget(ref string) (Target, error) {
	remoteName, branchName, err := ParseTargetRef(ref)
	if err != nil {
		return Target{}, err
	}

	resolved, err := r.repo.Reference(plumbing.ReferenceName(ref), true)
	if err != nil {
		return Target{}, vberrors.NewInvalidTargetError(ref, "reference does not exist", err)
	}

	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return Target{}, vberrors.NewInvalidTargetError(ref, "unknown remote "+remoteName, err)
	}
	var url string
	if urls := remote.Config().URLs; len(urls) > 0 {
		url = urls[0]
	}

	return Target{
		Remote:    remoteName,
		Branch:    branchName,
		RemoteURL: url,
		Sha:       resolved.Hash().String(),
	}, nil
}
