package engine

import (
	"context"
	"fmt"
	"strings"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/git"
)

// Push stores the branch head under refs/vbranches/<slug> and pushes it to
// refs/heads/<slug> on the target remote. The network round trip runs
// outside the project lock.
func (e *engineImpl) Push(ctx context.Context, id string) (string, error) {
	snap := e.snapshot()
	target, err := snap.requireTarget()
	if err != nil {
		return "", err
	}
	b, err := snap.registry.Get(id)
	if err != nil {
		return "", err
	}

	name := branch.Slug(b.Name)
	if strings.HasPrefix(b.Ref, headsPrefix) {
		name = strings.TrimPrefix(b.Ref, headsPrefix)
	}
	local := vbranchesPrefix + name
	if err := e.repo.UpdateRef(local, b.Head()); err != nil {
		return "", err
	}

	endpoints, err := e.endpoints(ctx, target.RemoteURL)
	if err != nil {
		return "", err
	}
	remoteRef := headsPrefix + name
	if err := e.repo.Push(ctx, target.Remote, endpoints, local, remoteRef); err != nil {
		return "", err
	}
	e.splog.Debug("pushed %s to %s %s", b.Head(), target.Remote, remoteRef)
	return remoteRef, nil
}

// Fetch updates the remote tracking refs of the target remote
func (e *engineImpl) Fetch(ctx context.Context) error {
	target, err := e.snapshot().requireTarget()
	if err != nil {
		return err
	}
	endpoints, err := e.endpoints(ctx, target.RemoteURL)
	if err != nil {
		return err
	}
	return e.repo.Fetch(ctx, target.Remote, endpoints)
}

// endpoints flattens the credential attempts for a remote into the ordered
// list of url and auth pairs to try. Credentials that cannot be loaded are
// skipped.
func (e *engineImpl) endpoints(ctx context.Context, remoteURL string) ([]git.Endpoint, error) {
	if e.creds == nil {
		return []git.Endpoint{{URL: remoteURL}}, nil
	}
	attempts, err := e.creds.Help(ctx, remoteURL, e.cfg.CredentialOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}
	var out []git.Endpoint
	for _, a := range attempts {
		for _, c := range a.Credentials {
			auth, err := c.AuthMethod()
			if err != nil {
				e.splog.Debug("skipping %s credential for %s: %v", c.Kind, a.URL, err)
				continue
			}
			out = append(out, git.Endpoint{URL: a.URL, Auth: auth})
		}
	}
	return out, nil
}
