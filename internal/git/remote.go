package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Endpoint is one way of reaching a remote: a URL plus the authentication to
// present. A nil Auth means none.
type Endpoint struct {
	URL  string
	Auth transport.AuthMethod
}

// ErrNoEndpoints is returned when a remote operation has nothing to try
var ErrNoEndpoints = errors.New("no credentials to try")

// Push pushes src to dst on the remote, trying each endpoint in order until
// one succeeds
func (r *Repository) Push(ctx context.Context, remoteName string, endpoints []Endpoint, src, dst string) error {
	spec := config.RefSpec(fmt.Sprintf("+%s:%s", src, dst))
	if err := spec.Validate(); err != nil {
		return gitErr("push "+src, err)
	}

	return r.tryEndpoints("push "+src, remoteName, endpoints, func(remote *gogit.Remote, auth transport.AuthMethod) error {
		return remote.PushContext(ctx, &gogit.PushOptions{
			RemoteName: remoteName,
			RefSpecs:   []config.RefSpec{spec},
			Auth:       auth,
		})
	})
}

// Fetch updates the remote tracking refs of a remote, trying each endpoint
// in order until one succeeds
func (r *Repository) Fetch(ctx context.Context, remoteName string, endpoints []Endpoint) error {
	specs := []config.RefSpec{config.RefSpec(fmt.Sprintf(config.DefaultFetchRefSpec, remoteName))}
	if remote, err := r.repo.Remote(remoteName); err == nil && len(remote.Config().Fetch) > 0 {
		specs = remote.Config().Fetch
	}

	return r.tryEndpoints("fetch "+remoteName, remoteName, endpoints, func(remote *gogit.Remote, auth transport.AuthMethod) error {
		return remote.FetchContext(ctx, &gogit.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   specs,
			Auth:       auth,
		})
	})
}

func (r *Repository) tryEndpoints(op, remoteName string, endpoints []Endpoint, do func(*gogit.Remote, transport.AuthMethod) error) error {
	if len(endpoints) == 0 {
		return gitErr(op, ErrNoEndpoints)
	}

	var errs []error
	for _, ep := range endpoints {
		remote := gogit.NewRemote(r.repo.Storer, &config.RemoteConfig{
			Name: remoteName,
			URLs: []string{ep.URL},
		})
		err := do(remote, ep.Auth)
		if err == nil || errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ep.URL, err))
	}
	return gitErr(op, errors.Join(errs...))
}
