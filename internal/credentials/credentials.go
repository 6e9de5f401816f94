// Package credentials resolves how to authenticate against a remote. Given a
// remote URL and the preferred authentication mode it produces an ordered
// list of attempts, each a URL plus the credentials to try against it.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/oauth2"
)

// PreferredKey is the authentication mode configured for a project
type PreferredKey string

const (
	// PreferLocal authenticates over ssh with a private key file
	PreferLocal PreferredKey = "local"
	// PreferHelper authenticates over https with git's credential helper,
	// then with a platform token
	PreferHelper PreferredKey = "helper"
	// PreferSystem delegates to a system executable and is never resolved here
	PreferSystem PreferredKey = "system"
)

// ParsePreferredKey validates a configured preferred key
func ParsePreferredKey(s string) (PreferredKey, error) {
	switch k := PreferredKey(s); k {
	case PreferLocal, PreferHelper, PreferSystem:
		return k, nil
	default:
		return "", fmt.Errorf("unknown preferred key %q: expected local, helper or system", s)
	}
}

// Kind tells credentials apart
type Kind int

const (
	// KindNoop presents no credentials
	KindNoop Kind = iota
	// KindSSHKey presents a private key file
	KindSSHKey
	// KindHelper presents username and password from the credential helper
	KindHelper
	// KindToken presents a platform-managed token
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindSSHKey:
		return "ssh key"
	case KindHelper:
		return "credential helper"
	case KindToken:
		return "token"
	default:
		return "none"
	}
}

// Credential is one way of authenticating
type Credential struct {
	Kind     Kind
	KeyPath  string
	Username string
	Password string
	Token    string
}

// AuthMethod converts the credential for go-git transports. Noop returns nil.
func (c Credential) AuthMethod() (transport.AuthMethod, error) {
	switch c.Kind {
	case KindNoop:
		return nil, nil
	case KindSSHKey:
		keys, err := ssh.NewPublicKeysFromFile("git", expandHome(c.KeyPath), "")
		if err != nil {
			return nil, fmt.Errorf("failed to load ssh key %s: %w", c.KeyPath, err)
		}
		return keys, nil
	case KindHelper:
		return &http.BasicAuth{Username: c.Username, Password: c.Password}, nil
	case KindToken:
		return &http.BasicAuth{Username: "git", Password: c.Token}, nil
	default:
		return nil, fmt.Errorf("unknown credential kind %d", c.Kind)
	}
}

// Attempt is a URL and the credentials to try against it, in order
type Attempt struct {
	URL         string
	Credentials []Credential
}

// Options configures a resolution
type Options struct {
	PreferredKey   PreferredKey
	PrivateKeyPath string
}

// ErrNoURL is returned for a remote without a URL
var ErrNoURL = errors.New("no url set for remote")

// Runner runs git with input on stdin
type Runner interface {
	RunWithInput(ctx context.Context, input string, args ...string) (string, error)
}

// Helper resolves credentials
type Helper struct {
	runner Runner
	tokens oauth2.TokenSource
	log    *slog.Logger
}

// NewHelper creates a Helper. tokens may be nil when no platform token is
// configured.
func NewHelper(runner Runner, tokens oauth2.TokenSource, log *slog.Logger) *Helper {
	if log == nil {
		log = slog.Default()
	}
	return &Helper{runner: runner, tokens: tokens, log: log}
}

// TokenFromEnv returns a static token source for the token in env, or nil
// when the variable is unset
func TokenFromEnv(env string) oauth2.TokenSource {
	if env == "" {
		return nil
	}
	token := os.Getenv(env)
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

// Help returns the ordered attempts for a remote URL
func (h *Helper) Help(ctx context.Context, remoteURL string, opts Options) ([]Attempt, error) {
	if remoteURL == "" {
		return nil, ErrNoURL
	}
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url: %w", err)
	}

	if ep.Protocol == "file" {
		return []Attempt{{URL: remoteURL, Credentials: []Credential{{Kind: KindNoop}}}}, nil
	}

	switch opts.PreferredKey {
	case PreferLocal:
		url := remoteURL
		if ep.Protocol != "ssh" {
			url = AsSSH(ep)
		}
		return []Attempt{{
			URL:         url,
			Credentials: []Credential{{Kind: KindSSHKey, KeyPath: opts.PrivateKeyPath}},
		}}, nil
	case PreferSystem:
		h.log.Error("system executable authentication cannot be resolved in process", "remote", remoteURL)
		return nil, nil
	default:
		url := remoteURL
		if ep.Protocol != "https" {
			url = AsHTTPS(ep)
		}
		return []Attempt{{URL: url, Credentials: h.httpsFlow(ctx, url)}}, nil
	}
}

func (h *Helper) httpsFlow(ctx context.Context, url string) []Credential {
	var flow []Credential
	if c, ok := h.fill(ctx, url); ok {
		flow = append(flow, c)
	}
	if h.tokens != nil {
		token, err := h.tokens.Token()
		switch {
		case err != nil:
			h.log.Debug("platform token unavailable", "error", err)
		case token.AccessToken != "":
			flow = append(flow, Credential{Kind: KindToken, Token: token.AccessToken})
		}
	}
	return flow
}

// fill asks git credential fill for a username and password
func (h *Helper) fill(ctx context.Context, url string) (Credential, bool) {
	if h.runner == nil {
		return Credential{}, false
	}
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return Credential{}, false
	}

	var input strings.Builder
	fmt.Fprintf(&input, "protocol=%s\n", ep.Protocol)
	host := ep.Host
	if ep.Port != 0 {
		host = fmt.Sprintf("%s:%d", ep.Host, ep.Port)
	}
	fmt.Fprintf(&input, "host=%s\n", host)
	if p := strings.TrimPrefix(ep.Path, "/"); p != "" {
		fmt.Fprintf(&input, "path=%s\n", p)
	}
	input.WriteString("\n")

	out, err := h.runner.RunWithInput(ctx, input.String(), "-c", "credential.interactive=never", "credential", "fill")
	if err != nil {
		h.log.Debug("credential helper failed", "url", url, "error", err)
		return Credential{}, false
	}

	c := Credential{Kind: KindHelper}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "username":
			c.Username = value
		case "password":
			c.Password = value
		}
	}
	if c.Username == "" && c.Password == "" {
		return Credential{}, false
	}
	return c, true
}

// AsSSH rewrites an endpoint as an scp-style ssh URL
func AsSSH(ep *transport.Endpoint) string {
	user := ep.User
	if user == "" {
		user = "git"
	}
	return fmt.Sprintf("%s@%s:%s", user, ep.Host, strings.TrimPrefix(ep.Path, "/"))
}

// AsHTTPS rewrites an endpoint as an https URL
func AsHTTPS(ep *transport.Endpoint) string {
	return fmt.Sprintf("https://%s/%s", ep.Host, strings.TrimPrefix(ep.Path, "/"))
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
