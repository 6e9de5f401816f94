package credentials_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"vbranch.dev/vbranch/internal/credentials"
)

type fakeRunner struct {
	output string
	err    error
	input  string
	args   []string
}

func (f *fakeRunner) RunWithInput(_ context.Context, input string, args ...string) (string, error) {
	f.input = input
	f.args = args
	return f.output, f.err
}

func TestHelpFileRemote(t *testing.T) {
	h := credentials.NewHelper(nil, nil, nil)
	attempts, err := h.Help(context.Background(), "/tmp/remote.git", credentials.Options{PreferredKey: credentials.PreferHelper})
	require.NoError(t, err)
	require.Equal(t, []credentials.Attempt{{
		URL:         "/tmp/remote.git",
		Credentials: []credentials.Credential{{Kind: credentials.KindNoop}},
	}}, attempts)

	auth, err := attempts[0].Credentials[0].AuthMethod()
	require.NoError(t, err)
	require.Nil(t, auth)
}

func TestHelpLocalKey(t *testing.T) {
	h := credentials.NewHelper(nil, nil, nil)
	opts := credentials.Options{PreferredKey: credentials.PreferLocal, PrivateKeyPath: "~/.ssh/id_ed25519"}

	t.Run("https remote is converted to ssh", func(t *testing.T) {
		attempts, err := h.Help(context.Background(), "https://github.com/owner/repo.git", opts)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		require.Equal(t, "git@github.com:owner/repo.git", attempts[0].URL)
		require.Equal(t, credentials.KindSSHKey, attempts[0].Credentials[0].Kind)
		require.Equal(t, "~/.ssh/id_ed25519", attempts[0].Credentials[0].KeyPath)
	})

	t.Run("ssh remote is kept", func(t *testing.T) {
		attempts, err := h.Help(context.Background(), "git@github.com:owner/repo.git", opts)
		require.NoError(t, err)
		require.Equal(t, "git@github.com:owner/repo.git", attempts[0].URL)
	})

	t.Run("missing key file fails to load", func(t *testing.T) {
		c := credentials.Credential{Kind: credentials.KindSSHKey, KeyPath: t.TempDir() + "/missing"}
		_, err := c.AuthMethod()
		require.Error(t, err)
	})
}

func TestHelpCredentialHelper(t *testing.T) {
	runner := &fakeRunner{output: "protocol=https\nhost=github.com\nusername=me\npassword=secret\n"}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	h := credentials.NewHelper(runner, tokens, nil)

	attempts, err := h.Help(context.Background(), "git@github.com:owner/repo.git", credentials.Options{PreferredKey: credentials.PreferHelper})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.Equal(t, "https://github.com/owner/repo.git", attempts[0].URL)
	require.Equal(t, []credentials.Credential{
		{Kind: credentials.KindHelper, Username: "me", Password: "secret"},
		{Kind: credentials.KindToken, Token: "tok"},
	}, attempts[0].Credentials)

	require.Equal(t, "protocol=https\nhost=github.com\npath=owner/repo.git\n\n", runner.input)
	require.Equal(t, []string{"-c", "credential.interactive=never", "credential", "fill"}, runner.args)

	auth, err := attempts[0].Credentials[1].AuthMethod()
	require.NoError(t, err)
	require.Equal(t, &http.BasicAuth{Username: "git", Password: "tok"}, auth)

	t.Run("failing helper leaves only the token", func(t *testing.T) {
		h := credentials.NewHelper(&fakeRunner{err: errors.New("boom")}, tokens, nil)
		attempts, err := h.Help(context.Background(), "https://github.com/owner/repo.git", credentials.Options{})
		require.NoError(t, err)
		require.Equal(t, []credentials.Credential{{Kind: credentials.KindToken, Token: "tok"}}, attempts[0].Credentials)
	})

	t.Run("nothing configured yields an empty flow", func(t *testing.T) {
		h := credentials.NewHelper(&fakeRunner{}, nil, nil)
		attempts, err := h.Help(context.Background(), "https://github.com/owner/repo.git", credentials.Options{})
		require.NoError(t, err)
		require.Empty(t, attempts[0].Credentials)
	})
}

func TestHelpSystemAndErrors(t *testing.T) {
	h := credentials.NewHelper(nil, nil, nil)

	attempts, err := h.Help(context.Background(), "https://github.com/owner/repo.git", credentials.Options{PreferredKey: credentials.PreferSystem})
	require.NoError(t, err)
	require.Empty(t, attempts)

	_, err = h.Help(context.Background(), "", credentials.Options{})
	require.ErrorIs(t, err, credentials.ErrNoURL)
}

func TestParsePreferredKey(t *testing.T) {
	for _, s := range []string{"local", "helper", "system"} {
		k, err := credentials.ParsePreferredKey(s)
		require.NoError(t, err)
		require.Equal(t, credentials.PreferredKey(s), k)
	}
	_, err := credentials.ParsePreferredKey("magic")
	require.Error(t, err)
}

func TestTokenFromEnv(t *testing.T) {
	t.Setenv("VBRANCH_TEST_TOKEN", "")
	require.Nil(t, credentials.TokenFromEnv("VBRANCH_TEST_TOKEN"))

	t.Setenv("VBRANCH_TEST_TOKEN", "abc")
	src := credentials.TokenFromEnv("VBRANCH_TEST_TOKEN")
	require.NotNil(t, src)
	tok, err := src.Token()
	require.NoError(t, err)
	require.Equal(t, "abc", tok.AccessToken)
}

func TestURLConversion(t *testing.T) {
	ep, err := transport.NewEndpoint("ssh://git@example.com/group/repo.git")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/group/repo.git", credentials.AsHTTPS(ep))
	require.Equal(t, "git@example.com:group/repo.git", credentials.AsSSH(ep))
}
