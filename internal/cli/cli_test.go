package cli_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/cli"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/ownership"
	"vbranch.dev/vbranch/internal/runtime"
	"vbranch.dev/vbranch/testhelpers"
)

// run executes vbranch in dir and returns everything it printed
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd("test", "none", "unknown")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--cwd", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

// newScene creates a repository with the target already set
func newScene(t *testing.T, files map[string]string) *testhelpers.Scene {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.TargetSceneSetup(files))
	mustRun(t, scene.Dir, "target", "set", testhelpers.TargetRef)
	return scene
}

func TestTarget(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	t.Run("operations fail before a target is set", func(t *testing.T) {
		_, err := run(t, scene.Dir, "list")
		require.ErrorIs(t, err, vberrors.ErrInvalidTarget)
		_, err = run(t, scene.Dir, "target", "show")
		require.ErrorIs(t, err, vberrors.ErrInvalidTarget)
	})

	t.Run("rejects refs that are not remote tracking refs", func(t *testing.T) {
		_, err := run(t, scene.Dir, "target", "set", "main")
		require.ErrorIs(t, err, vberrors.ErrInvalidTarget)
	})

	t.Run("set and show", func(t *testing.T) {
		out := mustRun(t, scene.Dir, "target", "set", testhelpers.TargetRef)
		require.Contains(t, out, "Target set to "+testhelpers.TargetRef)
		out = mustRun(t, scene.Dir, "target", "show")
		require.Contains(t, out, scene.TargetSha)
	})
}

func TestListCreatesDefaultBranch(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))

	out := mustRun(t, scene.Dir, "list")
	require.Contains(t, out, "Virtual branch")
	require.Contains(t, out, "a.txt")
	require.NotContains(t, out, "not owned")
}

func TestListWarnsAboutOrphans(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	mustRun(t, scene.Dir, "config", "set", "autoCreateBranch", "false")
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))

	out := mustRun(t, scene.Dir, "list")
	require.Contains(t, out, "No virtual branches.")
	require.Contains(t, out, "1 hunk(s) are not owned by any branch")
}

func TestCommitAndUnapply(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	out := mustRun(t, scene.Dir, "branch", "create", "feature")
	require.Contains(t, out, "Created branch feature")
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))

	t.Run("commit requires a message", func(t *testing.T) {
		_, err := run(t, scene.Dir, "commit", "feature")
		require.Error(t, err)
	})

	t.Run("commit by branch name", func(t *testing.T) {
		out := mustRun(t, scene.Dir, "commit", "feature", "-m", "change a")
		require.Contains(t, out, "Committed")
		out = mustRun(t, scene.Dir, "list")
		require.Contains(t, out, "change a")
	})

	t.Run("nothing left to commit", func(t *testing.T) {
		_, err := run(t, scene.Dir, "commit", "-m", "again")
		require.ErrorIs(t, err, vberrors.ErrNoChanges)
	})

	t.Run("unknown branch", func(t *testing.T) {
		_, err := run(t, scene.Dir, "commit", "missing", "-m", "msg")
		require.ErrorIs(t, err, vberrors.ErrNotFound)
	})

	t.Run("unapply and apply", func(t *testing.T) {
		out := mustRun(t, scene.Dir, "unapply", "feature")
		require.Contains(t, out, "refs/heads/feature")
		testhelpers.ExpectFile(t, scene.Repo, "a.txt", "a\n")

		sha, err := scene.Repo.GetRef("refs/heads/feature")
		require.NoError(t, err)
		testhelpers.ExpectCommitFiles(t, scene.Repo, sha, map[string]string{"a.txt": "a changed\n"})

		out = mustRun(t, scene.Dir, "list", "--all")
		require.Contains(t, out, "feature")
		require.Contains(t, out, "refs/heads/feature")

		out = mustRun(t, scene.Dir, "apply", "refs/heads/feature")
		require.Contains(t, out, "Applied refs/heads/feature as feature")
		testhelpers.ExpectFile(t, scene.Repo, "a.txt", "a changed\n")
	})
}

func TestBranchUpdate(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	mustRun(t, scene.Dir, "branch", "create", "first")
	mustRun(t, scene.Dir, "branch", "create", "second")
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))

	ctx, err := runtime.GetContext(context.Background(), scene.Dir, io.Discard)
	require.NoError(t, err)
	listing, err := ctx.Engine.ListBranches(ctx, branch.FilterActive)
	require.NoError(t, err)
	require.NoError(t, ctx.Close())
	require.Len(t, listing.Branches[0].Files, 1, "new hunks go to the selected branch")
	claim := ownership.ClaimOf(listing.Branches[0].Files[0].Hunks[0]).String()

	t.Run("claim a hunk for another branch", func(t *testing.T) {
		out := mustRun(t, scene.Dir, "branch", "update", "second", "--own", claim)
		require.Contains(t, out, "Updated branch second")

		ctx, err := runtime.GetContext(context.Background(), scene.Dir, io.Discard)
		require.NoError(t, err)
		defer func() { _ = ctx.Close() }()
		listing, err := ctx.Engine.ListBranches(ctx, branch.FilterActive)
		require.NoError(t, err)
		require.Empty(t, listing.Branches[0].Files)
		require.Len(t, listing.Branches[1].Files, 1)
	})

	t.Run("rename and select", func(t *testing.T) {
		mustRun(t, scene.Dir, "branch", "update", "second", "--name", "renamed", "--selected")
		out := mustRun(t, scene.Dir, "branch", "list")
		require.Contains(t, out, "renamed")
		require.NotContains(t, out, "second")
	})

	t.Run("invalid claim", func(t *testing.T) {
		_, err := run(t, scene.Dir, "branch", "update", "first", "--own", "a.txt")
		require.Error(t, err)
	})
}

func TestBranchDelete(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	mustRun(t, scene.Dir, "branch", "create", "doomed")
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))
	mustRun(t, scene.Dir, "list")

	out := mustRun(t, scene.Dir, "branch", "delete", "doomed", "--force")
	require.Contains(t, out, "Deleted branch doomed")
	testhelpers.ExpectFile(t, scene.Repo, "a.txt", "a\n")

	_, err := run(t, scene.Dir, "branch", "delete", "doomed", "--force")
	require.ErrorIs(t, err, vberrors.ErrNotFound)
}

func TestPush(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})
	mustRun(t, scene.Dir, "branch", "create", "feature")
	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))
	mustRun(t, scene.Dir, "commit", "-m", "change a")

	out := mustRun(t, scene.Dir, "push", "feature")
	require.Contains(t, out, "refs/heads/feature")
	mustRun(t, scene.Dir, "fetch")

	sha, err := scene.Repo.GetRef("refs/remotes/origin/feature")
	require.NoError(t, err)
	testhelpers.ExpectCommitFiles(t, scene.Repo, sha, map[string]string{"a.txt": "a changed\n"})
}

func TestConfig(t *testing.T) {
	scene := newScene(t, map[string]string{"a.txt": "a\n"})

	out := mustRun(t, scene.Dir, "config", "get", "defaultBranchName")
	require.Equal(t, "Virtual branch\n", out)

	mustRun(t, scene.Dir, "config", "set", "defaultBranchName", "Work")
	out = mustRun(t, scene.Dir, "config", "get", "defaultBranchName")
	require.Equal(t, "Work\n", out)

	_, err := run(t, scene.Dir, "config", "set", "preferredKey", "nonsense")
	require.Error(t, err)
	_, err = run(t, scene.Dir, "config", "get", "nope")
	require.Error(t, err)

	require.NoError(t, scene.Repo.WriteFile("a.txt", "a changed\n"))
	out = mustRun(t, scene.Dir, "list")
	require.Contains(t, out, "Work")
}
