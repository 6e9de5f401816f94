package testhelpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/testhelpers"
)

func TestTargetScene(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	sha, err := scene.Repo.GetRef(testhelpers.TargetRef)
	require.NoError(t, err)
	require.Equal(t, scene.TargetSha, sha)
	testhelpers.ExpectCommitFiles(t, scene.Repo, sha, map[string]string{"test.txt": "initial\n"})
}

func TestGitRepoBasicOperations(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)

	require.NoError(t, scene.Repo.WriteFile("dir/a.txt", "a\n"))
	testhelpers.ExpectFile(t, scene.Repo, "dir/a.txt", "a\n")

	first, err := scene.Repo.CommitAll("first")
	require.NoError(t, err)

	require.NoError(t, scene.Repo.RemoveFile("dir/a.txt"))
	testhelpers.ExpectNoFile(t, scene.Repo, "dir/a.txt")
	second, err := scene.Repo.CommitAll("second")
	require.NoError(t, err)

	messages, err := scene.Repo.CommitMessages(second)
	require.NoError(t, err)
	require.Equal(t, []string{"second", "first"}, messages)

	testhelpers.ExpectCommitFiles(t, scene.Repo, first, map[string]string{"dir/a.txt": "a\n"})
	testhelpers.ExpectCommitFiles(t, scene.Repo, second, map[string]string{})
}
