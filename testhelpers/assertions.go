package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectFile asserts a working directory file has the expected content.
func ExpectFile(t *testing.T, repo *GitRepo, name, expected string) {
	t.Helper()
	content, err := repo.ReadFile(name)
	require.NoError(t, err, "failed to read %s", name)
	require.Equal(t, expected, content, "content of %s", name)
}

// ExpectNoFile asserts a working directory file does not exist.
func ExpectNoFile(t *testing.T, repo *GitRepo, name string) {
	t.Helper()
	require.False(t, repo.FileExists(name), "%s should not exist", name)
}

// ExpectCommitFiles asserts the files of a commit.
func ExpectCommitFiles(t *testing.T, repo *GitRepo, sha string, expected map[string]string) {
	t.Helper()
	files, err := repo.CommitFiles(sha)
	require.NoError(t, err)
	require.Equal(t, expected, files)
}
