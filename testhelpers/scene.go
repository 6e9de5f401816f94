package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir  string
	Repo *GitRepo
	// TargetSha is the commit of refs/remotes/origin/main once TargetSceneSetup ran
	TargetSha string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a scene in a temporary directory removed by the test cleanup.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	dir := t.TempDir()

	repo, err := NewGitRepo(dir)
	require.NoError(t, err, "failed to create Git repo")

	scene := &Scene{Dir: dir, Repo: repo}
	if setup != nil {
		require.NoError(t, setup(scene), "setup failed")
	}
	return scene
}

// TargetRef is the upstream ref created by TargetSceneSetup
const TargetRef = "refs/remotes/origin/main"

// TargetSceneSetup returns a setup that commits files on main, adds a bare
// origin remote and points refs/remotes/origin/main at the commit.
func TargetSceneSetup(files map[string]string) SceneSetup {
	return func(s *Scene) error {
		for name, content := range files {
			if err := s.Repo.WriteFile(name, content); err != nil {
				return err
			}
		}
		sha, err := s.Repo.CommitAll("initial commit")
		if err != nil {
			return err
		}
		if _, err := s.Repo.CreateBareRemote("origin"); err != nil {
			return err
		}
		if err := s.Repo.SetRemoteRef("origin", "main", sha); err != nil {
			return err
		}
		s.TargetSha = sha
		return nil
	}
}

// BasicSceneSetup commits a single file and sets up the origin/main target.
var BasicSceneSetup = TargetSceneSetup(map[string]string{"test.txt": "initial\n"})
