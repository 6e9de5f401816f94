package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/credentials"
	"vbranch.dev/vbranch/testhelpers"
)

func TestRepoConfigDefaults(t *testing.T) {
	t.Setenv("VBRANCH_LOG_FILE", "")
	scene := testhelpers.NewScene(t, nil)

	config, err := GetRepoConfig(scene.Dir)
	require.NoError(t, err)
	require.True(t, config.AutoCreate())
	require.Equal(t, "Virtual branch", config.BranchName())
	require.Equal(t, credentials.Options{PreferredKey: credentials.PreferHelper}, config.CredentialOptions())
	require.Equal(t, "GITHUB_TOKEN", config.TokenEnvVar())
	require.Empty(t, config.LogFilePath())
}

func TestRepoConfigRoundTrip(t *testing.T) {
	t.Setenv("VBRANCH_LOG_FILE", "")
	scene := testhelpers.NewScene(t, nil)

	config, err := GetRepoConfig(scene.Dir)
	require.NoError(t, err)
	require.NoError(t, config.Set("autoCreateBranch", "false"))
	require.NoError(t, config.Set("defaultBranchName", "Lane"))
	require.NoError(t, config.Set("preferredKey", "local"))
	require.NoError(t, config.Set("privateKeyPath", "~/.ssh/id_rsa"))
	require.NoError(t, config.Set("logFile", "/tmp/vbranch.log"))
	require.NoError(t, config.Save(scene.Dir))

	loaded, err := GetRepoConfig(scene.Dir)
	require.NoError(t, err)
	require.False(t, loaded.AutoCreate())
	require.Equal(t, "Lane", loaded.BranchName())
	require.Equal(t, credentials.Options{PreferredKey: credentials.PreferLocal, PrivateKeyPath: "~/.ssh/id_rsa"}, loaded.CredentialOptions())
	require.Equal(t, "/tmp/vbranch.log", loaded.LogFilePath())

	t.Run("environment overrides the log file", func(t *testing.T) {
		t.Setenv("VBRANCH_LOG_FILE", "/var/log/other.log")
		require.Equal(t, "/var/log/other.log", loaded.LogFilePath())
	})
}

func TestRepoConfigRejectsBadValues(t *testing.T) {
	scene := testhelpers.NewScene(t, nil)
	config := &RepoConfig{}

	require.Error(t, config.Set("autoCreateBranch", "maybe"))
	require.Error(t, config.Set("preferredKey", "magic"))
	require.Error(t, config.Set("nope", "x"))

	path := filepath.Join(scene.Dir, ".git", FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"preferredKey":"magic"}`), 0600))
	_, err := GetRepoConfig(scene.Dir)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))
	_, err = GetRepoConfig(scene.Dir)
	require.Error(t, err)
}

func TestRepoConfigGet(t *testing.T) {
	t.Setenv("VBRANCH_LOG_FILE", "")
	config := &RepoConfig{}

	for _, key := range Keys {
		_, err := config.Get(key)
		require.NoError(t, err, key)
	}

	value, err := config.Get("autoCreateBranch")
	require.NoError(t, err)
	require.Equal(t, "true", value)

	require.NoError(t, config.Set("defaultBranchName", "Lane"))
	value, err = config.Get("defaultBranchName")
	require.NoError(t, err)
	require.Equal(t, "Lane", value)

	value, err = config.Get("preferredKey")
	require.NoError(t, err)
	require.Equal(t, "helper", value)

	_, err = config.Get("nope")
	require.Error(t, err)
}
