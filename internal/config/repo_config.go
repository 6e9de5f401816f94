package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vbranch.dev/vbranch/internal/credentials"
)

// FileName is the config file name inside the .git directory
const FileName = ".vbranch_config"

const (
	defaultBranchName = "Virtual branch"
	defaultTokenEnv   = "GITHUB_TOKEN"
)

// RepoConfig represents the repository configuration
type RepoConfig struct {
	AutoCreateBranch  *bool   `json:"autoCreateBranch,omitempty"`
	DefaultBranchName *string `json:"defaultBranchName,omitempty"`
	PreferredKey      *string `json:"preferredKey,omitempty"`
	PrivateKeyPath    *string `json:"privateKeyPath,omitempty"`
	TokenEnv          *string `json:"tokenEnv,omitempty"`
	LogFile           *string `json:"logFile,omitempty"`
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", FileName)
}

// GetRepoConfig reads the repository configuration. A missing file yields
// the defaults.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(configPath(repoRoot))
	if errors.Is(err, os.ErrNotExist) {
		return &RepoConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var config RepoConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	if config.PreferredKey != nil {
		if _, err := credentials.ParsePreferredKey(*config.PreferredKey); err != nil {
			return nil, fmt.Errorf("invalid repo config: %w", err)
		}
	}
	return &config, nil
}

// Save writes the configuration
func (c *RepoConfig) Save(repoRoot string) error {
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(configPath(repoRoot), configJSON, 0600)
}

// AutoCreate reports whether listing creates a branch for orphan hunks, true by default
func (c *RepoConfig) AutoCreate() bool {
	if c.AutoCreateBranch != nil {
		return *c.AutoCreateBranch
	}
	return true
}

// BranchName returns the name for branches created without one
func (c *RepoConfig) BranchName() string {
	if c.DefaultBranchName != nil && *c.DefaultBranchName != "" {
		return *c.DefaultBranchName
	}
	return defaultBranchName
}

// CredentialOptions returns the authentication preferences, helper by default
func (c *RepoConfig) CredentialOptions() credentials.Options {
	opts := credentials.Options{PreferredKey: credentials.PreferHelper}
	if c.PreferredKey != nil {
		opts.PreferredKey = credentials.PreferredKey(*c.PreferredKey)
	}
	if c.PrivateKeyPath != nil {
		opts.PrivateKeyPath = *c.PrivateKeyPath
	}
	return opts
}

// TokenEnvVar returns the variable holding a platform token
func (c *RepoConfig) TokenEnvVar() string {
	if c.TokenEnv != nil {
		return *c.TokenEnv
	}
	return defaultTokenEnv
}

// LogFilePath returns the log file, or empty when file logging is off.
// VBRANCH_LOG_FILE overrides the configured path.
func (c *RepoConfig) LogFilePath() string {
	if custom := os.Getenv("VBRANCH_LOG_FILE"); custom != "" {
		return custom
	}
	if c.LogFile != nil {
		return *c.LogFile
	}
	return ""
}

// Keys lists the configuration keys accepted by Get and Set
var Keys = []string{"autoCreateBranch", "defaultBranchName", "preferredKey", "privateKeyPath", "tokenEnv", "logFile"}

// Get returns the effective value of one key by its JSON name
func (c *RepoConfig) Get(key string) (string, error) {
	switch key {
	case "autoCreateBranch":
		return strconv.FormatBool(c.AutoCreate()), nil
	case "defaultBranchName":
		return c.BranchName(), nil
	case "preferredKey":
		return string(c.CredentialOptions().PreferredKey), nil
	case "privateKeyPath":
		return c.CredentialOptions().PrivateKeyPath, nil
	case "tokenEnv":
		return c.TokenEnvVar(), nil
	case "logFile":
		return c.LogFilePath(), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set updates one key of the configuration by its JSON name
func (c *RepoConfig) Set(key, value string) error {
	switch key {
	case "autoCreateBranch":
		switch value {
		case "true":
			c.AutoCreateBranch = boolPtr(true)
		case "false":
			c.AutoCreateBranch = boolPtr(false)
		default:
			return fmt.Errorf("autoCreateBranch must be true or false, got %q", value)
		}
	case "defaultBranchName":
		c.DefaultBranchName = &value
	case "preferredKey":
		if _, err := credentials.ParsePreferredKey(value); err != nil {
			return err
		}
		c.PreferredKey = &value
	case "privateKeyPath":
		c.PrivateKeyPath = &value
	case "tokenEnv":
		c.TokenEnv = &value
	case "logFile":
		c.LogFile = &value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
