package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/config"
	"vbranch.dev/vbranch/internal/git"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set repository configuration",
		Long: `Get and set repository configuration values.

Keys: ` + strings.Join(config.Keys, ", ") + `

Examples:
  vbranch config get defaultBranchName
  vbranch config set autoCreateBranch false
  vbranch config set preferredKey local`,
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

// newConfigGetCmd creates the config get command
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

// newConfigSetCmd creates the config set command
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(repoRoot); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

// loadConfig reads the config of the repository without loading branch state
func loadConfig(cmd *cobra.Command) (string, *config.RepoConfig, error) {
	dir, _ := cmd.Flags().GetString("cwd")
	if dir == "" {
		dir = "."
	}
	repo, err := git.Open(dir)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.GetRepoConfig(repo.Root())
	if err != nil {
		return "", nil, err
	}
	return repo.Root(), cfg, nil
}
