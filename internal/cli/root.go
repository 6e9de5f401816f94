// Package cli wires the vbranch commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/branch"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vbranch",
		Short: "vbranch works on several branches at once in a single working directory",
		Long: `vbranch works on several branches at once in a single working directory.

Every uncommitted hunk belongs to exactly one virtual branch. New hunks go to the
branch selected for changes, and hunks touching lines a branch already committed
stay with that branch.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().String("cwd", "", "Run as if vbranch was started in this directory.")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress console output.")

	// Add subcommands
	rootCmd.AddCommand(newTargetCmd())
	rootCmd.AddCommand(branch.NewBranchCmd())
	rootCmd.AddCommand(branch.NewListCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newUnapplyCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}
