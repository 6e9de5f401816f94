// Package branch provides CLI commands for managing virtual branches.
package branch

import (
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/engine"
	"vbranch.dev/vbranch/internal/runtime"
)

// NewBranchCmd groups the virtual branch commands
func NewBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branch",
		Aliases: []string{"b"},
		Short:   "Create, update, delete and list virtual branches",
	}
	cmd.AddCommand(NewCreateCmd())
	cmd.AddCommand(NewUpdateCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewListCmd())
	return cmd
}

// NewCreateCmd creates the branch create command
func NewCreateCmd() *cobra.Command {
	var (
		name     string
		selected bool
		own      []string
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new virtual branch",
		Long: `Create a new virtual branch on top of the target.

The first applied branch is selected for changes. Pass --selected to make the
new branch receive new hunks instead of the current selection, and --own to
move hunks to it right away.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if len(args) > 0 {
					name = args[0]
				}
				claims, err := common.ParseClaims(own)
				if err != nil {
					return err
				}

				opts := engine.CreateOptions{Name: name, Ownership: claims}
				if cmd.Flags().Changed("selected") {
					opts.SelectedForChanges = &selected
				}
				b, err := ctx.Engine.CreateBranch(ctx, opts)
				if err != nil {
					return err
				}
				ctx.Splog.Info("Created branch %s (%s).", b.Name, b.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Branch name. Defaults to the configured default branch name.")
	cmd.Flags().BoolVar(&selected, "selected", false, "Select the new branch for changes.")
	cmd.Flags().StringArrayVar(&own, "own", nil, "Claim a hunk as path:start-end. Can be repeated.")

	return cmd
}
