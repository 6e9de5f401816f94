package branch

import (
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/engine"
	"vbranch.dev/vbranch/internal/runtime"
)

// NewUpdateCmd creates the branch update command
func NewUpdateCmd() *cobra.Command {
	var (
		name     string
		selected bool
		own      []string
	)

	cmd := &cobra.Command{
		Use:   "update [branch]",
		Short: "Rename a branch, change the selection or claim hunks",
		Long: `Update a virtual branch, identified by id or name. Without an argument the
branch selected for changes is updated.

Hunks claimed with --own are taken from every other branch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				ref := ""
				if len(args) > 0 {
					ref = args[0]
				}
				b, err := common.ResolveBranch(ctx, ref)
				if err != nil {
					return err
				}
				claims, err := common.ParseClaims(own)
				if err != nil {
					return err
				}

				opts := engine.UpdateOptions{Ownership: claims}
				if cmd.Flags().Changed("name") {
					opts.Name = &name
				}
				if cmd.Flags().Changed("selected") {
					opts.SelectedForChanges = &selected
				}
				updated, err := ctx.Engine.UpdateBranch(ctx, b.ID, opts)
				if err != nil {
					return err
				}
				ctx.Splog.Info("Updated branch %s.", updated.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New branch name.")
	cmd.Flags().BoolVar(&selected, "selected", false, "Select or deselect the branch for changes.")
	cmd.Flags().StringArrayVar(&own, "own", nil, "Claim a hunk as path:start-end. Can be repeated.")

	return cmd
}
