package branch

import (
	"fmt"

	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/runtime"
)

// NewDeleteCmd creates the branch delete command
func NewDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <branch>",
		Short: "Delete a virtual branch and its changes",
		Long: `Delete a virtual branch, identified by id or name.

The branch's committed and uncommitted changes are removed from the working
directory. Prompts for confirmation in an interactive terminal unless --force
is given. Deleting an unapplied branch only forgets its record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				b, err := common.ResolveBranch(ctx, args[0])
				if err != nil {
					return err
				}

				if !force && b.Active && common.IsTTY() {
					ok, err := common.Confirm(fmt.Sprintf("Delete branch %s and discard its changes?", b.Name))
					if err != nil {
						return err
					}
					if !ok {
						ctx.Splog.Info("Aborted.")
						return nil
					}
				}

				if err := ctx.Engine.DeleteBranch(ctx, b.ID); err != nil {
					return err
				}
				ctx.Splog.Info("Deleted branch %s.", b.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking for confirmation.")

	return cmd
}
