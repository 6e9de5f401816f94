package cli

import (
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/runtime"
)

// newUnapplyCmd creates the unapply command
func newUnapplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unapply <branch>",
		Short: "Turn a virtual branch into a real branch and remove its changes",
		Long: `Unapply a virtual branch. Uncommitted hunks it owns are saved as a WIP commit,
its head is stored under refs/heads and its changes leave the working
directory. Use apply to bring it back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				b, err := common.ResolveBranch(ctx, args[0])
				if err != nil {
					return err
				}
				ref, err := ctx.Engine.ConvertToRealBranch(ctx, b.ID)
				if err != nil {
					return err
				}
				ctx.Splog.Info("Unapplied %s into %s.", b.Name, ref)
				return nil
			})
		},
	}
}

// newApplyCmd creates the apply command
func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <ref>",
		Short: "Apply a real branch as a new virtual branch",
		Long: `Apply a real branch, such as refs/heads/feature, as a new virtual branch. The
branch's changes since the target are written to the working directory and its
commits are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				b, err := ctx.Engine.CreateBranchFromRef(ctx, args[0])
				if err != nil {
					return err
				}
				ctx.Splog.Info("Applied %s as %s (%s).", args[0], b.Name, b.ID)
				return nil
			})
		},
	}
}
