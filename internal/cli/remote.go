package cli

import (
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/runtime"
)

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [branch]",
		Short: "Push a branch's commits to the target remote",
		Args:  cobra.MaximumNArgs(1),
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
				remoteRef, err := ctx.Engine.Push(ctx, b.ID)
				if err != nil {
					return err
				}
				ctx.Splog.Info("Pushed %s to %s.", b.Name, remoteRef)
				return nil
			})
		},
	}
}

// newFetchCmd creates the fetch command
func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the target remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if err := ctx.Engine.Fetch(ctx); err != nil {
					return err
				}
				ctx.Splog.Info("Fetched.")
				return nil
			})
		},
	}
}
