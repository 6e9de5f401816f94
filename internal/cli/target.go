package cli

import (
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/runtime"
)

// newTargetCmd creates the target command
func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Set or show the upstream branch virtual branches build on",
	}
	cmd.AddCommand(newTargetSetCmd())
	cmd.AddCommand(newTargetShowCmd())
	return cmd
}

func newTargetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <ref>",
		Short: "Set the target to a remote tracking ref",
		Long: `Set the target to a remote tracking ref such as refs/remotes/origin/main.

Committed branch changes and ownership are reset: every change in the working
directory shows up again as uncommitted hunks on top of the new target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				target, err := ctx.Engine.SetTarget(ctx, args[0])
				if err != nil {
					return err
				}
				ctx.Splog.Info("Target set to %s at %s.", target.Ref(), target.Sha)
				return nil
			})
		},
	}
}

func newTargetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				target, ok := ctx.Engine.Target()
				if !ok {
					return vberrors.NewInvalidTargetError("", "no target set", nil)
				}
				ctx.Splog.Info("%s (%s) at %s", target.Ref(), target.RemoteURL, target.Sha)
				return nil
			})
		},
	}
}
