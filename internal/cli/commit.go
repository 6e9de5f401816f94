package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/runtime"
)

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit [branch]",
		Short: "Commit the hunks a branch owns",
		Long: `Commit every hunk owned by a branch, identified by id or name. Without an
argument the branch selected for changes is committed.

The committed lines stay locked to the branch: later edits touching them are
assigned to it whatever branch is selected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return errors.New("a commit message is required, pass it with -m")
			}
			return common.Run(cmd, func(ctx *runtime.Context) error {
				ref := ""
				if len(args) > 0 {
					ref = args[0]
				}
				b, err := common.ResolveBranch(ctx, ref)
				if err != nil {
					return err
				}
				sha, err := ctx.Engine.CreateCommit(ctx, b.ID, message)
				if err != nil {
					return err
				}
				ctx.Splog.Info("Committed %s on %s.", sha, b.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message.")

	return cmd
}
