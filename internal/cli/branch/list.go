package branch

import (
	"github.com/spf13/cobra"

	vbranch "vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/cli/common"
	"vbranch.dev/vbranch/internal/runtime"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List virtual branches with their files, hunks and commits",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				filter := vbranch.FilterActive
				if all {
					filter = vbranch.FilterAll
				}
				return common.PrintBranches(ctx, filter)
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include unapplied branches.")

	return cmd
}
