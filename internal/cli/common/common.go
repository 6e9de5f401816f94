// Package common provides shared helper functions for CLI commands.
package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/engine"
	vberrors "vbranch.dev/vbranch/internal/errors"
	"vbranch.dev/vbranch/internal/output"
	"vbranch.dev/vbranch/internal/ownership"
	"vbranch.dev/vbranch/internal/runtime"
)

// Run is a helper that provides a runtime context to a command's execution function.
// The repository is found from the --cwd flag and console output goes to the
// command's output stream.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	dir, _ := cmd.Flags().GetString("cwd")
	if dir == "" {
		dir = "."
	}
	ctx, err := runtime.GetContext(cmd.Context(), dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()

	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		ctx.Splog.SetQuiet(true)
	}
	return fn(ctx)
}

// ResolveBranch finds a branch by id or name. An empty ref resolves to the
// branch selected for changes.
func ResolveBranch(ctx *runtime.Context, ref string) (branch.VirtualBranch, error) {
	listing, err := ctx.Engine.ListBranches(ctx, branch.FilterAll)
	if err != nil {
		return branch.VirtualBranch{}, err
	}

	if ref == "" {
		for _, b := range listing.Branches {
			if b.SelectedForChanges {
				return b.VirtualBranch, nil
			}
		}
		return branch.VirtualBranch{}, fmt.Errorf("no branch is selected for changes")
	}

	if b, ok := listing.Find(ref); ok {
		return b.VirtualBranch, nil
	}
	var matches []branch.VirtualBranch
	for _, b := range listing.Branches {
		if b.Name == ref {
			matches = append(matches, b.VirtualBranch)
		}
	}
	switch len(matches) {
	case 0:
		return branch.VirtualBranch{}, vberrors.NewBranchNotFoundError(ref)
	case 1:
		return matches[0], nil
	default:
		return branch.VirtualBranch{}, fmt.Errorf("branch name %q matches %d branches, use its id", ref, len(matches))
	}
}

// ParseClaims parses repeated path:start-end flag values
func ParseClaims(values []string) ([]ownership.Claim, error) {
	if len(values) == 0 {
		return nil, nil
	}
	claims := make([]ownership.Claim, 0, len(values))
	for _, v := range values {
		c, err := ownership.ParseClaim(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, nil
}

// PrintBranches renders the branch list, warning about hunks no branch took
func PrintBranches(ctx *runtime.Context, filter branch.Filter) error {
	listing, err := ctx.Engine.ListBranches(ctx, filter)
	if err != nil {
		return err
	}
	if len(listing.Branches) == 0 {
		ctx.Splog.Info("No virtual branches.")
	} else {
		ctx.Splog.Page(output.RenderBranches(Listings(listing)))
	}
	if n := len(listing.Orphans); n > 0 {
		ctx.Splog.Warn("%d hunk(s) are not owned by any branch", n)
		ctx.Splog.Tip("create a branch with `vbranch branch create` to take them")
	}
	return nil
}

// Listings converts an engine listing into renderable rows
func Listings(listing engine.Listing) []output.BranchListing {
	out := make([]output.BranchListing, 0, len(listing.Branches))
	for _, b := range listing.Branches {
		locked := make(map[string]bool)
		for _, p := range b.Placements {
			if p.Reason == ownership.ReasonLocked {
				locked[output.LockKey(p.Hunk)] = true
			}
		}
		out = append(out, output.BranchListing{
			Branch: b.VirtualBranch,
			Files:  b.Files,
			Locked: locked,
		})
	}
	return out
}

// IsTTY returns true if stdin and stdout are terminals
func IsTTY() bool {
	return (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(message string) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
