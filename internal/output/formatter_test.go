package output_test

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/hunk"
	"vbranch.dev/vbranch/internal/output"
)

func TestRenderBranches(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	fd := hunk.Compute("file.txt", "a\nb\n", "a\nB\n", hunk.StatusModified)
	listings := []output.BranchListing{
		{
			Branch: branch.VirtualBranch{
				ID:                 "id-1",
				Name:               "feature",
				Active:             true,
				SelectedForChanges: true,
				Commits:            []branch.Commit{{ID: "0123456789abcdef", Message: "first\n\nbody"}},
			},
			Files:  hunk.Diff{fd},
			Locked: map[string]bool{output.LockKey(fd.Hunks[0]): true},
		},
		{
			Branch: branch.VirtualBranch{ID: "id-2", Name: "parked", Ref: "refs/heads/parked"},
		},
	}

	out := output.RenderBranches(listings)
	require.Contains(t, out, "◉ feature (active+selected, id-1)")
	require.Contains(t, out, "  M file.txt\n")
	require.Contains(t, out, "    @@ -2,1 +2,1 @@ locked\n")
	require.Contains(t, out, "  0123456 first\n")
	require.Contains(t, out, "◯ parked (deactivated, id-2)")
	require.Contains(t, out, "→ refs/heads/parked")
}

func TestSplogQuiet(t *testing.T) {
	var buf bytes.Buffer
	splog, err := output.NewSplogWithConfig(&buf, "")
	require.NoError(t, err)

	splog.Info("hello %s", "world")
	splog.Warn("careful")
	splog.SetQuiet(true)
	splog.Info("hidden")
	splog.Page("hidden page")

	require.Equal(t, "hello world\n⚠️  careful\n", buf.String())
	require.NoError(t, splog.Close())
}

func TestSplogFile(t *testing.T) {
	path := t.TempDir() + "/logs/vbranch.log"
	var buf bytes.Buffer
	splog, err := output.NewSplogWithConfig(&buf, path)
	require.NoError(t, err)
	splog.Debug("only in file")
	require.NoError(t, splog.Close())
	require.FileExists(t, path)
}
