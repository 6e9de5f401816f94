package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vbranch.dev/vbranch/internal/branch"
	"vbranch.dev/vbranch/internal/hunk"
)

// BranchColor returns a styled string with the palette color for a branch index
func BranchColor(text string, index int) string {
	if len(BranchColors) == 0 {
		return text
	}
	color := BranchColors[index%len(BranchColors)]
	hexColor := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", color[0], color[1], color[2]))
	return lipgloss.NewStyle().Foreground(hexColor).Render(text)
}

// ColorSelected marks the branch that receives new changes
func ColorSelected(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Bold(true).
		Render(text)
}

// ColorLocked colors hunks that are pinned by a committed change
func ColorLocked(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(text)
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}

// BranchListing is everything shown for one branch
type BranchListing struct {
	Branch branch.VirtualBranch
	Files  hunk.Diff
	Locked map[string]bool // hunk Header keyed by path, see LockKey
}

// LockKey identifies a locked hunk in BranchListing.Locked
func LockKey(h hunk.Hunk) string {
	return h.Path + " " + h.Header()
}

// RenderBranches renders a branch list for the terminal
func RenderBranches(listings []BranchListing) string {
	var sb strings.Builder
	for i, l := range listings {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderBranch(&sb, i, l)
	}
	return sb.String()
}

func renderBranch(sb *strings.Builder, index int, l BranchListing) {
	b := l.Branch
	marker := "◯"
	if b.SelectedForChanges {
		marker = "◉"
	}
	title := fmt.Sprintf("%s %s", marker, b.Name)
	if b.SelectedForChanges {
		title = ColorSelected(title)
	} else {
		title = BranchColor(title, index)
	}
	fmt.Fprintf(sb, "%s %s\n", title, ColorDim(fmt.Sprintf("(%s, %s)", branch.StateOf(b), b.ID)))

	if !b.Active {
		if b.Ref != "" {
			fmt.Fprintf(sb, "  %s\n", ColorDim("→ "+b.Ref))
		}
		return
	}

	for _, fd := range l.Files {
		fmt.Fprintf(sb, "  %s %s\n", statusLetter(fd.Status), fd.Path)
		for _, h := range fd.Hunks {
			line := "    " + h.Header()
			if l.Locked[LockKey(h)] {
				line = ColorLocked(line + " locked")
			}
			sb.WriteString(line + "\n")
		}
	}
	for _, c := range b.Commits {
		fmt.Fprintf(sb, "  %s %s\n", ColorDim(shortSha(c.ID)), firstLine(c.Message))
	}
}

func statusLetter(s hunk.FileStatus) string {
	switch s {
	case hunk.StatusAdded:
		return "A"
	case hunk.StatusDeleted:
		return "D"
	default:
		return "M"
	}
}

func shortSha(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
