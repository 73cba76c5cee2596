package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/traincut/traincut/internal/event"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	waitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderEvents subscribes to the bus and writes a progress line per release
// lifecycle event. The workflow itself never touches the terminal.
func renderEvents(bus *event.Bus, w io.Writer) {
	bus.SubscribeAll(func(ev event.Event) {
		switch e := ev.(type) {
		case event.ReleaseStagedEvent:
			fmt.Fprintln(w, okStyle.Render("✓")+fmt.Sprintf(" Staged v%s for the %q branch (PR #%d).", e.Version, e.Branch, e.PullRequest))
		case event.ApprovalWaitEvent:
			fmt.Fprintln(w, waitStyle.Render("…")+fmt.Sprintf(" Waiting for PR #%d to be reviewed and merged.", e.PullRequest))
		case event.ReleaseMergedEvent:
			fmt.Fprintln(w, okStyle.Render("✓")+fmt.Sprintf(" PR #%d merged; v%s approved.", e.PullRequest, e.Version))
		case event.PackagePublishedEvent:
			fmt.Fprintln(w, okStyle.Render("✓")+fmt.Sprintf(" Published %s@%s under the %q dist-tag.", e.Package, e.Version, e.DistTag))
		case event.LtsRetagEvent:
			fmt.Fprintln(w, okStyle.Render("✓")+fmt.Sprintf(" Tagged v%s as %q for long-term support.", e.Version, e.DistTag))
		case event.ChangelogCherryPickedEvent:
			fmt.Fprintln(w, okStyle.Render("✓")+fmt.Sprintf(" Opened changelog cherry-pick PR #%d against %q.", e.PullRequest, e.Branch))
		case event.ChangelogExtractionFailedEvent:
			fmt.Fprintln(w, warnStyle.Render("!")+fmt.Sprintf(" Could not extract the v%s changelog entry from %q; cherry-pick skipped.", e.Version, e.Branch))
		}
	})
}
