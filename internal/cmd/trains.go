package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/traincut/traincut/internal/trains"
)

var trainsCmd = &cobra.Command{
	Use:   "trains",
	Short: "Show the active release trains",
	Long: `Fetch the repository's branches and print the active release trains:
the next train on the development branch, the feature-freeze or
release-candidate train if one exists, and the latest stable train.`,
	RunE: runTrains,
}

func init() {
	rootCmd.AddCommand(trainsCmd)
}

func runTrains(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	active, err := trains.Fetch(cmd.Context(), deps.Host, deps.Config.Repo.NextBranch)
	if err != nil {
		return err
	}
	printTrains(cmd.OutOrStdout(), active)
	return nil
}

func printTrains(w io.Writer, active *trains.Active) {
	fmt.Fprintln(w, headingStyle.Render("Active release trains"))
	fmt.Fprintf(w, "  next:              %s on %q\n", "v"+active.Next.Version.String(), active.Next.Branch)
	if rc := active.ReleaseCandidate; rc != nil {
		fmt.Fprintf(w, "  release-candidate: %s on %q\n", "v"+rc.Version.String(), rc.Branch)
	} else {
		fmt.Fprintf(w, "  release-candidate: %s\n", dimStyle.Render("none"))
	}
	fmt.Fprintf(w, "  latest:            %s on %q\n", "v"+active.Latest.Version.String(), active.Latest.Branch)
	fmt.Fprintln(w)
}
