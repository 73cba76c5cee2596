package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/trains"
)

var ltsCmd = &cobra.Command{
	Use:   "lts",
	Short: "List long-term-support branches",
	Long: `Query the registry's dist-tags and publish dates to list the
repository's LTS branches, split into branches still inside their support
window and expired ones.`,
	RunE: runLts,
}

func init() {
	rootCmd.AddCommand(ltsCmd)
}

func runLts(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	pkgs := deps.Config.Npm.Packages
	if len(pkgs) == 0 {
		return fmt.Errorf("%w: no packages configured", errors.ErrInvalidInput)
	}

	ctx := cmd.Context()
	distTags, err := deps.Registry.DistTags(ctx, pkgs[0])
	if err != nil {
		return err
	}
	publishTimes, err := deps.Registry.PublishTimes(ctx, pkgs[0])
	if err != nil {
		return err
	}
	branches, err := trains.PartitionLts(distTags, publishTimes, deps.Now(), deps.Config.Lts.LtsWindow())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render("Active LTS branches"))
	if len(branches.Active) == 0 {
		fmt.Fprintln(out, dimStyle.Render("  none"))
	}
	for _, b := range branches.Active {
		fmt.Fprintf(out, "  %s  v%s (%s)\n", b.Name, b.Version, b.NpmDistTag)
	}
	fmt.Fprintln(out, headingStyle.Render("Inactive LTS branches"))
	if len(branches.Inactive) == 0 {
		fmt.Fprintln(out, dimStyle.Render("  none"))
	}
	for _, b := range branches.Inactive {
		fmt.Fprintf(out, "  %s  v%s (%s)\n", b.Name, b.Version, b.NpmDistTag)
	}
	return nil
}
