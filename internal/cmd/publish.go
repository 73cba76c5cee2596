package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/traincut/traincut/internal/actions"
	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/trains"
)

var publishActionName string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Stage, approve and publish a release",
	Long: `Determine the active release trains, present the currently applicable
release actions, and run the selected one: stage the version bump as a pull
request, wait for it to be approved by merging, verify the build output, and
publish the packages to the registry.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishActionName, "action", "", "run the named action instead of prompting (e.g. cut-new-patch)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	renderEvents(deps.Bus, out)

	ctx := cmd.Context()
	active, err := trains.Fetch(ctx, deps.Host, deps.Config.Repo.NextBranch)
	if err != nil {
		return err
	}
	printTrains(out, active)

	applicable := actions.ActiveActions(active, deps)
	if len(applicable) == 0 {
		return fmt.Errorf("no release action is currently applicable")
	}

	action, err := chooseAction(cmd, deps, applicable)
	if err != nil {
		return err
	}

	description, err := action.Describe(ctx)
	if err != nil {
		return err
	}
	ok, err := deps.Prompter.Confirm(description)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrCanceled
	}

	if err := action.Perform(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, okStyle.Render("✓")+" Release completed.")
	return nil
}

// chooseAction resolves the --action flag, or prompts with the descriptions
// of every applicable action.
func chooseAction(cmd *cobra.Command, deps actions.Deps, applicable []actions.Action) (actions.Action, error) {
	if publishActionName != "" {
		for _, a := range applicable {
			if a.Name() == publishActionName {
				return a, nil
			}
		}
		return nil, fmt.Errorf("%w: %q", errors.ErrActionNotActive, publishActionName)
	}

	options := make([]string, len(applicable))
	for i, a := range applicable {
		description, err := a.Describe(cmd.Context())
		if err != nil {
			return nil, err
		}
		options[i] = description
	}
	idx, err := deps.Prompter.Select("Select a release action", options)
	if err != nil {
		return nil, err
	}
	return applicable[idx], nil
}
