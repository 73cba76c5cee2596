package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/traincut/traincut/internal/actions"
	"github.com/traincut/traincut/internal/config"
	"github.com/traincut/traincut/internal/console"
	"github.com/traincut/traincut/internal/event"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/logging"
	"github.com/traincut/traincut/internal/registry"
)

// buildDeps loads the configuration and assembles the collaborators every
// command works with. The git client operates in the current directory, which
// is expected to be a checkout of the configured repository.
func buildDeps() (actions.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return actions.Deps{}, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return actions.Deps{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	return actions.Deps{
		Config:   cfg,
		Git:      git.New(cwd),
		Host:     hosting.NewGitHubHost(cfg.Repo.Owner, cfg.Repo.Name),
		Registry: registry.NewNpmRegistry(),
		Bus:      event.NewBus(),
		Log:      logging.NewStderr(cfg.Logging.Level),
		Prompter: console.NewHuhPrompter(),
		Now:      time.Now,
	}, nil
}
