// Package actions holds the release-action catalog and the staging → approval
// → build-verification → publish workflow each action runs. The catalog is a
// closed, ordered set of variants; activation is evaluated independently per
// variant against the active-trains snapshot, so several actions can be valid
// at once.
package actions

import (
	"context"
	"time"

	"github.com/traincut/traincut/internal/changelog"
	"github.com/traincut/traincut/internal/config"
	"github.com/traincut/traincut/internal/console"
	"github.com/traincut/traincut/internal/event"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/logging"
	"github.com/traincut/traincut/internal/registry"
	"github.com/traincut/traincut/internal/trains"
)

// Action is one release-action variant. Descriptions are deterministic for a
// given trains snapshot: they are shown to the operator and asserted by tests.
type Action interface {
	// Name is the stable identifier of the variant, e.g. "cut-stable".
	Name() string

	// Describe renders the human-readable description, including the
	// resolved target version and branch.
	Describe(ctx context.Context) (string, error)

	// Active reports whether the action is applicable to the snapshot.
	Active() bool

	// Perform runs the action's workflow to completion. It blocks while the
	// staging pull request awaits human approval; cancel the context to
	// abandon the wait.
	Perform(ctx context.Context) error
}

// Deps bundles the collaborators every action receives at construction.
// Configuration is passed explicitly; there is no ambient lookup.
type Deps struct {
	Config   *config.Config
	Git      *git.Client
	Host     hosting.Host
	Registry registry.Registry
	Bus      *event.Bus
	Log      *logging.Logger
	Prompter console.Prompter
	// Now returns the current time. Defaults to time.Now; injectable for
	// the LTS window classification tests.
	Now func() time.Time
}

// withDefaults fills optional dependencies.
func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logging.NewNop()
	}
	if d.Bus == nil {
		d.Bus = event.NewBus()
	}
	return d
}

// cherryPicker builds the changelog cherry-picker sharing the action's
// collaborators.
func (d Deps) cherryPicker() *changelog.CherryPicker {
	return changelog.NewCherryPicker(d.Config, d.Git, d.Host, d.Bus, d.Log)
}

// Catalog returns the fixed, ordered set of release-action variants for the
// given snapshot. Callers filter on Active to build the selection list.
func Catalog(active *trains.Active, deps Deps) []Action {
	deps = deps.withDefaults()
	return []Action{
		newCutStable(active, deps),
		newCutReleaseCandidate(active, deps),
		newCutNewPatch(active, deps),
		newCutNextPrerelease(active, deps),
		newMoveNextIntoFeatureFreeze(active, deps),
		newCutLtsPatch(active, deps),
	}
}

// ActiveActions filters the catalog down to the currently applicable
// variants, preserving catalog order.
func ActiveActions(active *trains.Active, deps Deps) []Action {
	var out []Action
	for _, action := range Catalog(active, deps) {
		if action.Active() {
			out = append(out, action)
		}
	}
	return out
}
