package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// moveNextIntoFeatureFreeze branches the next train off into a new version
// branch, opening a feature-freeze phase. No packages are published: the new
// branch starts at next's current version, and the next branch is bumped to
// the following minor pre-release through a staged pull request.
type moveNextIntoFeatureFreeze struct {
	active *trains.Active
	deps   Deps
}

func newMoveNextIntoFeatureFreeze(active *trains.Active, deps Deps) *moveNextIntoFeatureFreeze {
	return &moveNextIntoFeatureFreeze{active: active, deps: deps}
}

func (a *moveNextIntoFeatureFreeze) Name() string { return "move-next-into-feature-freeze" }

// Active only while no other train sits between next and latest.
func (a *moveNextIntoFeatureFreeze) Active() bool {
	return a.active.ReleaseCandidate == nil
}

// branchName is the new version branch, derived from next's version.
func (a *moveNextIntoFeatureFreeze) branchName() string {
	return trains.VersionBranchName(a.active.Next.Version)
}

// nextVersion is the version the next branch moves to after branching off:
// the following minor, back at the start of a pre-release cycle.
func (a *moveNextIntoFeatureFreeze) nextVersion() (semver.Version, error) {
	v, err := semver.Increment(a.active.Next.Version, semver.IncrementMinor)
	if err != nil {
		return semver.Version{}, err
	}
	return v.WithPrerelease(semver.PrereleaseNext, 0), nil
}

func (a *moveNextIntoFeatureFreeze) Describe(ctx context.Context) (string, error) {
	v, err := a.nextVersion()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Move the %q branch into feature-freeze (%q branch, v%s).",
		a.active.Next.Branch, a.branchName(), v), nil
}

func (a *moveNextIntoFeatureFreeze) Perform(ctx context.Context) error {
	if !a.Active() {
		return errors.ErrActionNotActive
	}
	d := a.deps
	branch := a.branchName()

	exists, err := d.Git.BranchExistsOnRemote(git.UpstreamRemote, branch)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: branch %q already exists upstream", errors.ErrInvalidInput, branch)
	}

	// The version branch is created directly upstream; branch creation is
	// not subject to review.
	if err := d.Git.FetchBranch(git.UpstreamRemote, a.active.Next.Branch); err != nil {
		return err
	}
	if err := d.Git.CheckoutNewBranch(branch, "FETCH_HEAD"); err != nil {
		return err
	}
	if err := d.Git.Push(git.UpstreamRemote, branch, branch, false); err != nil {
		return err
	}
	d.Log.Info("created feature-freeze branch", "branch", branch)

	// Stage the follow-up bump on the next branch and wait for approval.
	// Same gate every cut goes through, just without a publish.
	v, err := a.nextVersion()
	if err != nil {
		return err
	}
	w := &workflow{deps: d}
	spec := cutSpec{Version: v, Branch: a.active.Next.Branch}
	pr, err := w.stage(ctx, spec)
	if err != nil {
		return err
	}
	return w.awaitMerge(ctx, spec, pr)
}
