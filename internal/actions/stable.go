package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutStable promotes a release candidate to the new stable release. The two
// activation conditions are mutually exclusive: either the release-candidate
// train has reached the "rc" phase, or no release-candidate train exists and
// the next train itself is ready to be cut stable.
type cutStable struct {
	active *trains.Active
	deps   Deps
}

func newCutStable(active *trains.Active, deps Deps) *cutStable {
	return &cutStable{active: active, deps: deps}
}

func (a *cutStable) Name() string { return "cut-stable" }

func (a *cutStable) Active() bool {
	if rc := a.active.ReleaseCandidate; rc != nil {
		return rc.Version.Prerelease() == semver.PrereleaseRC
	}
	return a.nextReady()
}

// nextReady reports whether the next train can be cut stable directly. That
// requires at least one published "next" pre-release on the current cycle.
func (a *cutStable) nextReady() bool {
	v := a.active.Next.Version
	return v.Prerelease() == semver.PrereleaseNext && v.PrereleaseCounter() >= 1
}

// sourceTrain returns the train the stable release is cut from.
func (a *cutStable) sourceTrain() trains.Train {
	if a.active.ReleaseCandidate != nil {
		return *a.active.ReleaseCandidate
	}
	return a.active.Next
}

// version strips the pre-release label off the source train's version.
func (a *cutStable) version() semver.Version {
	return a.sourceTrain().Version.Stable()
}

func (a *cutStable) Describe(ctx context.Context) (string, error) {
	if a.active.ReleaseCandidate != nil {
		return fmt.Sprintf("Cut a stable release for the release-candidate branch (v%s).", a.version()), nil
	}
	return fmt.Sprintf("Cut a stable release for the %q branch (v%s).", a.active.Next.Branch, a.version()), nil
}

func (a *cutStable) Perform(ctx context.Context) error {
	if !a.Active() {
		return errors.ErrActionNotActive
	}
	source := a.sourceTrain()
	version := a.version()

	spec := cutSpec{
		Version: version,
		Branch:  source.Branch,
		DistTag: "latest",
		// Only a release from a version branch needs its notes ported back
		// onto the development branch.
		CherryPickChangelog: source.Branch != a.deps.Config.Repo.NextBranch,
	}
	// A major stable cut supersedes the previous latest train. Its consumers
	// keep receiving patches through the major-derived LTS dist-tag.
	if version.Major() > a.active.Latest.Version.Major() {
		previous := a.active.Latest
		spec.RetagLatestAsLts = &previous
	}

	w := &workflow{deps: a.deps}
	return w.run(ctx, spec)
}
