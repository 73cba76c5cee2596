package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutReleaseCandidate moves a feature-freeze train into the release-candidate
// phase by cutting its first "-rc.0" pre-release.
type cutReleaseCandidate struct {
	active *trains.Active
	deps   Deps
}

func newCutReleaseCandidate(active *trains.Active, deps Deps) *cutReleaseCandidate {
	return &cutReleaseCandidate{active: active, deps: deps}
}

func (a *cutReleaseCandidate) Name() string { return "cut-release-candidate" }

func (a *cutReleaseCandidate) Active() bool {
	rc := a.active.ReleaseCandidate
	return rc != nil && rc.Version.Prerelease() == semver.PrereleaseNext
}

func (a *cutReleaseCandidate) version() semver.Version {
	return a.active.ReleaseCandidate.Version.WithPrerelease(semver.PrereleaseRC, 0)
}

func (a *cutReleaseCandidate) Describe(ctx context.Context) (string, error) {
	if !a.Active() {
		return "", errors.ErrActionNotActive
	}
	return fmt.Sprintf("Cut a first release-candidate for the feature-freeze branch (v%s).", a.version()), nil
}

func (a *cutReleaseCandidate) Perform(ctx context.Context) error {
	if !a.Active() {
		return errors.ErrActionNotActive
	}
	w := &workflow{deps: a.deps}
	return w.run(ctx, cutSpec{
		Version:             a.version(),
		Branch:              a.active.ReleaseCandidate.Branch,
		DistTag:             "next",
		CherryPickChangelog: true,
	})
}
