package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutNextPrerelease cuts a new "next" pre-release. It targets the
// release-candidate train when one exists, otherwise the next train, so the
// most advanced in-progress train keeps moving.
type cutNextPrerelease struct {
	active *trains.Active
	deps   Deps
}

func newCutNextPrerelease(active *trains.Active, deps Deps) *cutNextPrerelease {
	return &cutNextPrerelease{active: active, deps: deps}
}

func (a *cutNextPrerelease) Name() string { return "cut-next-prerelease" }

func (a *cutNextPrerelease) Active() bool { return true }

func (a *cutNextPrerelease) target() trains.Train {
	if a.active.ReleaseCandidate != nil {
		return *a.active.ReleaseCandidate
	}
	return a.active.Next
}

// version computes the pre-release to cut. When the next train's checked-out
// version has never been published, it is reused as-is instead of being
// bumped, so the first pre-release of a new cycle goes out under the version
// already in the manifest. The second return reports that reuse.
func (a *cutNextPrerelease) version(ctx context.Context) (semver.Version, bool, error) {
	target := a.target()
	if a.active.ReleaseCandidate == nil {
		published, err := a.versionPublished(ctx, target.Version)
		if err != nil {
			return semver.Version{}, false, err
		}
		if !published {
			return target.Version, true, nil
		}
	}
	v, err := semver.Increment(target.Version, semver.IncrementPrerelease)
	return v, false, err
}

// versionPublished checks the registry through the first configured package;
// all packages are versioned in lockstep, so one is representative.
func (a *cutNextPrerelease) versionPublished(ctx context.Context, v semver.Version) (bool, error) {
	pkgs := a.deps.Config.Npm.Packages
	if len(pkgs) == 0 {
		return true, nil
	}
	return a.deps.Registry.VersionPublished(ctx, pkgs[0], v.String())
}

func (a *cutNextPrerelease) Describe(ctx context.Context) (string, error) {
	v, _, err := a.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cut a new next pre-release for the %q branch (v%s).", a.target().Branch, v), nil
}

func (a *cutNextPrerelease) Perform(ctx context.Context) error {
	v, preserve, err := a.version(ctx)
	if err != nil {
		return err
	}
	target := a.target()
	w := &workflow{deps: a.deps}
	return w.run(ctx, cutSpec{
		Version:             v,
		Branch:              target.Branch,
		DistTag:             "next",
		SkipVersionBump:     preserve,
		CherryPickChangelog: target.Branch != a.deps.Config.Repo.NextBranch,
	})
}
