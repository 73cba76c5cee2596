package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutNewPatch cuts the next patch release on the latest train. A latest train
// always exists, so the action is always applicable.
type cutNewPatch struct {
	active *trains.Active
	deps   Deps
}

func newCutNewPatch(active *trains.Active, deps Deps) *cutNewPatch {
	return &cutNewPatch{active: active, deps: deps}
}

func (a *cutNewPatch) Name() string { return "cut-new-patch" }

func (a *cutNewPatch) Active() bool { return true }

func (a *cutNewPatch) version() (semver.Version, error) {
	return semver.Increment(a.active.Latest.Version, semver.IncrementPatch)
}

func (a *cutNewPatch) Describe(ctx context.Context) (string, error) {
	v, err := a.version()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Cut a new patch release for the %q branch (v%s).", a.active.Latest.Branch, v), nil
}

func (a *cutNewPatch) Perform(ctx context.Context) error {
	v, err := a.version()
	if err != nil {
		return err
	}
	w := &workflow{deps: a.deps}
	return w.run(ctx, cutSpec{
		Version:             v,
		Branch:              a.active.Latest.Branch,
		DistTag:             "latest",
		CherryPickChangelog: true,
	})
}
