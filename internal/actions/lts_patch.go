package actions

import (
	"context"
	"fmt"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutLtsPatch cuts a patch release on a long-term-support branch. LTS
// branches live outside the active trains, so the branch set is discovered
// from the registry at perform time and the operator picks one.
type cutLtsPatch struct {
	active *trains.Active
	deps   Deps
}

func newCutLtsPatch(active *trains.Active, deps Deps) *cutLtsPatch {
	return &cutLtsPatch{active: active, deps: deps}
}

func (a *cutLtsPatch) Name() string { return "cut-lts-patch" }

// Always selectable; whether any LTS branch is still in its support window is
// only known after querying the registry.
func (a *cutLtsPatch) Active() bool { return true }

func (a *cutLtsPatch) Describe(ctx context.Context) (string, error) {
	return "Cut a new release for an active LTS branch.", nil
}

func (a *cutLtsPatch) Perform(ctx context.Context) error {
	d := a.deps
	branches, err := a.discover(ctx)
	if err != nil {
		return err
	}
	if len(branches.Active) == 0 {
		return errors.ErrNoLtsBranches
	}

	options := make([]string, len(branches.Active))
	for i, b := range branches.Active {
		options[i] = fmt.Sprintf("%s (v%s)", b.Name, b.Version)
	}
	idx, err := d.Prompter.Select("Select an active LTS branch to cut a release from", options)
	if err != nil {
		return err
	}
	chosen := branches.Active[idx]

	v, err := semver.Increment(chosen.Version, semver.IncrementPatch)
	if err != nil {
		return err
	}

	w := &workflow{deps: d}
	return w.run(ctx, cutSpec{
		Version:             v,
		Branch:              chosen.Name,
		DistTag:             chosen.NpmDistTag,
		CherryPickChangelog: true,
	})
}

// discover queries the registry through the first configured package and
// partitions the LTS dist-tags into active and inactive branches.
func (a *cutLtsPatch) discover(ctx context.Context) (*trains.LtsBranches, error) {
	d := a.deps
	pkgs := d.Config.Npm.Packages
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: no packages configured", errors.ErrInvalidInput)
	}
	distTags, err := d.Registry.DistTags(ctx, pkgs[0])
	if err != nil {
		return nil, err
	}
	publishTimes, err := d.Registry.PublishTimes(ctx, pkgs[0])
	if err != nil {
		return nil, err
	}
	return trains.PartitionLts(distTags, publishTimes, d.Now(), d.Config.Lts.LtsWindow())
}
