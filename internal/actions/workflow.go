package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/event"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/manifest"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// cutSpec describes one release cut for the shared workflow.
type cutSpec struct {
	// Version is the version being cut.
	Version semver.Version
	// Branch is the release branch the cut targets.
	Branch string
	// DistTag is the registry dist-tag the published packages receive.
	DistTag string
	// SkipVersionBump stages without touching the manifest. Used when the
	// checked-out version is reused because it was never published.
	SkipVersionBump bool
	// RetagLatestAsLts, when non-nil, names the train whose version should
	// receive an LTS dist-tag after the cut. Set only by a stable cut that
	// changes the major.
	RetagLatestAsLts *trains.Train
	// CherryPickChangelog ports the release notes back onto the development
	// branch after publishing.
	CherryPickChangelog bool
}

// workflow is the staging → approval → verification → publish pipeline shared
// by all actions. Each step publishes an event so the CLI can render progress
// without the workflow knowing about terminals.
type workflow struct {
	deps Deps
}

func (w *workflow) run(ctx context.Context, spec cutSpec) error {
	pr, err := w.stage(ctx, spec)
	if err != nil {
		return err
	}
	if err := w.awaitMerge(ctx, spec, pr); err != nil {
		return err
	}
	if err := w.verifyBuildOutputs(); err != nil {
		return err
	}
	if err := w.tagAndRelease(ctx, spec); err != nil {
		return err
	}
	if err := w.publishPackages(ctx, spec); err != nil {
		return err
	}
	if spec.RetagLatestAsLts != nil {
		if err := w.retagLts(ctx, *spec.RetagLatestAsLts); err != nil {
			return err
		}
	}
	if spec.CherryPickChangelog {
		if err := w.deps.cherryPicker().CherryPick(ctx, spec.Version, spec.Branch); err != nil {
			return err
		}
	}
	return nil
}

// commitMessage is the fixed message for the version bump commit and the
// staging pull request title.
func commitMessage(version semver.Version) string {
	return fmt.Sprintf("release: cut the v%s release", version)
}

// stagingBranchName returns the fork branch holding the version bump commit.
func stagingBranchName(version semver.Version) string {
	return "release-stage-" + version.String()
}

// stage creates the staging branch from the tip of the release branch, bumps
// the manifest, pushes the commit to the fork and opens the pull request.
func (w *workflow) stage(ctx context.Context, spec cutSpec) (int, error) {
	d := w.deps
	log := d.Log.WithVersion(spec.Version.String())

	dirty, err := d.Git.HasUncommittedChanges()
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("%w: working tree has uncommitted changes", errors.ErrInvalidInput)
	}

	forkOwner, err := d.Host.EnsureFork(ctx)
	if err != nil {
		return 0, err
	}
	if d.Config.Fork.Owner != "" {
		forkOwner = d.Config.Fork.Owner
	}

	if err := d.Git.FetchBranch(git.UpstreamRemote, spec.Branch); err != nil {
		return 0, err
	}
	staging := stagingBranchName(spec.Version)
	if err := d.Git.CheckoutNewBranch(staging, "FETCH_HEAD"); err != nil {
		return 0, err
	}

	if !spec.SkipVersionBump {
		if err := manifest.SetVersion(d.Git.WorkDir(), spec.Version); err != nil {
			return 0, err
		}
	}

	if err := d.Git.CommitAll(commitMessage(spec.Version)); err != nil {
		return 0, err
	}
	if err := d.Git.Push(git.ForkRemoteURL(forkOwner, d.Config.Repo.Name), staging, staging, true); err != nil {
		return 0, err
	}

	pr, err := d.Host.CreatePullRequest(ctx, hosting.PullRequestOptions{
		BaseBranch: spec.Branch,
		HeadOwner:  forkOwner,
		HeadBranch: staging,
		Title:      commitMessage(spec.Version),
		Body: fmt.Sprintf("Bumps the version in the %q branch to v%s in preparation for publishing.",
			spec.Branch, spec.Version),
	})
	if err != nil {
		return 0, err
	}

	log.Info("staged release", "branch", spec.Branch, "pr", pr)
	d.Bus.Publish(event.NewReleaseStagedEvent(spec.Version.String(), spec.Branch, pr))
	return pr, nil
}

// awaitMerge polls the host until the staging pull request is merged. It is
// the human approval gate: merging is the approval.
func (w *workflow) awaitMerge(ctx context.Context, spec cutSpec, pr int) error {
	d := w.deps
	d.Log.WithVersion(spec.Version.String()).Info("waiting for the staging pull request to be merged", "pr", pr)
	d.Bus.Publish(event.NewApprovalWaitEvent(pr))

	for {
		merged, err := d.Host.PullRequestMerged(ctx, pr)
		if err != nil {
			return err
		}
		if merged {
			d.Bus.Publish(event.NewReleaseMergedEvent(spec.Version.String(), pr))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.Config.Approval.PollInterval()):
		}
	}
}

// verifyBuildOutputs checks that every configured package has build output in
// the output directory. All missing packages are reported together so the
// operator fixes the build once, not package by package.
func (w *workflow) verifyBuildOutputs() error {
	d := w.deps
	var missing []string
	for _, pkg := range d.Config.Npm.Packages {
		dir := w.packageOutputDir(pkg)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, pkg)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingArtifactsError(missing)
	}
	return nil
}

// packageOutputDir returns the conventional build output directory for a
// package, e.g. dist/@scope/name.
func (w *workflow) packageOutputDir(pkg string) string {
	return filepath.Join(w.deps.Git.WorkDir(), w.deps.Config.Build.OutputDir, pkg)
}

// tagAndRelease creates the release tag on the merged release branch and a
// release entry for it.
func (w *workflow) tagAndRelease(ctx context.Context, spec cutSpec) error {
	d := w.deps
	tag := "v" + spec.Version.String()
	if err := d.Host.CreateTag(ctx, tag, spec.Branch); err != nil {
		return err
	}
	return d.Host.CreateRelease(ctx, hosting.ReleaseOptions{
		Tag:        tag,
		Title:      tag,
		Notes:      fmt.Sprintf("Release %s. See the changelog for details.", tag),
		Prerelease: spec.Version.IsPrerelease(),
	})
}

// publishPackages submits every configured package to the registry under the
// cut's dist-tag. A failing package does not stop the remaining ones: each
// package is attempted, and the collected failures propagate afterwards.
// Already-published packages are not rolled back.
func (w *workflow) publishPackages(ctx context.Context, spec cutSpec) error {
	d := w.deps
	var failures []error
	for _, pkg := range d.Config.Npm.Packages {
		dir := w.packageOutputDir(pkg)
		if err := d.Registry.Publish(ctx, pkg, dir, spec.DistTag, d.Config.Npm.PublishRegistry); err != nil {
			d.Log.WithVersion(spec.Version.String()).Error("publishing package failed", "package", pkg, "error", err)
			failures = append(failures, err)
			continue
		}
		d.Log.WithVersion(spec.Version.String()).Info("published package", "package", pkg, "dist_tag", spec.DistTag)
		d.Bus.Publish(event.NewPackagePublishedEvent(pkg, spec.Version.String(), spec.DistTag))
	}
	return errors.Join(failures...)
}

// retagLts points the major-derived LTS dist-tag at the previous latest
// version for every configured package. Runs once, after a major stable cut.
func (w *workflow) retagLts(ctx context.Context, previous trains.Train) error {
	d := w.deps
	distTag := trains.LtsDistTag(previous.Version.Major())
	for _, pkg := range d.Config.Npm.Packages {
		if err := d.Registry.DistTagAdd(ctx, pkg, previous.Version.String(), distTag); err != nil {
			return err
		}
	}
	d.Log.Info("retagged previous latest train for long-term support",
		"version", previous.Version.String(), "dist_tag", distTag)
	d.Bus.Publish(event.NewLtsRetagEvent(previous.Version.String(), distTag))
	return nil
}
