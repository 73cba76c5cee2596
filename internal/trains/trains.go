// Package trains models the concurrently active release trains of the
// repository: the ongoing development train ("next"), an optional
// feature-freeze / release-candidate train, and the most recent stable
// train ("latest"). A snapshot is read fresh at the start of each
// orchestration run and never cached across runs.
package trains

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/manifest"
	"github.com/traincut/traincut/internal/semver"
)

// Train is one line of development pinned to one branch.
type Train struct {
	// Branch is the branch name, e.g. "main" or "10.1.x".
	Branch string
	// Version is the train's current version per its branch manifest.
	Version semver.Version
}

// Active is the snapshot of the currently active release trains.
type Active struct {
	// Next is the ongoing development train. Its version is always the
	// highest of the snapshot.
	Next Train
	// ReleaseCandidate is the feature-freeze or release-candidate train,
	// nil when no version branch is currently in that phase.
	ReleaseCandidate *Train
	// Latest is the train of the most recently published stable version.
	Latest Train
}

// versionBranchRegex matches version branches of the form "10.1.x".
var versionBranchRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.x$`)

// versionBranch is a parsed version branch name, ordered by (major, minor).
type versionBranch struct {
	name  string
	major int
	minor int
}

// Validate checks the snapshot invariants. A violated invariant means the
// repository branches are in a state the release tooling does not support.
func (a *Active) Validate() error {
	if a.Next.Version.Less(a.Latest.Version) || a.Next.Version.Equal(a.Latest.Version) {
		return fmt.Errorf("%w: next (%s) does not order above latest (%s)",
			errors.ErrInvalidTrains, a.Next.Version, a.Latest.Version)
	}
	if a.Latest.Version.IsPrerelease() {
		return fmt.Errorf("%w: latest (%s) is not a stable version",
			errors.ErrInvalidTrains, a.Latest.Version)
	}
	if rc := a.ReleaseCandidate; rc != nil {
		if !rc.Version.IsPrerelease() {
			return fmt.Errorf("%w: release-candidate train (%s) has no pre-release label",
				errors.ErrInvalidTrains, rc.Version)
		}
		if !a.Latest.Version.Less(rc.Version) || !rc.Version.Less(a.Next.Version) {
			return fmt.Errorf("%w: release-candidate (%s) does not order between latest (%s) and next (%s)",
				errors.ErrInvalidTrains, rc.Version, a.Latest.Version, a.Next.Version)
		}
	}
	return nil
}

// Fetch reads the active trains from the host: the next branch plus the two
// most recent version branches. The manifest at each branch tip pins the
// train's version.
func Fetch(ctx context.Context, host hosting.Host, nextBranch string) (*Active, error) {
	names, err := host.ListBranches(ctx)
	if err != nil {
		return nil, err
	}

	branches := collectVersionBranches(names)
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: no version branches found", errors.ErrInvalidTrains)
	}

	nextVersion, err := branchVersion(ctx, host, nextBranch)
	if err != nil {
		return nil, err
	}

	active := &Active{
		Next: Train{Branch: nextBranch, Version: nextVersion},
	}

	// The most recent version branch is either in feature-freeze/RC phase
	// (pre-release manifest version) or it is the latest stable train.
	head, err := branchVersion(ctx, host, branches[0].name)
	if err != nil {
		return nil, err
	}
	if head.IsPrerelease() {
		active.ReleaseCandidate = &Train{Branch: branches[0].name, Version: head}
		if len(branches) < 2 {
			return nil, fmt.Errorf("%w: no stable branch behind feature-freeze branch %q",
				errors.ErrInvalidTrains, branches[0].name)
		}
		stable, err := branchVersion(ctx, host, branches[1].name)
		if err != nil {
			return nil, err
		}
		active.Latest = Train{Branch: branches[1].name, Version: stable}
	} else {
		active.Latest = Train{Branch: branches[0].name, Version: head}
	}

	if err := active.Validate(); err != nil {
		return nil, err
	}
	return active, nil
}

// collectVersionBranches filters and orders version branches, most recent
// first.
func collectVersionBranches(names []string) []versionBranch {
	var branches []versionBranch
	for _, name := range names {
		m := versionBranchRegex.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		branches = append(branches, versionBranch{name: name, major: major, minor: minor})
	}
	sort.Slice(branches, func(i, j int) bool {
		if branches[i].major != branches[j].major {
			return branches[i].major > branches[j].major
		}
		return branches[i].minor > branches[j].minor
	})
	return branches
}

// branchVersion reads the manifest version at the tip of branch.
func branchVersion(ctx context.Context, host hosting.Host, branch string) (semver.Version, error) {
	content, err := host.FileContents(ctx, branch, manifest.FileName)
	if err != nil {
		return semver.Version{}, err
	}
	v, err := manifest.ParseVersion([]byte(content))
	if err != nil {
		return semver.Version{}, fmt.Errorf("branch %q: %w", branch, err)
	}
	return v, nil
}

// VersionBranchName returns the version branch name for a version, e.g.
// "10.1.x" for 10.1.0-next.0.
func VersionBranchName(v semver.Version) string {
	return fmt.Sprintf("%d.%d.x", v.Major(), v.Minor())
}
