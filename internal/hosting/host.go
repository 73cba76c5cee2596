// Package hosting defines the version-control host collaborator. The release
// workflow depends on the Host interface only; the GitHub implementation
// shells out to the gh CLI.
package hosting

import "context"

// PullRequestOptions describes a pull request to open.
type PullRequestOptions struct {
	// BaseBranch is the branch the pull request targets on the upstream repo.
	BaseBranch string
	// HeadOwner is the owner of the fork holding the head branch.
	HeadOwner string
	// HeadBranch is the branch holding the staged commit.
	HeadBranch string
	Title      string
	Body       string
}

// ReleaseOptions describes a release entry to create for a tag.
type ReleaseOptions struct {
	Tag        string
	Title      string
	Notes      string
	Prerelease bool
}

// Host is the version-control host collaborator contract.
type Host interface {
	// ListBranches returns the names of all branches on the upstream repo.
	ListBranches(ctx context.Context) ([]string, error)

	// FileContents returns the raw contents of path at the tip of branch.
	FileContents(ctx context.Context, branch, path string) (string, error)

	// EnsureFork returns the owner of the authenticated user's fork of the
	// upstream repo, creating the fork if it does not exist yet.
	EnsureFork(ctx context.Context) (string, error)

	// CreatePullRequest opens a pull request and returns its number, the
	// opaque change-request identifier the workflow waits on.
	CreatePullRequest(ctx context.Context, opts PullRequestOptions) (int, error)

	// PullRequestMerged reports whether the pull request has reached the
	// merged state.
	PullRequestMerged(ctx context.Context, number int) (bool, error)

	// CreateRelease creates a release entry for an existing tag.
	CreateRelease(ctx context.Context, opts ReleaseOptions) error

	// CreateTag creates a lightweight tag pointing at the tip of branch.
	CreateTag(ctx context.Context, tag, branch string) error
}
