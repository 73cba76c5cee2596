package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/traincut/traincut/internal/errors"
)

// CommandExecutor is a function type that executes a command and returns its
// output. This allows for dependency injection in tests.
type CommandExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

// defaultExecutor runs commands using os/exec.
var defaultExecutor CommandExecutor = func(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// GitHubHost implements Host for GitHub using the gh CLI.
type GitHubHost struct {
	owner    string
	name     string
	executor CommandExecutor
}

// NewGitHubHost creates a GitHubHost for the given upstream repository using
// the default command executor.
func NewGitHubHost(owner, name string) *GitHubHost {
	return &GitHubHost{
		owner:    owner,
		name:     name,
		executor: defaultExecutor,
	}
}

// NewGitHubHostWithExecutor creates a GitHubHost with a custom command
// executor for testing.
func NewGitHubHostWithExecutor(owner, name string, executor CommandExecutor) *GitHubHost {
	return &GitHubHost{
		owner:    owner,
		name:     name,
		executor: executor,
	}
}

// slug returns the owner/name form of the upstream repository.
func (g *GitHubHost) slug() string {
	return g.owner + "/" + g.name
}

// ListBranches returns the names of all branches on the upstream repo.
func (g *GitHubHost) ListBranches(ctx context.Context) ([]string, error) {
	output, err := g.executor(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/branches", g.slug()),
		"--paginate", "--jq", ".[].name")
	if err != nil {
		return nil, g.classifyError("failed to list branches", err, output)
	}

	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// FileContents returns the raw contents of path at the tip of branch.
func (g *GitHubHost) FileContents(ctx context.Context, branch, path string) (string, error) {
	output, err := g.executor(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/contents/%s?ref=%s", g.slug(), path, branch),
		"-H", "Accept: application/vnd.github.raw+json")
	if err != nil {
		if strings.Contains(string(output), "Not Found") {
			return "", errors.NewHostError(fmt.Sprintf("%s not found on branch %q", path, branch), errors.ErrBranchNotFound).
				WithRepo(g.slug())
		}
		return "", g.classifyError("failed to fetch "+path, err, output)
	}
	return string(output), nil
}

// EnsureFork returns the owner of the authenticated user's fork, creating
// the fork if necessary. gh repo fork is idempotent: it reports an existing
// fork instead of failing.
func (g *GitHubHost) EnsureFork(ctx context.Context) (string, error) {
	output, err := g.executor(ctx, "gh", "repo", "fork", g.slug(), "--clone=false")
	if err != nil {
		return "", g.classifyError("failed to ensure fork", err, output)
	}

	output, err = g.executor(ctx, "gh", "api", "user", "--jq", ".login")
	if err != nil {
		return "", g.classifyError("failed to resolve authenticated user", err, output)
	}

	login := strings.TrimSpace(string(output))
	if login == "" {
		return "", errors.NewHostError("authenticated user has no login", errors.ErrForkNotFound).
			WithRepo(g.slug())
	}
	return login, nil
}

// CreatePullRequest opens a pull request and returns its number.
func (g *GitHubHost) CreatePullRequest(ctx context.Context, opts PullRequestOptions) (int, error) {
	args := []string{"pr", "create",
		"--repo", g.slug(),
		"--base", opts.BaseBranch,
		"--head", opts.HeadOwner + ":" + opts.HeadBranch,
		"--title", opts.Title,
		"--body", opts.Body,
	}

	output, err := g.executor(ctx, "gh", args...)
	if err != nil {
		return 0, g.classifyError("failed to create pull request", err, output)
	}

	url := strings.TrimSpace(string(output))
	num, err := parsePullRequestNumber(url)
	if err != nil {
		return 0, errors.NewHostError("could not parse pull request number", err).
			WithRepo(g.slug())
	}
	return num, nil
}

// prState is the subset of gh pr view --json output the workflow reads.
type prState struct {
	State    string `json:"state"`
	MergedAt string `json:"mergedAt"`
}

// PullRequestMerged reports whether the pull request has been merged.
func (g *GitHubHost) PullRequestMerged(ctx context.Context, number int) (bool, error) {
	output, err := g.executor(ctx, "gh", "pr", "view", strconv.Itoa(number),
		"--repo", g.slug(),
		"--json", "state,mergedAt")
	if err != nil {
		if strings.Contains(string(output), "no pull requests found") {
			return false, errors.NewHostError(fmt.Sprintf("pull request #%d", number), errors.ErrPullRequestNotFound).
				WithRepo(g.slug())
		}
		return false, g.classifyError("failed to query pull request state", err, output)
	}

	var state prState
	if err := json.Unmarshal(output, &state); err != nil {
		return false, errors.NewHostError("could not parse pull request state", err).
			WithRepo(g.slug())
	}
	return strings.EqualFold(state.State, "merged") || state.MergedAt != "", nil
}

// CreateRelease creates a release entry for an existing tag.
func (g *GitHubHost) CreateRelease(ctx context.Context, opts ReleaseOptions) error {
	args := []string{"release", "create", opts.Tag,
		"--repo", g.slug(),
		"--title", opts.Title,
		"--notes", opts.Notes,
	}
	if opts.Prerelease {
		args = append(args, "--prerelease")
	}

	output, err := g.executor(ctx, "gh", args...)
	if err != nil {
		return g.classifyError("failed to create release "+opts.Tag, err, output)
	}
	return nil
}

// CreateTag creates a lightweight tag pointing at the tip of branch via the
// git data API.
func (g *GitHubHost) CreateTag(ctx context.Context, tag, branch string) error {
	output, err := g.executor(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/git/refs/heads/%s", g.slug(), branch),
		"--jq", ".object.sha")
	if err != nil {
		return g.classifyError("failed to resolve branch tip for tag", err, output)
	}
	sha := strings.TrimSpace(string(output))

	output, err = g.executor(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/git/refs", g.slug()),
		"-f", "ref=refs/tags/"+tag,
		"-f", "sha="+sha)
	if err != nil {
		return g.classifyError("failed to create tag "+tag, err, output)
	}
	return nil
}

// classifyError maps gh failures onto host errors, detecting authentication
// problems from the CLI output.
func (g *GitHubHost) classifyError(message string, err error, output []byte) error {
	out := string(output)
	if strings.Contains(out, "gh auth login") || strings.Contains(out, "HTTP 401") {
		return errors.NewHostError(message, errors.ErrAuthentication).WithRepo(g.slug())
	}
	if out != "" {
		err = fmt.Errorf("%w: %s", err, strings.TrimSpace(out))
	}
	return errors.NewHostError(message, err).WithRepo(g.slug())
}

// prURLRegex extracts the pull request number from a gh-reported URL.
var prURLRegex = regexp.MustCompile(`/pull/(\d+)\s*$`)

// parsePullRequestNumber extracts the numeric id from a pull request URL.
func parsePullRequestNumber(url string) (int, error) {
	m := prURLRegex.FindStringSubmatch(url)
	if m == nil {
		return 0, fmt.Errorf("no pull request number in %q", url)
	}
	return strconv.Atoi(m[1])
}
