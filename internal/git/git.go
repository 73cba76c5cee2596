// Package git wraps the git CLI operations the release workflow needs:
// fetching release branches, creating staging branches, committing the
// version bump, and pushing to the fork.
//
// The concrete implementation shells out to git; the CommandExecutor
// abstraction allows tests to run against a recorded fake instead.
package git

import (
	"os/exec"
	"strings"

	"github.com/traincut/traincut/internal/errors"
)

// UpstreamRemote is the remote name for the canonical repository. Staging
// branches are never pushed here; they go to the user's fork.
const UpstreamRemote = "origin"

// ForkRemoteURL returns the push URL for the named fork of the repository.
func ForkRemoteURL(owner, repo string) string {
	return "https://github.com/" + owner + "/" + repo + ".git"
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command in dir and returns combined output.
	Run(dir string, name string, args ...string) ([]byte, error)
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLICommandExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Client performs git operations in a fixed working directory.
type Client struct {
	workDir  string
	executor CommandExecutor
}

// New creates a Client operating in workDir.
func New(workDir string) *Client {
	return &Client{
		workDir:  workDir,
		executor: NewCLICommandExecutor(),
	}
}

// NewWithExecutor creates a Client with a custom executor.
// This is primarily useful for testing.
func NewWithExecutor(workDir string, executor CommandExecutor) *Client {
	return &Client{
		workDir:  workDir,
		executor: executor,
	}
}

// WorkDir returns the working directory the client operates in.
func (c *Client) WorkDir() string {
	return c.workDir
}

// FetchBranch fetches the given branch from the named remote so FETCH_HEAD
// points at its current tip.
func (c *Client) FetchBranch(remote, branch string) error {
	output, err := c.executor.Run(c.workDir, "git", "fetch", remote, branch)
	if err != nil {
		return errors.NewGitError("failed to fetch "+remote+"/"+branch, err).
			WithBranch(branch).
			WithOutput(string(output))
	}
	return nil
}

// CheckoutNewBranch creates (or resets) a local branch at startRef and
// checks it out.
func (c *Client) CheckoutNewBranch(branch, startRef string) error {
	output, err := c.executor.Run(c.workDir, "git", "checkout", "-B", branch, startRef)
	if err != nil {
		return errors.NewGitError("failed to check out branch", err).
			WithBranch(branch).
			WithOutput(string(output))
	}
	return nil
}

// CommitAll stages and commits all changes with the given message.
// Returns nil if there are no changes to commit.
func (c *Client) CommitAll(message string) error {
	output, err := c.executor.Run(c.workDir, "git", "add", "-A")
	if err != nil {
		return errors.NewGitError("failed to stage changes", err).
			WithOutput(string(output))
	}

	output, err = c.executor.Run(c.workDir, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(string(output), "nothing to commit") {
			return nil
		}
		return errors.NewGitError("failed to commit changes", err).
			WithOutput(string(output))
	}

	return nil
}

// Push pushes localRef to remoteBranch on the given remote URL or name.
// With force set it uses --force-with-lease so a rewritten staging branch
// can be re-pushed safely.
func (c *Client) Push(remote, localRef, remoteBranch string, force bool) error {
	args := []string{"push", remote, localRef + ":refs/heads/" + remoteBranch}
	if force {
		args = append(args, "--force-with-lease")
	}

	output, err := c.executor.Run(c.workDir, "git", args...)
	if err != nil {
		return errors.NewGitError("failed to push", err).
			WithBranch(remoteBranch).
			WithOutput(string(output))
	}
	return nil
}

// BranchExistsOnRemote checks whether the named branch exists on the remote.
func (c *Client) BranchExistsOnRemote(remote, branch string) (bool, error) {
	output, err := c.executor.Run(c.workDir, "git", "ls-remote", "--heads", remote, branch)
	if err != nil {
		return false, errors.NewGitError("failed to query remote branches", err).
			WithBranch(branch).
			WithOutput(string(output))
	}
	return strings.TrimSpace(string(output)) != "", nil
}

// HasUncommittedChanges returns true if the working tree is dirty.
func (c *Client) HasUncommittedChanges() (bool, error) {
	output, err := c.executor.Run(c.workDir, "git", "status", "--porcelain")
	if err != nil {
		return false, errors.NewGitError("failed to check git status", err).
			WithOutput(string(output))
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}
