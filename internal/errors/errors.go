// Package errors provides centralized error definitions and error handling
// utilities for the traincut codebase. It defines domain-specific errors,
// error constructors with context wrapping, and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent failures from specific subsystems:
//   - VersionError: malformed or unparseable semantic versions
//   - GitError: errors from git operations (branches, commits, pushes)
//   - HostError: errors from the version-control host (pull requests, forks, releases)
//   - PublishError: registry publish failures
//   - MissingArtifactsError: configured packages without build output
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewGitError("checkout failed", baseErr).WithBranch("10.1.x")
//	err := errors.NewMissingArtifactsError([]string{"core", "router"})
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrPullRequestNotFound) { ... }
//
//	var missing *errors.MissingArtifactsError
//	if errors.As(err, &missing) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityWarning is for conditions that are surfaced to the operator
	// but do not interrupt the workflow.
	SeverityWarning Severity = iota
	// SeverityError is for errors that abort the current release action.
	SeverityError
	// SeverityCritical is for errors that may leave remote state requiring
	// manual cleanup.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Host-related sentinel errors
var (
	// ErrPullRequestNotFound indicates that a pull request could not be found.
	ErrPullRequestNotFound = New("pull request not found")
	// ErrForkNotFound indicates that the user has no fork of the repository.
	ErrForkNotFound = New("fork not found")
	// ErrBranchNotFound indicates that a branch could not be found.
	ErrBranchNotFound = New("branch not found")
	// ErrAuthentication indicates that the hosting CLI is not authenticated.
	ErrAuthentication = New("not authenticated")
)

// Train-related sentinel errors
var (
	// ErrNoLtsBranches indicates that no active LTS branch exists.
	ErrNoLtsBranches = New("no active LTS branches")
	// ErrInvalidTrains indicates an active-trains snapshot violating its invariants.
	ErrInvalidTrains = New("invalid release train snapshot")
	// ErrActionNotActive indicates that a release action was invoked while inactive.
	ErrActionNotActive = New("release action is not currently active")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// VersionError represents a malformed semantic version string. It is fatal
// and surfaced immediately; there is no retry.
type VersionError struct {
	baseError
}

// NewVersionError creates a new VersionError.
func NewVersionError(message string, cause error) *VersionError {
	return &VersionError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// GitError represents errors from git operations.
//
// Example:
//
//	err := errors.NewGitError("failed to push", cause).
//		WithBranch("10.1.x").
//		WithOutput(string(output))
type GitError struct {
	baseError
	Branch string
	Output string
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithBranch adds the branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithOutput attaches the raw git output to the error context.
func (e *GitError) WithOutput(output string) *GitError {
	e.Output = strings.TrimSpace(output)
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	prefix := "git error"
	if e.Branch != "" {
		prefix = fmt.Sprintf("git error [branch=%s]", e.Branch)
	}
	msg := fmt.Sprintf("%s: %s", prefix, e.message)
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.Output)
	}
	return msg
}

// HostError represents errors from the version-control host collaborator.
type HostError struct {
	baseError
	Repo string
}

// NewHostError creates a new HostError.
func NewHostError(message string, cause error) *HostError {
	return &HostError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithRepo adds the owner/name slug to the error context.
func (e *HostError) WithRepo(repo string) *HostError {
	e.Repo = repo
	return e
}

// Error returns the formatted error message.
func (e *HostError) Error() string {
	prefix := "host error"
	if e.Repo != "" {
		prefix = fmt.Sprintf("host error [repo=%s]", e.Repo)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// PublishError represents a registry publish failure. Packages attempted
// before the failure have already been submitted; there is no rollback.
type PublishError struct {
	baseError
	Package string
	DistTag string
}

// NewPublishError creates a new PublishError for the given package.
func NewPublishError(pkg, distTag string, cause error) *PublishError {
	return &PublishError{
		baseError: baseError{
			message:  fmt.Sprintf("failed to publish %q with dist-tag %q", pkg, distTag),
			cause:    cause,
			severity: SeverityCritical,
		},
		Package: pkg,
		DistTag: distTag,
	}
}

// MissingArtifactsError indicates that one or more configured packages lack
// build output. The message enumerates every missing package; the publish
// step never begins when this error is returned.
type MissingArtifactsError struct {
	Packages []string
}

// NewMissingArtifactsError creates a MissingArtifactsError for the given
// package names.
func NewMissingArtifactsError(packages []string) *MissingArtifactsError {
	return &MissingArtifactsError{Packages: packages}
}

// Error returns one line per missing package.
func (e *MissingArtifactsError) Error() string {
	var b strings.Builder
	b.WriteString("release output missing for configured packages:\n")
	for _, pkg := range e.Packages {
		fmt.Fprintf(&b, "  - %s has no build output\n", pkg)
	}
	return strings.TrimRight(b.String(), "\n")
}
