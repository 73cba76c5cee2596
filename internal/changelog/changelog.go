// Package changelog extracts released changelog entries and cherry-picks them
// onto the primary development branch after a release merges elsewhere.
package changelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/traincut/traincut/internal/config"
	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/event"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/logging"
	"github.com/traincut/traincut/internal/semver"
)

// Extract applies the configured extraction pattern to a rendered changelog
// and returns the first capture group, or the whole match for a pattern with
// no groups. The second return is false when the pattern does not match or
// the extracted text is empty.
func Extract(content string, pattern *regexp.Regexp) (string, bool) {
	match := pattern.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	if pattern.NumSubexp() == 0 {
		return match[0], match[0] != ""
	}
	if match[1] == "" {
		return "", false
	}
	return match[1], true
}

// CherryPicker ports a released changelog entry back onto the primary
// development branch via a pull request from the fork.
type CherryPicker struct {
	cfg  *config.Config
	git  *git.Client
	host hosting.Host
	bus  *event.Bus
	log  *logging.Logger
}

func NewCherryPicker(cfg *config.Config, g *git.Client, host hosting.Host, bus *event.Bus, log *logging.Logger) *CherryPicker {
	if log == nil {
		log = logging.NewNop()
	}
	if bus == nil {
		bus = event.NewBus()
	}
	return &CherryPicker{cfg: cfg, git: g, host: host, bus: bus, log: log}
}

// BranchName returns the fork branch carrying the cherry-picked entry.
func BranchName(version semver.Version) string {
	return "changelog-cherry-pick-" + version.String()
}

// CherryPick fetches the rendered changelog from releaseBranch, extracts the
// entry for version and opens a pull request prepending it to the changelog
// on the primary development branch.
//
// Extraction failure is deliberately non-fatal: the release itself already
// succeeded, so the cherry-pick degrades to a warning and an event, leaving
// the development changelog untouched.
func (c *CherryPicker) CherryPick(ctx context.Context, version semver.Version, releaseBranch string) error {
	content, err := c.host.FileContents(ctx, releaseBranch, c.cfg.ReleaseNotes.ChangelogPath)
	if err != nil {
		return fmt.Errorf("fetching changelog from %q: %w", releaseBranch, err)
	}

	pattern, err := c.cfg.ReleaseNotes.ExtractRegexp(version.String())
	if err != nil {
		return err
	}

	entry, ok := Extract(content, pattern)
	if !ok {
		c.log.WithVersion(version.String()).Warn("could not extract changelog entry, skipping cherry-pick onto "+c.cfg.Repo.NextBranch,
			"release_branch", releaseBranch)
		c.bus.Publish(event.NewChangelogExtractionFailedEvent(version.String(), releaseBranch))
		return nil
	}

	forkOwner, err := c.host.EnsureFork(ctx)
	if err != nil {
		return err
	}
	if c.cfg.Fork.Owner != "" {
		forkOwner = c.cfg.Fork.Owner
	}

	branch := BranchName(version)
	forkURL := git.ForkRemoteURL(forkOwner, c.cfg.Repo.Name)

	// Reuse an existing cherry-pick branch on the fork; otherwise start a
	// fresh one from the development tip.
	exists, err := c.git.BranchExistsOnRemote(forkURL, branch)
	if err != nil {
		return err
	}
	startRemote, startBranch := git.UpstreamRemote, c.cfg.Repo.NextBranch
	if exists {
		startRemote, startBranch = forkURL, branch
	}
	if err := c.git.FetchBranch(startRemote, startBranch); err != nil {
		return err
	}
	if err := c.git.CheckoutNewBranch(branch, "FETCH_HEAD"); err != nil {
		return err
	}

	path := filepath.Join(c.git.WorkDir(), c.cfg.ReleaseNotes.ChangelogPath)
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading changelog %q: %w", path, err)
	}
	// Byte-for-byte prepend: the extracted entry is not reformatted.
	if err := os.WriteFile(path, append([]byte(entry), existing...), 0o644); err != nil {
		return fmt.Errorf("writing changelog %q: %w", path, err)
	}

	message := fmt.Sprintf("docs: release notes for the v%s release", version)
	if err := c.git.CommitAll(message); err != nil {
		return err
	}
	if err := c.git.Push(forkURL, branch, branch, true); err != nil {
		return err
	}

	number, err := c.host.CreatePullRequest(ctx, hosting.PullRequestOptions{
		BaseBranch: c.cfg.Repo.NextBranch,
		HeadOwner:  forkOwner,
		HeadBranch: branch,
		Title:      message,
		Body: fmt.Sprintf("Cherry-picks the changelog from the %q branch into the %q branch.",
			releaseBranch, c.cfg.Repo.NextBranch),
	})
	if err != nil {
		if errors.Is(err, errors.ErrForkNotFound) {
			return err
		}
		return fmt.Errorf("opening changelog cherry-pick pull request: %w", err)
	}

	c.log.WithVersion(version.String()).Info("opened changelog cherry-pick pull request",
		"pr", number, "base", c.cfg.Repo.NextBranch)
	c.bus.Publish(event.NewChangelogCherryPickedEvent(version.String(), c.cfg.Repo.NextBranch, number))
	return nil
}
