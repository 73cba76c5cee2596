// Package event defines release lifecycle events for decoupling the
// orchestration workflow from the CLI. The workflow publishes what happened;
// subscribers decide how to surface it.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "release.staged").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Staging & Publish Events
// -----------------------------------------------------------------------------

// ReleaseStagedEvent is emitted once the version bump commit has been pushed
// and its pull request opened.
type ReleaseStagedEvent struct {
	baseEvent
	Version     string // Target version being cut
	Branch      string // Branch the release targets
	PullRequest int    // Change-request identifier on the host
}

// NewReleaseStagedEvent creates a ReleaseStagedEvent.
func NewReleaseStagedEvent(version, branch string, pullRequest int) ReleaseStagedEvent {
	return ReleaseStagedEvent{
		baseEvent:   newBaseEvent("release.staged"),
		Version:     version,
		Branch:      branch,
		PullRequest: pullRequest,
	}
}

// ApprovalWaitEvent is emitted when the workflow suspends waiting for a
// human to merge the staging pull request.
type ApprovalWaitEvent struct {
	baseEvent
	PullRequest int
}

// NewApprovalWaitEvent creates an ApprovalWaitEvent.
func NewApprovalWaitEvent(pullRequest int) ApprovalWaitEvent {
	return ApprovalWaitEvent{
		baseEvent:   newBaseEvent("release.awaiting_approval"),
		PullRequest: pullRequest,
	}
}

// ReleaseMergedEvent is emitted when the staging pull request reaches the
// merged state.
type ReleaseMergedEvent struct {
	baseEvent
	Version     string
	PullRequest int
}

// NewReleaseMergedEvent creates a ReleaseMergedEvent.
func NewReleaseMergedEvent(version string, pullRequest int) ReleaseMergedEvent {
	return ReleaseMergedEvent{
		baseEvent:   newBaseEvent("release.merged"),
		Version:     version,
		PullRequest: pullRequest,
	}
}

// PackagePublishedEvent is emitted after each configured package has been
// submitted to the registry.
type PackagePublishedEvent struct {
	baseEvent
	Package string
	Version string
	DistTag string
}

// NewPackagePublishedEvent creates a PackagePublishedEvent.
func NewPackagePublishedEvent(pkg, version, distTag string) PackagePublishedEvent {
	return PackagePublishedEvent{
		baseEvent: newBaseEvent("release.package_published"),
		Package:   pkg,
		Version:   version,
		DistTag:   distTag,
	}
}

// LtsRetagEvent is emitted when the previous latest train is retagged as an
// LTS maintenance line after a major stable cut.
type LtsRetagEvent struct {
	baseEvent
	Version string // Version the LTS dist-tag now points at
	DistTag string // Derived dist-tag, e.g. "v10-lts"
}

// NewLtsRetagEvent creates an LtsRetagEvent.
func NewLtsRetagEvent(version, distTag string) LtsRetagEvent {
	return LtsRetagEvent{
		baseEvent: newBaseEvent("release.retagged"),
		Version:   version,
		DistTag:   distTag,
	}
}

// -----------------------------------------------------------------------------
// Changelog Cherry-Pick Events
// -----------------------------------------------------------------------------

// ChangelogCherryPickedEvent is emitted when the release notes pull request
// against the development branch has been opened.
type ChangelogCherryPickedEvent struct {
	baseEvent
	Version     string
	Branch      string // Development branch the notes were cherry-picked into
	PullRequest int
}

// NewChangelogCherryPickedEvent creates a ChangelogCherryPickedEvent.
func NewChangelogCherryPickedEvent(version, branch string, pullRequest int) ChangelogCherryPickedEvent {
	return ChangelogCherryPickedEvent{
		baseEvent:   newBaseEvent("changelog.cherry_picked"),
		Version:     version,
		Branch:      branch,
		PullRequest: pullRequest,
	}
}

// ChangelogExtractionFailedEvent is emitted when the extraction pattern finds
// no match in the fetched changelog. It is a warning, not a failure: the
// workflow continues and the development branch changelog is left untouched.
type ChangelogExtractionFailedEvent struct {
	baseEvent
	Version string
	Branch  string
}

// NewChangelogExtractionFailedEvent creates a ChangelogExtractionFailedEvent.
func NewChangelogExtractionFailedEvent(version, branch string) ChangelogExtractionFailedEvent {
	return ChangelogExtractionFailedEvent{
		baseEvent: newBaseEvent("changelog.extraction_failed"),
		Version:   version,
		Branch:    branch,
	}
}
