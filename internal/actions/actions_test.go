package actions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/traincut/traincut/internal/config"
	"github.com/traincut/traincut/internal/errors"
	"github.com/traincut/traincut/internal/event"
	"github.com/traincut/traincut/internal/git"
	"github.com/traincut/traincut/internal/hosting"
	"github.com/traincut/traincut/internal/logging"
	"github.com/traincut/traincut/internal/manifest"
	"github.com/traincut/traincut/internal/semver"
	"github.com/traincut/traincut/internal/trains"
)

// fakeHost implements hosting.Host in memory. Pull requests merge on the
// first poll so workflows run to completion without sleeping.
type fakeHost struct {
	changelog    string
	pullRequests []hosting.PullRequestOptions
	tags         []string
	releases     []hosting.ReleaseOptions
}

func (f *fakeHost) ListBranches(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeHost) FileContents(ctx context.Context, branch, path string) (string, error) {
	return f.changelog, nil
}

func (f *fakeHost) EnsureFork(ctx context.Context) (string, error) { return "releasebot", nil }

func (f *fakeHost) CreatePullRequest(ctx context.Context, opts hosting.PullRequestOptions) (int, error) {
	f.pullRequests = append(f.pullRequests, opts)
	return len(f.pullRequests), nil
}

func (f *fakeHost) PullRequestMerged(ctx context.Context, number int) (bool, error) {
	return true, nil
}

func (f *fakeHost) CreateRelease(ctx context.Context, opts hosting.ReleaseOptions) error {
	f.releases = append(f.releases, opts)
	return nil
}

func (f *fakeHost) CreateTag(ctx context.Context, tag, branch string) error {
	f.tags = append(f.tags, tag+"@"+branch)
	return nil
}

// fakeRegistry records publishes and serves canned dist-tag metadata.
type fakeRegistry struct {
	publishes    []string // "pkg tag url"
	distTagAdds  []string // "pkg@version tag"
	distTags     map[string]string
	publishTimes map[string]time.Time
	published    bool             // VersionPublished result
	failPublish  map[string]error // per-package Publish failures
}

func (f *fakeRegistry) Publish(ctx context.Context, pkg, dir, distTag, registryURL string) error {
	if err := f.failPublish[pkg]; err != nil {
		return err
	}
	f.publishes = append(f.publishes, pkg+" "+distTag+" "+registryURL)
	return nil
}

func (f *fakeRegistry) DistTagAdd(ctx context.Context, pkg, version, distTag string) error {
	f.distTagAdds = append(f.distTagAdds, pkg+"@"+version+" "+distTag)
	return nil
}

func (f *fakeRegistry) DistTags(ctx context.Context, pkg string) (map[string]string, error) {
	return f.distTags, nil
}

func (f *fakeRegistry) PublishTimes(ctx context.Context, pkg string) (map[string]time.Time, error) {
	return f.publishTimes, nil
}

func (f *fakeRegistry) VersionPublished(ctx context.Context, pkg, version string) (bool, error) {
	return f.published, nil
}

// fakePrompter answers selection prompts with a fixed index.
type fakePrompter struct {
	selectIndex int
	selected    []string
}

func (f *fakePrompter) Select(title string, options []string) (int, error) {
	f.selected = options
	return f.selectIndex, nil
}

func (f *fakePrompter) Confirm(title string) (bool, error) { return true, nil }

// gitExecutor answers every git command with success and an empty output,
// which also means "clean working tree" for status queries.
type gitExecutor struct {
	commands []string
}

func (g *gitExecutor) Run(dir, name string, args ...string) ([]byte, error) {
	g.commands = append(g.commands, name+" "+strings.Join(args, " "))
	return nil, nil
}

type fixture struct {
	deps     Deps
	host     *fakeHost
	registry *fakeRegistry
	prompter *fakePrompter
	git      *gitExecutor
	workDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, manifest.FileName), `{"name": "framework", "version": "10.0.1"}`)
	writeFile(t, filepath.Join(dir, "CHANGELOG.md"), "Existing changelog")
	for _, pkg := range []string{"@angular/core", "@angular/cli"} {
		if err := os.MkdirAll(filepath.Join(dir, "dist", pkg), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Npm.Packages = []string{"@angular/core", "@angular/cli"}
	cfg.Repo = config.RepoConfig{Owner: "angular", Name: "framework", NextBranch: "main"}
	cfg.Approval.PollIntervalSeconds = 1

	host := &fakeHost{}
	reg := &fakeRegistry{published: true}
	prompter := &fakePrompter{}
	exec := &gitExecutor{}

	return &fixture{
		deps: Deps{
			Config:   cfg,
			Git:      git.NewWithExecutor(dir, exec),
			Host:     host,
			Registry: reg,
			Bus:      event.NewBus(),
			Log:      logging.NewNop(),
			Prompter: prompter,
			Now:      func() time.Time { return time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC) },
		},
		host:     host,
		registry: reg,
		prompter: prompter,
		git:      exec,
		workDir:  dir,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func snapshot(next, rc, latest string) *trains.Active {
	active := &trains.Active{
		Next:   trains.Train{Branch: "main", Version: semver.MustParse(next)},
		Latest: trains.Train{Branch: trains.VersionBranchName(semver.MustParse(latest)), Version: semver.MustParse(latest)},
	}
	if rc != "" {
		v := semver.MustParse(rc)
		active.ReleaseCandidate = &trains.Train{Branch: trains.VersionBranchName(v), Version: v}
	}
	return active
}

func TestActiveActionDescriptions(t *testing.T) {
	f := newFixture(t)
	active := snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1")

	var got []string
	for _, a := range ActiveActions(active, f.deps) {
		d, err := a.Describe(context.Background())
		if err != nil {
			t.Fatalf("Describe(%s): %v", a.Name(), err)
		}
		got = append(got, d)
	}

	want := []string{
		"Cut a first release-candidate for the feature-freeze branch (v10.1.0-rc.0).",
		`Cut a new patch release for the "10.0.x" branch (v10.0.2).`,
		`Cut a new next pre-release for the "10.1.x" branch (v10.1.0-next.4).`,
		"Cut a new release for an active LTS branch.",
	}
	if len(got) != len(want) {
		t.Fatalf("active descriptions = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("description %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCutStableActivation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		active *trains.Active
		want   bool
	}{
		{name: "rc train in rc phase", active: snapshot("10.2.0-next.6", "10.1.0-rc.2", "10.0.1"), want: true},
		{name: "rc train still in feature-freeze", active: snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1"), want: false},
		{name: "no rc train and next ready", active: snapshot("10.1.0-next.4", "", "10.0.1"), want: true},
		{name: "no rc train and next cycle unpublished", active: snapshot("10.1.0-next.0", "", "10.0.1"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newCutStable(tt.active, f.deps)
			if a.Active() != tt.want {
				t.Errorf("Active() = %v, want %v", a.Active(), tt.want)
			}
		})
	}
}

func TestCutStableConditionsAreExclusive(t *testing.T) {
	f := newFixture(t)

	// With a feature-freeze train present, next being ready must not make
	// the action active: only the rc train's phase decides.
	active := snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1")
	a := newCutStable(active, f.deps)
	if !a.nextReady() {
		t.Fatal("precondition: next should look ready on its own")
	}
	if a.Active() {
		t.Error("action active through the next-train condition despite an rc train being present")
	}

	// And with the rc train in rc phase, the source is the rc train, never next.
	active = snapshot("10.2.0-next.6", "10.1.0-rc.0", "10.0.1")
	a = newCutStable(active, f.deps)
	if got := a.sourceTrain().Branch; got != "10.1.x" {
		t.Errorf("source branch = %q, want 10.1.x", got)
	}
}

func TestCutNewPatchPerform(t *testing.T) {
	f := newFixture(t)
	f.host.changelog = "<a name=\"10.0.2\"></a>## 10.0.2\nfixes\n"
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	var events []string
	f.deps.Bus.SubscribeAll(func(e event.Event) { events = append(events, e.EventType()) })

	a := newCutNewPatch(active, f.deps)
	if err := a.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	// Staging PR targets the latest branch with the fixed commit message.
	pr := f.host.pullRequests[0]
	if pr.BaseBranch != "10.0.x" || pr.Title != "release: cut the v10.0.2 release" {
		t.Errorf("staging PR = %+v", pr)
	}
	if pr.HeadOwner != "releasebot" || pr.HeadBranch != "release-stage-10.0.2" {
		t.Errorf("staging head = %s:%s", pr.HeadOwner, pr.HeadBranch)
	}

	// Manifest bumped before commit.
	content, err := os.ReadFile(filepath.Join(f.workDir, manifest.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := manifest.ParseVersion(content); v.String() != "10.0.2" {
		t.Errorf("manifest version = %s, want 10.0.2", v)
	}

	// Tag and release entry on the release branch.
	if len(f.host.tags) != 1 || f.host.tags[0] != "v10.0.2@10.0.x" {
		t.Errorf("tags = %v", f.host.tags)
	}
	if len(f.host.releases) != 1 || f.host.releases[0].Prerelease {
		t.Errorf("releases = %+v", f.host.releases)
	}

	// Both packages published under "latest".
	wantPublishes := []string{"@angular/core latest ", "@angular/cli latest "}
	if len(f.registry.publishes) != len(wantPublishes) {
		t.Fatalf("publishes = %v", f.registry.publishes)
	}
	for i, want := range wantPublishes {
		if f.registry.publishes[i] != want {
			t.Errorf("publish %d = %q, want %q", i, f.registry.publishes[i], want)
		}
	}

	// Changelog cherry-pick PR against the development branch.
	cherry := f.host.pullRequests[1]
	if cherry.BaseBranch != "main" || cherry.HeadBranch != "changelog-cherry-pick-10.0.2" {
		t.Errorf("cherry-pick PR = %+v", cherry)
	}

	wantEvents := []string{
		"release.staged",
		"release.awaiting_approval",
		"release.merged",
		"release.package_published",
		"release.package_published",
		"changelog.cherry_picked",
	}
	if len(events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", events, wantEvents)
	}
	for i := range wantEvents {
		if events[i] != wantEvents[i] {
			t.Errorf("event %d = %q, want %q", i, events[i], wantEvents[i])
		}
	}
}

func TestMissingArtifactsAbortPublish(t *testing.T) {
	f := newFixture(t)
	if err := os.RemoveAll(filepath.Join(f.workDir, "dist", "@angular/cli")); err != nil {
		t.Fatal(err)
	}
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	err := newCutNewPatch(active, f.deps).Perform(context.Background())
	var merr *errors.MissingArtifactsError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %v, want *errors.MissingArtifactsError", err)
	}
	if len(merr.Packages) != 1 || merr.Packages[0] != "@angular/cli" {
		t.Errorf("missing packages = %v", merr.Packages)
	}
	if !strings.Contains(err.Error(), "@angular/cli has no build output") {
		t.Errorf("message = %q", err.Error())
	}
	if len(f.registry.publishes) != 0 {
		t.Errorf("published despite missing artifacts: %v", f.registry.publishes)
	}
}

func TestPublishRegistryOverride(t *testing.T) {
	f := newFixture(t)
	f.deps.Config.Npm.PublishRegistry = "https://registry.example.com"
	f.host.changelog = "<a name=\"10.0.2\"></a>notes"
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	if err := newCutNewPatch(active, f.deps).Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}
	for _, p := range f.registry.publishes {
		if !strings.HasSuffix(p, " https://registry.example.com") {
			t.Errorf("publish without registry override: %q", p)
		}
	}
}

func TestPublishFailureStillAttemptsRemainingPackages(t *testing.T) {
	f := newFixture(t)
	f.host.changelog = "<a name=\"10.0.2\"></a>notes"
	cause := errors.NewPublishError("@angular/core", "latest", errors.New("E403"))
	f.registry.failPublish = map[string]error{"@angular/core": cause}
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	err := newCutNewPatch(active, f.deps).Perform(context.Background())
	if err == nil {
		t.Fatal("Perform succeeded despite a failed publish")
	}
	var perr *errors.PublishError
	if !errors.As(err, &perr) || perr.Package != "@angular/core" {
		t.Fatalf("error = %v, want the @angular/core publish failure", err)
	}

	// The remaining package is still attempted.
	if want := []string{"@angular/cli latest "}; len(f.registry.publishes) != 1 || f.registry.publishes[0] != want[0] {
		t.Errorf("publishes = %v, want %v", f.registry.publishes, want)
	}
}

func TestCutStableLtsRetag(t *testing.T) {
	t.Run("major bump retags previous latest once", func(t *testing.T) {
		f := newFixture(t)
		f.host.changelog = "<a name=\"11.0.0\"></a>notes"
		active := snapshot("11.1.0-next.2", "11.0.0-rc.3", "10.0.4")

		retags := 0
		f.deps.Bus.Subscribe("release.retagged", func(e event.Event) {
			retags++
			ev := e.(event.LtsRetagEvent)
			if ev.Version != "10.0.4" || ev.DistTag != "v10-lts" {
				t.Errorf("retag event = %+v", ev)
			}
		})

		if err := newCutStable(active, f.deps).Perform(context.Background()); err != nil {
			t.Fatalf("Perform: %v", err)
		}

		want := []string{"@angular/core@10.0.4 v10-lts", "@angular/cli@10.0.4 v10-lts"}
		if len(f.registry.distTagAdds) != len(want) {
			t.Fatalf("dist-tag adds = %v, want %v", f.registry.distTagAdds, want)
		}
		for i := range want {
			if f.registry.distTagAdds[i] != want[i] {
				t.Errorf("dist-tag add %d = %q, want %q", i, f.registry.distTagAdds[i], want[i])
			}
		}
		if retags != 1 {
			t.Errorf("retag events = %d, want exactly 1", retags)
		}
	})

	t.Run("minor stable cut never retags", func(t *testing.T) {
		f := newFixture(t)
		f.host.changelog = "<a name=\"10.1.0\"></a>notes"
		active := snapshot("10.2.0-next.6", "10.1.0-rc.3", "10.0.4")

		if err := newCutStable(active, f.deps).Perform(context.Background()); err != nil {
			t.Fatalf("Perform: %v", err)
		}
		if len(f.registry.distTagAdds) != 0 {
			t.Errorf("unexpected dist-tag adds: %v", f.registry.distTagAdds)
		}
	})
}

func TestCutNextPrereleaseVersionPreserve(t *testing.T) {
	t.Run("unpublished next version is reused without bump", func(t *testing.T) {
		f := newFixture(t)
		f.registry.published = false
		writeFile(t, filepath.Join(f.workDir, manifest.FileName), `{"version": "10.1.0-next.0"}`)
		active := snapshot("10.1.0-next.0", "", "10.0.1")

		a := newCutNextPrerelease(active, f.deps)
		d, err := a.Describe(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if want := `Cut a new next pre-release for the "main" branch (v10.1.0-next.0).`; d != want {
			t.Errorf("description = %q, want %q", d, want)
		}

		if err := a.Perform(context.Background()); err != nil {
			t.Fatalf("Perform: %v", err)
		}

		// Manifest untouched: the checked-out version ships as-is.
		content, _ := os.ReadFile(filepath.Join(f.workDir, manifest.FileName))
		if v, _ := manifest.ParseVersion(content); v.String() != "10.1.0-next.0" {
			t.Errorf("manifest version = %s, want unchanged 10.1.0-next.0", v)
		}
		pr := f.host.pullRequests[0]
		if pr.Title != "release: cut the v10.1.0-next.0 release" {
			t.Errorf("PR title = %q", pr.Title)
		}
	})

	t.Run("published next version is bumped", func(t *testing.T) {
		f := newFixture(t)
		f.registry.published = true
		active := snapshot("10.1.0-next.2", "", "10.0.1")

		a := newCutNextPrerelease(active, f.deps)
		d, err := a.Describe(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if want := `Cut a new next pre-release for the "main" branch (v10.1.0-next.3).`; d != want {
			t.Errorf("description = %q, want %q", d, want)
		}
	})

	t.Run("rc train target is always bumped", func(t *testing.T) {
		f := newFixture(t)
		f.registry.published = false // must not trigger preserve for the rc train
		active := snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1")

		a := newCutNextPrerelease(active, f.deps)
		v, preserve, err := a.version(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if preserve {
			t.Error("preserve policy applied to the rc train")
		}
		if v.String() != "10.1.0-next.4" {
			t.Errorf("version = %s, want 10.1.0-next.4", v)
		}
	})
}

func TestCutReleaseCandidate(t *testing.T) {
	f := newFixture(t)
	f.host.changelog = "<a name=\"10.1.0-rc.0\"></a>notes"
	active := snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1")

	a := newCutReleaseCandidate(active, f.deps)
	if err := a.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	pr := f.host.pullRequests[0]
	if pr.BaseBranch != "10.1.x" || pr.Title != "release: cut the v10.1.0-rc.0 release" {
		t.Errorf("staging PR = %+v", pr)
	}
	for _, p := range f.registry.publishes {
		if !strings.Contains(p, " next ") {
			t.Errorf("rc cut must publish under the next dist-tag: %q", p)
		}
	}
	if len(f.host.releases) != 1 || !f.host.releases[0].Prerelease {
		t.Errorf("release entry should be marked prerelease: %+v", f.host.releases)
	}

	// Inactive once the train reached rc phase.
	if newCutReleaseCandidate(snapshot("10.2.0-next.6", "10.1.0-rc.0", "10.0.1"), f.deps).Active() {
		t.Error("active for a train already in rc phase")
	}
	if newCutReleaseCandidate(snapshot("10.1.0-next.2", "", "10.0.1"), f.deps).Active() {
		t.Error("active without a feature-freeze train")
	}
}

func TestMoveNextIntoFeatureFreeze(t *testing.T) {
	f := newFixture(t)
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	a := newMoveNextIntoFeatureFreeze(active, f.deps)
	if !a.Active() {
		t.Fatal("should be active without an rc train")
	}
	d, err := a.Describe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := `Move the "main" branch into feature-freeze ("10.2.x" branch, v10.3.0-next.0).`; d != want {
		t.Errorf("description = %q, want %q", d, want)
	}

	if err := a.Perform(context.Background()); err != nil {
		t.Fatalf("Perform: %v", err)
	}

	joined := strings.Join(f.git.commands, "\n")
	if !strings.Contains(joined, "git push origin 10.2.x:refs/heads/10.2.x") {
		t.Errorf("version branch not pushed upstream:\n%s", joined)
	}
	pr := f.host.pullRequests[0]
	if pr.BaseBranch != "main" || pr.Title != "release: cut the v10.3.0-next.0 release" {
		t.Errorf("bump PR = %+v", pr)
	}
	// Branch-off publishes nothing.
	if len(f.registry.publishes) != 0 {
		t.Errorf("unexpected publishes: %v", f.registry.publishes)
	}

	if newMoveNextIntoFeatureFreeze(snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1"), f.deps).Active() {
		t.Error("active despite an existing rc train")
	}
}

func TestCutLtsPatch(t *testing.T) {
	t.Run("prompts for an active branch and cuts it", func(t *testing.T) {
		f := newFixture(t)
		f.host.changelog = "<a name=\"9.2.16\"></a>notes"
		f.registry.distTags = map[string]string{"v9-lts": "9.2.15", "latest": "10.0.1"}
		f.registry.publishTimes = map[string]time.Time{
			"9.0.0": f.deps.Now().Add(-24 * time.Hour),
		}
		active := snapshot("10.2.0-next.6", "", "10.0.1")

		a := newCutLtsPatch(active, f.deps)
		if err := a.Perform(context.Background()); err != nil {
			t.Fatalf("Perform: %v", err)
		}

		if len(f.prompter.selected) != 1 || f.prompter.selected[0] != "9.2.x (v9.2.15)" {
			t.Errorf("prompt options = %v", f.prompter.selected)
		}
		pr := f.host.pullRequests[0]
		if pr.BaseBranch != "9.2.x" || pr.Title != "release: cut the v9.2.16 release" {
			t.Errorf("staging PR = %+v", pr)
		}
		for _, p := range f.registry.publishes {
			if !strings.Contains(p, " v9-lts ") {
				t.Errorf("publish should use the LTS dist-tag: %q", p)
			}
		}
	})

	t.Run("fails without active branches", func(t *testing.T) {
		f := newFixture(t)
		f.registry.distTags = map[string]string{"latest": "10.0.1"}
		active := snapshot("10.2.0-next.6", "", "10.0.1")

		err := newCutLtsPatch(active, f.deps).Perform(context.Background())
		if !errors.Is(err, errors.ErrNoLtsBranches) {
			t.Errorf("error = %v, want ErrNoLtsBranches", err)
		}
	})
}

func TestCatalogOrderAndNames(t *testing.T) {
	f := newFixture(t)
	catalog := Catalog(snapshot("10.2.0-next.6", "10.1.0-next.3", "10.0.1"), f.deps)

	want := []string{
		"cut-stable",
		"cut-release-candidate",
		"cut-new-patch",
		"cut-next-prerelease",
		"move-next-into-feature-freeze",
		"cut-lts-patch",
	}
	if len(catalog) != len(want) {
		t.Fatalf("catalog size = %d, want %d", len(catalog), len(want))
	}
	for i, name := range want {
		if catalog[i].Name() != name {
			t.Errorf("catalog[%d] = %q, want %q", i, catalog[i].Name(), name)
		}
	}
}

func TestStageRejectsDirtyWorkingTree(t *testing.T) {
	f := newFixture(t)
	// First git call is the status query; report a dirty tree.
	f.deps.Git = git.NewWithExecutor(f.workDir, dirtyExecutor{})
	active := snapshot("10.2.0-next.6", "", "10.0.1")

	err := newCutNewPatch(active, f.deps).Perform(context.Background())
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

type dirtyExecutor struct{}

func (dirtyExecutor) Run(dir, name string, args ...string) ([]byte, error) {
	if len(args) > 0 && args[0] == "status" {
		return []byte(" M package.json\n"), nil
	}
	return nil, nil
}
