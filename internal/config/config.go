package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultExtractPattern is the version-anchor pattern used to locate a
// version's section in the rendered changelog. The {version} placeholder is
// substituted (regexp-quoted) before compiling. The first capture group is
// the extracted block: everything from the version anchor up to the next
// anchor or the end of the content.
const DefaultExtractPattern = `(?s)(<a name="{version}"></a>.*?)(?:<a name="|$)`

// Config represents the complete traincut configuration. It is loaded once
// per run and never mutated; components receive it at construction.
type Config struct {
	Npm          NpmConfig          `mapstructure:"npm"`
	Repo         RepoConfig         `mapstructure:"repo"`
	Fork         ForkConfig         `mapstructure:"fork"`
	Build        BuildConfig        `mapstructure:"build"`
	ReleaseNotes ReleaseNotesConfig `mapstructure:"release_notes"`
	Lts          LtsConfig          `mapstructure:"lts"`
	Approval     ApprovalConfig     `mapstructure:"approval"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// NpmConfig controls registry publication.
type NpmConfig struct {
	// Packages is the set of package identifiers expected to have build output.
	Packages []string `mapstructure:"packages"`
	// PublishRegistry overrides the registry URL for publishes.
	// Empty means the public registry.
	PublishRegistry string `mapstructure:"publish_registry"`
}

// RepoConfig identifies the hosted repository and its development branch.
type RepoConfig struct {
	// Owner is the organization or user owning the upstream repository.
	Owner string `mapstructure:"owner"`
	// Name is the repository name.
	Name string `mapstructure:"name"`
	// NextBranch is the ongoing development branch (default: "main").
	NextBranch string `mapstructure:"next_branch"`
}

// ForkConfig identifies the fork used for staging branches and PRs.
type ForkConfig struct {
	// Owner is the fork owner. Empty means the authenticated user's fork.
	Owner string `mapstructure:"owner"`
}

// BuildConfig controls build output verification.
type BuildConfig struct {
	// OutputDir is the directory holding per-package build output,
	// relative to the working root (default: "dist").
	OutputDir string `mapstructure:"output_dir"`
}

// ReleaseNotesConfig controls changelog handling.
type ReleaseNotesConfig struct {
	// ExtractPattern locates a version's section in rendered changelog
	// content. The literal "{version}" is replaced with the regexp-quoted
	// version before compiling. When the pattern has a capture group, group
	// one is the extracted block; otherwise the whole match is used.
	ExtractPattern string `mapstructure:"extract_pattern"`
	// ChangelogPath is the changelog file path relative to the working root
	// (default: "CHANGELOG.md").
	ChangelogPath string `mapstructure:"changelog_path"`
}

// LtsConfig controls long-term-support branch classification.
type LtsConfig struct {
	// WindowMonths is how long a major release line stays in active LTS
	// after its initial stable release (default: 18).
	WindowMonths int `mapstructure:"window_months"`
}

// ApprovalConfig controls the merge-status polling loop.
type ApprovalConfig struct {
	// PollIntervalSeconds is the delay between merge-status queries while
	// waiting for the staging pull request to be merged (default: 15).
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// LoggingConfig controls structured logging behavior.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info").
	Level string `mapstructure:"level"`
}

// PollInterval returns the approval poll interval as a time.Duration.
func (a *ApprovalConfig) PollInterval() time.Duration {
	return time.Duration(a.PollIntervalSeconds) * time.Second
}

// LtsWindow returns the active LTS window as a time.Duration.
func (l *LtsConfig) LtsWindow() time.Duration {
	return time.Duration(l.WindowMonths) * 30 * 24 * time.Hour
}

// Slug returns the "owner/name" form of the repository.
func (r *RepoConfig) Slug() string {
	return r.Owner + "/" + r.Name
}

// ExtractRegexp compiles the release-notes extraction pattern for the given
// version string.
func (rn *ReleaseNotesConfig) ExtractRegexp(version string) (*regexp.Regexp, error) {
	pattern := rn.ExtractPattern
	if pattern == "" {
		pattern = DefaultExtractPattern
	}
	pattern = strings.ReplaceAll(pattern, "{version}", regexp.QuoteMeta(version))
	return regexp.Compile(pattern)
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Npm: NpmConfig{
			Packages:        []string{},
			PublishRegistry: "",
		},
		Repo: RepoConfig{
			NextBranch: "main",
		},
		Build: BuildConfig{
			OutputDir: "dist",
		},
		ReleaseNotes: ReleaseNotesConfig{
			ExtractPattern: DefaultExtractPattern,
			ChangelogPath:  "CHANGELOG.md",
		},
		Lts: LtsConfig{
			WindowMonths: 18,
		},
		Approval: ApprovalConfig{
			PollIntervalSeconds: 15,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("npm.packages", defaults.Npm.Packages)
	viper.SetDefault("npm.publish_registry", defaults.Npm.PublishRegistry)

	viper.SetDefault("repo.owner", defaults.Repo.Owner)
	viper.SetDefault("repo.name", defaults.Repo.Name)
	viper.SetDefault("repo.next_branch", defaults.Repo.NextBranch)

	viper.SetDefault("fork.owner", defaults.Fork.Owner)

	viper.SetDefault("build.output_dir", defaults.Build.OutputDir)

	viper.SetDefault("release_notes.extract_pattern", defaults.ReleaseNotes.ExtractPattern)
	viper.SetDefault("release_notes.changelog_path", defaults.ReleaseNotes.ChangelogPath)

	viper.SetDefault("lts.window_months", defaults.Lts.WindowMonths)

	viper.SetDefault("approval.poll_interval_seconds", defaults.Approval.PollIntervalSeconds)

	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "traincut")
	}
	// Fall back to ~/.config/traincut
	home, err := os.UserHomeDir()
	if err != nil {
		return ".traincut"
	}
	return filepath.Join(home, ".config", "traincut")
}

// ConfigFile returns the path to the user config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
