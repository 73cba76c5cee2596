package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

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

// NpmRegistry implements Registry using the npm CLI.
type NpmRegistry struct {
	executor CommandExecutor
}

// NewNpmRegistry creates an NpmRegistry using the default command executor.
func NewNpmRegistry() *NpmRegistry {
	return &NpmRegistry{executor: defaultExecutor}
}

// NewNpmRegistryWithExecutor creates an NpmRegistry with a custom command
// executor for testing.
func NewNpmRegistryWithExecutor(executor CommandExecutor) *NpmRegistry {
	return &NpmRegistry{executor: executor}
}

// Publish publishes the built package in dir under the given dist-tag.
func (n *NpmRegistry) Publish(ctx context.Context, pkg, dir, distTag, registryURL string) error {
	args := []string{"publish", dir, "--access", "public", "--tag", distTag}
	if registryURL != "" {
		args = append(args, "--registry", registryURL)
	}

	output, err := n.executor(ctx, "npm", args...)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return errors.NewPublishError(pkg, distTag, err)
	}
	return nil
}

// DistTagAdd points distTag at pkg@version.
func (n *NpmRegistry) DistTagAdd(ctx context.Context, pkg, version, distTag string) error {
	output, err := n.executor(ctx, "npm", "dist-tag", "add",
		fmt.Sprintf("%s@%s", pkg, version), distTag)
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return errors.NewPublishError(pkg, distTag, err)
	}
	return nil
}

// DistTags returns the dist-tag -> version mapping for pkg.
func (n *NpmRegistry) DistTags(ctx context.Context, pkg string) (map[string]string, error) {
	output, err := n.executor(ctx, "npm", "view", pkg, "dist-tags", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to query dist-tags for %s: %w", pkg, err)
	}

	tags := make(map[string]string)
	if err := json.Unmarshal(output, &tags); err != nil {
		return nil, fmt.Errorf("could not parse dist-tags for %s: %w", pkg, err)
	}
	return tags, nil
}

// PublishTimes returns the version -> publish-time mapping for pkg. The
// "created" and "modified" bookkeeping entries npm includes are dropped.
func (n *NpmRegistry) PublishTimes(ctx context.Context, pkg string) (map[string]time.Time, error) {
	output, err := n.executor(ctx, "npm", "view", pkg, "time", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to query publish times for %s: %w", pkg, err)
	}

	raw := make(map[string]string)
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("could not parse publish times for %s: %w", pkg, err)
	}

	times := make(map[string]time.Time, len(raw))
	for version, stamp := range raw {
		if version == "created" || version == "modified" {
			continue
		}
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue
		}
		times[version] = t
	}
	return times, nil
}

// VersionPublished reports whether pkg@version is live on the registry.
// npm exits non-zero with an E404 for versions that were never published.
func (n *NpmRegistry) VersionPublished(ctx context.Context, pkg, version string) (bool, error) {
	output, err := n.executor(ctx, "npm", "view",
		fmt.Sprintf("%s@%s", pkg, version), "version", "--json")
	if err != nil {
		if strings.Contains(string(output), "E404") {
			return false, nil
		}
		return false, fmt.Errorf("failed to query %s@%s: %w", pkg, version, err)
	}
	// npm prints nothing for an unpublished version of an existing package.
	return strings.TrimSpace(string(output)) != "", nil
}
