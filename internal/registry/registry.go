// Package registry defines the package-registry collaborator. The release
// workflow publishes built packages and moves dist-tags through the Registry
// interface; the concrete implementation shells out to the npm CLI.
package registry

import (
	"context"
	"time"
)

// Registry is the package-registry collaborator contract.
type Registry interface {
	// Publish publishes the built package in dir under the given dist-tag.
	// A non-empty registryURL overrides the default registry.
	Publish(ctx context.Context, pkg, dir, distTag, registryURL string) error

	// DistTagAdd points distTag at pkg@version. Used to retag a previous
	// latest train as an LTS line.
	DistTagAdd(ctx context.Context, pkg, version, distTag string) error

	// DistTags returns the dist-tag -> version mapping for pkg.
	DistTags(ctx context.Context, pkg string) (map[string]string, error)

	// PublishTimes returns the version -> publish-time mapping for pkg.
	PublishTimes(ctx context.Context, pkg string) (map[string]time.Time, error)

	// VersionPublished reports whether pkg@version is live on the registry.
	VersionPublished(ctx context.Context, pkg, version string) (bool, error)
}
