package services

import (
	"context"
	"fmt"

	"zzz-cli/internal/core/domain"
	output "zzz-cli/internal/core/ports/output"
	"zzz-cli/internal/semver"
)

// VersionResolver answers whether a newer compatible release of a package
// exists in a registry.
type VersionResolver struct {
	registry output.RegistryClient
}

// NewVersionResolver creates a new VersionResolver
func NewVersionResolver(registry output.RegistryClient) *VersionResolver {
	return &VersionResolver{registry: registry}
}

// FetchAllVersions returns every published version of packageName. An empty
// name short-circuits without touching the registry.
func (r *VersionResolver) FetchAllVersions(ctx context.Context, packageName, registryURL string) ([]string, error) {
	if packageName == "" {
		return []string{}, nil
	}
	versions, err := r.registry.FetchVersions(ctx, packageName, registryURL)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		return []string{}, nil
	}
	return versions, nil
}

// FilterCompatible keeps the versions in ^baseVersion, highest first.
func FilterCompatible(baseVersion string, versions []string) ([]string, error) {
	c, err := semver.Caret(baseVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVersion, baseVersion)
	}
	return semver.FilterDescending(c, versions), nil
}

// ResolveLatestCompatible returns the highest published version in
// ^baseVersion. ok is false when nothing qualifies.
func (r *VersionResolver) ResolveLatestCompatible(ctx context.Context, baseVersion, packageName, registryURL string) (latest string, ok bool, err error) {
	versions, err := r.FetchAllVersions(ctx, packageName, registryURL)
	if err != nil {
		return "", false, err
	}

	compatible, err := FilterCompatible(baseVersion, versions)
	if err != nil {
		return "", false, err
	}
	if len(compatible) == 0 {
		return "", false, nil
	}
	return compatible[0], true, nil
}

// ListVersions returns the published versions of packageName highest first,
// limited to ^baseVersion when baseVersion is set.
func (r *VersionResolver) ListVersions(ctx context.Context, packageName, registryURL, baseVersion string) ([]string, error) {
	versions, err := r.FetchAllVersions(ctx, packageName, registryURL)
	if err != nil {
		return nil, err
	}
	if baseVersion == "" {
		return semver.Descending(versions), nil
	}
	return FilterCompatible(baseVersion, versions)
}
