package services

import (
	"context"

	"zzz-cli/internal/core/domain"
	"zzz-cli/internal/semver"
)

// UpdateChecker looks for a newer compatible release of the CLI itself.
type UpdateChecker struct {
	resolver    *VersionResolver
	registryURL string
}

// NewUpdateChecker creates a new UpdateChecker. An empty registryURL means
// the registry client's default.
func NewUpdateChecker(resolver *VersionResolver, registryURL string) *UpdateChecker {
	return &UpdateChecker{resolver: resolver, registryURL: registryURL}
}

// Check returns a notice when a strictly newer compatible version of pkg is
// published, nil otherwise.
func (c *UpdateChecker) Check(ctx context.Context, pkg domain.Package) (*domain.UpdateNotice, error) {
	latest, ok, err := c.resolver.ResolveLatestCompatible(ctx, pkg.Version, pkg.Name, c.registryURL)
	if err != nil {
		return nil, err
	}
	if !ok || !semver.GreaterThan(latest, pkg.Version) {
		return nil, nil
	}
	return domain.NewUpdateNotice(pkg.Name, pkg.Version, latest), nil
}
