package ports

import "context"

// RegistryClient fetches published package metadata from a package registry.
type RegistryClient interface {
	// FetchVersions returns every published version string of packageName.
	// Unexpected responses yield an empty slice; only transport failures
	// are returned as errors.
	FetchVersions(ctx context.Context, packageName, registryURL string) ([]string, error)
}
