package config

// Overridden at build time with
// -ldflags "-X zzz-cli/internal/config.Version=..."
var Version = "1.0.3"

const (
	// PackageName is the name the CLI is published under.
	PackageName = "@zzz-cli/core"

	// DefaultCLIHome is the cache directory created under the user home
	// when CLI_HOME is not set.
	DefaultCLIHome = ".zzz-cli"

	// LowestRuntimeVersion is the oldest Go runtime the CLI supports.
	LowestRuntimeVersion = "1.22.0"

	// DotenvFile is read from the user home directory.
	DotenvFile = ".env"
)
