package domain

import "errors"

// ============================================================================
// Environment Check Errors
// ============================================================================

var (
	ErrUserHomeNotFound = errors.New("current user home directory does not exist")
	ErrRuntimeTooOld    = errors.New("runtime version is older than the lowest supported version")
	ErrPrivilegeDrop    = errors.New("failed to drop root privileges")
)

// ============================================================================
// Version Resolution Errors
// ============================================================================

var (
	ErrInvalidVersion  = errors.New("invalid semantic version")
	ErrRegistryRequest = errors.New("registry request failed")
)

// ============================================================================
// CLI Errors
// ============================================================================

var (
	ErrInvalidArgs = errors.New("invalid arguments")
)
