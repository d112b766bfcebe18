package auth

import (
	"errors"

	"github.com/Luizsilva-repros/intranet/internal/auth/cachesync"
)

var (
	// ErrNotAuthorized is returned when no provider knows the identifier.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidCredential is returned when the identifier is known but the credential does not match.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrDirectoryUnavailable is returned when the directory can not be reached.
	// During login it only causes a fallback to the next provider.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrDirectoryLookup is returned when the directory answered with an
	// unexpected error. During login it only causes a fallback.
	ErrDirectoryLookup = errors.New("directory lookup failed")

	// ErrDirectoryDisabled is returned by directory operations while the integration is off.
	// The login chain treats it as a decline.
	ErrDirectoryDisabled = errors.New("directory integration is disabled")

	// ErrSyncFailure marks cache sync errors. They are logged, never returned by Authenticate.
	ErrSyncFailure = cachesync.ErrSyncFailure

	// ErrNoProviders is returned when the service was built without providers.
	ErrNoProviders = errors.New("no identity providers configured")
)
