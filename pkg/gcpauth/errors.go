package gcpauth

import "errors"

var (
	// ErrConfiguration indicates invalid or incomplete login options,
	// detected when the options are built, never at login time.
	ErrConfiguration = errors.New("invalid login configuration")

	// ErrResolution indicates a resolver strategy failed or produced an
	// empty identity attribute.
	ErrResolution = errors.New("identity resolution failed")

	// ErrSigning indicates the remote signing call failed.
	ErrSigning = errors.New("JWT signing failed")

	// ErrAuthentication indicates the login exchange with Vault failed.
	ErrAuthentication = errors.New("vault login failed")
)
